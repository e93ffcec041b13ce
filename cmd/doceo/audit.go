package main

import (
	"flag"
	"fmt"

	"github.com/ternarybob/doceo/internal/services/llm"
	"github.com/ternarybob/doceo/internal/storage/badger"
)

// runAudit prints the most recent outbound model calls, newest first.
func runAudit(args []string) error {
	flags := flag.NewFlagSet("audit", flag.ExitOnError)
	limit := flags.Int("limit", 20, "Maximum number of records to show")
	if err := flags.Parse(args); err != nil {
		return err
	}

	storageManager, err := badger.NewManager(config, logger)
	if err != nil {
		return err
	}
	defer storageManager.Close()

	auditLogger := llm.NewAuditLogger(storageManager.AuditStorage(), logger)
	records, err := auditLogger.List(*limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No audit records.")
		return nil
	}

	fmt.Printf("Last %d model calls:\n\n", len(records))
	for _, record := range records {
		status := "ok"
		if !record.Success {
			status = "FAILED"
		}
		fmt.Printf("  %s  %-9s %s/%s  %dms  %s\n",
			record.Timestamp.Local().Format("2006-01-02 15:04:05"),
			record.Operation, record.Provider, record.Model, record.DurationMS, status)
		if record.QueryText != "" {
			fmt.Printf("      query: %s\n", shortPreview(record.QueryText, 100))
		}
		if record.Error != "" {
			fmt.Printf("      error: %s\n", shortPreview(record.Error, 160))
		}
	}
	return nil
}
