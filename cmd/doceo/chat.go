package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/doceo/internal/app"
	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/models"
)

// runChat runs an interactive question loop against one subject. This is
// the long-lived mode, so it prints the banner and starts the maintenance
// scheduler the one-shot commands skip.
func runChat(args []string) error {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	subjectName := flags.String("subject", "", "Subject to chat about (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *subjectName == "" {
		return fmt.Errorf("-subject is required")
	}

	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	// Fail on typos before the loop starts
	if _, err := application.Catalog.Get(*subjectName); err != nil {
		return err
	}

	if err := application.StartScheduler(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start maintenance scheduler")
	}

	ctx, cancel := commandContext()
	defer cancel()

	fmt.Printf("Chatting about %q. Ask a question, or type \"exit\" to quit.\n\n", *subjectName)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		result, err := application.SessionService.Ask(ctx, *subjectName, question)
		if err != nil {
			switch {
			case models.IsBlocked(err):
				fmt.Println("The model declined to answer this question (content safety policy).")
			case errors.Is(err, models.ErrIndexNotBuilt):
				fmt.Printf("No document ingested for %q yet. Run: doceo ingest -subject %q <file>\n", *subjectName, *subjectName)
			default:
				fmt.Printf("Error: %v\n", err)
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		printAnswer(result)

		// Ctrl+C during a call cancels the context; leave the loop instead
		// of prompting again.
		if ctx.Err() != nil {
			break
		}
	}

	fmt.Println("Bye.")
	return scanner.Err()
}
