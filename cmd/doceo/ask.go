package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/ternarybob/doceo/internal/app"
	"github.com/ternarybob/doceo/internal/models"
)

// runAsk answers a single question against a subject's index and exits.
func runAsk(args []string) error {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	subjectName := flags.String("subject", "", "Subject to ask (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *subjectName == "" {
		return fmt.Errorf("-subject is required")
	}
	question := strings.TrimSpace(strings.Join(flags.Args(), " "))
	if question == "" {
		return fmt.Errorf("a question argument is required")
	}

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := commandContext()
	defer cancel()

	result, err := application.SessionService.Ask(ctx, *subjectName, question)
	if err != nil {
		if models.IsBlocked(err) {
			fmt.Println("\nThe model declined to answer this question (content safety policy).")
			return nil
		}
		return err
	}

	printAnswer(result)
	return nil
}

// printAnswer renders an answer with its citations for the terminal.
func printAnswer(result *models.AnswerResult) {
	fmt.Println()
	fmt.Println(result.Text)
	if len(result.Citations) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, citation := range result.Citations {
			fmt.Printf("  [%d] page %d: %s\n", citation.Index, citation.Page, shortPreview(citation.Preview, 100))
		}
	}
	fmt.Println()
}

// shortPreview collapses whitespace and caps the text at max runes so one
// citation stays on one terminal line.
func shortPreview(s string, max int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	runes := []rune(collapsed)
	if len(runes) <= max {
		return collapsed
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
