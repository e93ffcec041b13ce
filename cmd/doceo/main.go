// -----------------------------------------------------------------------
// doceo - grounded question answering over a fixed subject catalog
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	dataDir      = flag.String("data-dir", "", "Data directory (overrides config)")
	logLevel     = flag.String("log-level", "", "Log level (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `doceo answers questions about your own study notes, grounded in the
documents you ingest per subject.

Usage:
  doceo [flags] <command> [command flags] [arguments]

Commands:
  subjects    List the subject catalog and each subject's index status
  ingest      Index a document for a subject:  doceo ingest -subject <name> <file>
  ask         Ask a single question:           doceo ask -subject <name> "<question>"
  chat        Interactive question loop:       doceo chat -subject <name>
  purge       Delete a subject's index:        doceo purge -subject <name>
  audit       Show recent model calls:         doceo audit [-limit N]

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Usage = usage
	flag.Parse()

	// Handle version flag
	if *showVersion || *showVersionV {
		fmt.Printf("doceo version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	commandArgs := flag.Args()[1:]

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("doceo.toml"); err == nil {
			configFiles = append(configFiles, "doceo.toml")
		}
	}

	// 1. Load configuration (default -> file1 -> file2 -> ... -> env -> CLI)
	// Later config files override earlier ones
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		// Use temporary logger for startup errors
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	// 2. Apply command-line flag overrides (highest priority)
	common.ApplyFlagOverrides(config, *dataDir, *logLevel)

	// 3. Initialize logger with final configuration
	logger = common.InitLogger(config)

	switch command {
	case "subjects":
		err = runSubjects(commandArgs)
	case "ingest":
		err = runIngest(commandArgs)
	case "ask":
		err = runAsk(commandArgs)
	case "chat":
		err = runChat(commandArgs)
	case "purge":
		err = runPurge(commandArgs)
	case "audit":
		err = runAudit(commandArgs)
	case "version":
		fmt.Printf("doceo version %s\n", common.GetFullVersion())
	default:
		fmt.Fprintf(os.Stderr, "doceo: unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "doceo %s: %v\n", command, err)
		os.Exit(1)
	}
}

// commandContext returns a context cancelled on SIGINT or SIGTERM so an
// in-flight embed or generation call is abandoned cleanly on Ctrl+C.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
