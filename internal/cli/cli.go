package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/app"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/dag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flags may appear before, between or after task names.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("sitebuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
sitebuild - Builds the personal page and serves it with live reload.

Usage:
  sitebuild [options] TASK...

Tasks:
  build     scripts, styles, page, fonts and images
  dev       build, then serve build/ and rebuild on changes
  prod      build with minification
  lint      report script and style lint findings
  Run with --list for every task.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "sitebuild.hcl", "Path to the HCL config file, relative to the root.")
	envFileFlag := flagSet.String("env-file", ".env", "Path to the env file, relative to the root.")
	rootFlag := flagSet.String("root", ".", "Project root directory.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", dag.DefaultWorkers, "Number of concurrent workers for the executor.")
	portFlag := flagSet.Int("port", 0, "Dev server port. 0 keeps the configured port.")
	listFlag := flagSet.Bool("list", false, "Print every task and exit.")

	var tasks []string
	rest := args
	for {
		if err := flagSet.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if flagSet.NArg() == 0 {
			break
		}
		tasks = append(tasks, flagSet.Arg(0))
		rest = flagSet.Args()[1:]
	}
	slog.Debug("Arguments parsed successfully.", "tasks", tasks)

	if len(tasks) == 0 && !*listFlag {
		slog.Debug("No task provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Root:       *rootFlag,
		ConfigPath: *configFlag,
		EnvFile:    *envFileFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Workers:    *workersFlag,
		Port:       *portFlag,
		Tasks:      tasks,
		List:       *listFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
