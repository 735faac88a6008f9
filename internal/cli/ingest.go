package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"insights/internal/duckdb"
)

// runIngest builds the handler for the ingest command.
func runIngest(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		specPath := flags.String("spec", "", "Path to config file (default: search for .insights/config.yml)")
		warehouse := flags.String("warehouse", "", "Warehouse path (overrides config)")
		verbose := flags.Bool("verbose", false, "Enable verbose logging")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if flags.NArg() == 0 {
			fmt.Fprintln(stderr, "at least one events file is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, _, err := loadConfig(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Config error:\n%v\n", err)
			return ExitError
		}
		logger := verboseLogger{enabled: *verbose, writer: stderr, noColor: cfg.UI.NoColor}

		ctx := context.Background()
		db, path, err := openWarehouse(ctx, cfg, *warehouse)
		if err != nil {
			fmt.Fprintf(stderr, "Open warehouse failed: %v\n", err)
			return ExitError
		}
		defer db.Close()
		logger.log(styleDefault, "warehouse %s", path)

		var events []duckdb.Event
		for _, file := range flags.Args() {
			batch, err := readEventsFile(file)
			if err != nil {
				fmt.Fprintf(stderr, "Ingest failed: %v\n", err)
				return ExitError
			}
			logger.log(styleDefault, "read %d events from %s", len(batch), file)
			events = append(events, batch...)
		}

		result, err := duckdb.IngestEvents(ctx, db, events)
		if err != nil {
			fmt.Fprintf(stderr, "Ingest failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Ingested %d events (%d duplicates, %d event types)\n",
			result.Inserted, result.Duplicates, result.EventTypes)
		return ExitOK
	}
}

func readEventsFile(path string) ([]duckdb.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	events, err := duckdb.ReadEvents(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}
