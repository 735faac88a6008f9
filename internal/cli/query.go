package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"insights/internal/duckdb"
)

// runQuery builds the handler for the query command.
func runQuery(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		specPath := flags.String("spec", "", "Path to config file (default: search for .insights/config.yml)")
		warehouse := flags.String("warehouse", "", "Warehouse path (overrides config)")
		limit := flags.Int("limit", duckdb.DefaultRowLimit, "Maximum rows to print")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		query := strings.TrimSpace(strings.Join(flags.Args(), " "))
		if query == "" {
			fmt.Fprintln(stderr, "a SQL query is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, _, err := loadConfig(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Config error:\n%v\n", err)
			return ExitError
		}
		ctx := context.Background()
		db, _, err := openWarehouse(ctx, cfg, *warehouse)
		if err != nil {
			fmt.Fprintf(stderr, "Open warehouse failed: %v\n", err)
			return ExitError
		}
		defer db.Close()

		result, err := duckdb.Query(ctx, db, query, *limit)
		if err != nil {
			fmt.Fprintf(stderr, "Query failed: %v\n", err)
			return ExitError
		}
		printResult(stdout, result)
		return ExitOK
	}
}

// printResult writes a query result as an aligned table.
func printResult(w io.Writer, result duckdb.QueryResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatCell(value)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	suffix := ""
	if result.Truncated {
		suffix = " (truncated)"
	}
	fmt.Fprintf(w, "%d rows%s\n", len(result.Rows), suffix)
}

func formatCell(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprint(value)
}
