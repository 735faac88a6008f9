package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"insights/internal/config"
)

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		specPath := flags.String("spec", "", "Path to config file (default: ./.insights/config.yml)")
		gitignore := flags.Bool("gitignore", false, "Add the warehouse file to .gitignore")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		targetSpecPath := strings.TrimSpace(*specPath)
		if targetSpecPath == "" {
			wd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			targetSpecPath = config.ConfigPath(wd)
		}
		absSpec, err := filepath.Abs(targetSpecPath)
		if err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}

		if err := config.Scaffold(absSpec); err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Wrote %s\n", absSpec)

		if *gitignore {
			root := config.RepoRootFromConfigPath(absSpec)
			added, err := addGitignoreEntries(root, warehouseIgnoreEntries(config.DefaultWarehousePath)...)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: update .gitignore: %v\n", err)
				return ExitError
			}
			for _, entry := range added {
				fmt.Fprintf(stdout, "Ignored %s\n", entry)
			}
		}
		return ExitOK
	}
}
