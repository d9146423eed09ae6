package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, format string) error {
	ctx := cmd.Context()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lakegate> ",
		HistoryFile:     historyFilePath(),
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "LakeGate SQL REPL (warehouse: %s)\n", cmdCtx.Cfg.WarehouseID)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("lakegate> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(cmd, cmdCtx, line, format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("     ...> ")
			continue
		}
		rl.SetPrompt("lakegate> ")

		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		res := cmdCtx.Coordinator.Execute(ctx, query)
		if err := renderResult(cmd.OutOrStdout(), res, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// historyFilePath keeps REPL history next to the user's other dotfiles.
func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lakegate_history")
}

func handleDotCommand(cmd *cobra.Command, cmdCtx *CommandContext, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	fail := func(err error) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".catalogs":
		if err := showCatalogs(cmd, cmdCtx); err != nil {
			fail(err)
		}
		return true

	case ".schemas":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schemas <catalog>")
			return true
		}
		if err := showCatalogSchemas(cmd, cmdCtx, parts[1]); err != nil {
			fail(err)
		}
		return true

	case ".tables":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .tables <catalog.schema>")
			return true
		}
		if err := showSchemaTables(cmd, cmdCtx, parts[1], false); err != nil {
			fail(err)
		}
		return true

	case ".describe":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .describe <catalog.schema.table>")
			return true
		}
		if err := showTableDetails(cmd, cmdCtx, parts[1], false); err != nil {
			fail(err)
		}
		return true

	case ".lineage":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .lineage <catalog.schema.table>")
			return true
		}
		if err := showLineage(cmd, cmdCtx, parts[1]); err != nil {
			fail(err)
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                    Show this help message
  .catalogs                List accessible catalogs
  .schemas <catalog>       List schemas in a catalog
  .tables <catalog.schema> List tables in a schema
  .describe <table>        Show table metadata (three-part name)
  .lineage <table>         Show table lineage (three-part name)
  .clear                   Clear the screen
  .quit / .exit            Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Write statements (DROP, INSERT, ...) are rejected locally
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and common SQL openers.
// Table-name completion would need a remote round-trip per keystroke,
// so it is not offered.
func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("SELECT"),
		readline.PcItem("SHOW"),
		readline.PcItem("DESCRIBE"),
		readline.PcItem("EXPLAIN"),
		readline.PcItem("WITH"),
		readline.PcItem(".help"),
		readline.PcItem(".catalogs"),
		readline.PcItem(".schemas"),
		readline.PcItem(".tables"),
		readline.PcItem(".describe"),
		readline.PcItem(".lineage"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
