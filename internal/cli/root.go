// Package cli provides the command-line interface for LakeGate.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lakegate/internal/cli/commands"
	"github.com/leapstack-labs/lakegate/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lakegate",
		Short: "LakeGate - Read-only SQL and lineage gateway for Databricks",
		Long: `LakeGate executes read-only SQL against a Databricks SQL warehouse and
resolves table lineage from the warehouse audit log.

Statements are screened against a write/DDL blocklist before
submission, then polled asynchronously until they reach a terminal
state. Lineage rows are deduplicated into a graph with notebook and
job attributions.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(context.WithValue(cmd.Context(), config.LoggerKey(), logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Read-only gateway to Databricks SQL warehouses
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lakegate.yaml)")
	rootCmd.PersistentFlags().String("host", "", "Databricks workspace URL")
	rootCmd.PersistentFlags().String("warehouse-id", "", "SQL warehouse ID for statement execution")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "Profile in ~/.databrickscfg to read credentials from")
	rootCmd.PersistentFlags().Int("poll-interval-seconds", config.DefaultPollIntervalSeconds, "Seconds between statement status polls")
	rootCmd.PersistentFlags().Int("max-wait-seconds", config.DefaultMaxWaitSeconds, "Total statement polling budget in seconds")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|csv|md)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewLineageCommand())
	rootCmd.AddCommand(commands.NewDescribeCommand())
	rootCmd.AddCommand(commands.NewCatalogsCommand())
	rootCmd.AddCommand(commands.NewSchemasCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for LakeGate.

To load completions:

Bash:
  $ source <(lakegate completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ lakegate completion bash > /etc/bash_completion.d/lakegate
  # macOS:
  $ lakegate completion bash > $(brew --prefix)/etc/bash_completion.d/lakegate

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ lakegate completion zsh > "${fpath[1]}/_lakegate"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ lakegate completion fish | source

  # To load completions for each session, execute once:
  $ lakegate completion fish > ~/.config/fish/completions/lakegate.fish

PowerShell:
  PS> lakegate completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> lakegate completion powershell > lakegate.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
