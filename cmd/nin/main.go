package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	nin "github.com/unowned-ai/nin/pkg"
	pkgdb "github.com/unowned-ai/nin/pkg/db"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "nin",
		Short:         "Folders, notes and reminders kept in a key-value store.",
		Version:       fmt.Sprintf("v%s", nin.Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to the YAML config file (default ~/.config/nin/config.yaml)")
	flags.String("store", "", "Storage backend: sqlite, postgres, mongo or memory")
	flags.String("dbpath", "", "Path to the SQLite database file (e.g., ./nin.db)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: json or console")

	rootCmd.AddCommand(
		newCompletionCmd(rootCmd),
		newVersionCmd(),
		newDBCmd(opts),
		newFoldersCmd(opts),
		newNotesCmd(opts),
		newMemosCmd(opts),
		newRemindersCmd(opts),
		newExportCmd(opts),
		newMCPCmd(opts),
	)
	return rootCmd
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nin.

Examples:

  Bash (current shell):
    $ source <(nin completion bash)

  Zsh:
    $ nin completion zsh > "${fpath[1]}/_nin"

  Fish:
    $ nin completion fish > ~/.config/fish/completions/nin.fish

  PowerShell:
    PS> nin completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nin",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), nin.Version)
		},
	}
}

func newDBCmd(opts *rootOptions) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the nin SQLite database",
	}

	upgradeCmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Create or upgrade the SQLite schema of the key-value store",
		Long: `Connects to the SQLite database (config store.path or --dbpath) and applies any
schema migrations needed to bring the kvstore component to the current version.
A missing database is created and initialized.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			path, err := sqlitePath(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Upgrading kvstore component in %s (WAL: %t, Sync: %s)\n", path, cfg.Store.WAL, cfg.Store.Sync)

			conn, err := pkgdb.Open(pkgdb.Options{Path: path, WAL: cfg.Store.WAL, Sync: cfg.Store.Sync})
			if err != nil {
				return err
			}
			defer conn.Close()
			return pkgdb.Upgrade(conn, path, pkgdb.TargetSchemaVersion, log)
		},
	}
	upgradeCmd.Flags().Bool("wal", true, "Enable SQLite WAL (Write-Ahead Logging) mode.")
	upgradeCmd.Flags().String("sync", "NORMAL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA).")

	dbCmd.AddCommand(upgradeCmd)
	return dbCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), describe(err))
		os.Exit(1)
	}
}
