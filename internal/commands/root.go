package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ynabmigrate/ynabmigrate/internal/buildinfo"
	"github.com/ynabmigrate/ynabmigrate/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logOpts logger.Options

	rootCmd := &cobra.Command{
		Use:     "ynabmigrate",
		Short:   "Migrate a YNAB4 export into Firefly III",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewWithWriter(cmd.ErrOrStderr(), logOpts)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logOpts.Level, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&logOpts.JSON, "log-json", false, "write logs as JSON lines")
	flags.BoolVarP(&logOpts.Verbose, "verbose", "v", false, "shorthand for --log-level debug")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newCheckCommand())

	return rootCmd
}
