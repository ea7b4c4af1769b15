package cli

import (
	"fmt"

	"github.com/nutrigrade/backend/config"
	"github.com/spf13/cobra"
)

// Version is the CLI release reported by `nutrigrade version`
const Version = "1.0.0"

// options are the global flags shared by every subcommand
type options struct {
	cfgFile string
	verbose bool
}

// NewRootCmd builds the nutrigrade command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "nutrigrade",
		Short: "NutriGrade - food additive compliance checks",
		Long: `NutriGrade extracts INS / E-number additive codes from ingredient lists
and checks them against a regulatory reference table.

Products can be analyzed from raw ingredients text or looked up by barcode
on Open Food Facts.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newTableCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nutrigrade v%s\n", Version)
		},
	}
}

// loadConfig reads the config file named by --config, falling back to defaults and NUTRIGRADE_* env
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Reference table: %s\n", cfg.Reference.Path)
	}
	return cfg, nil
}
