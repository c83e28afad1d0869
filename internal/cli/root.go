package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/ptrgo/ptr/internal/logging"
	"github.com/ptrgo/ptr/internal/settings"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagDir     string
	flagNoColor bool
)

// rootCmd is the base command for ptr.
var rootCmd = &cobra.Command{
	Use:   "ptr",
	Short: "Repository-wide Python test orchestrator",
	Long: `ptr discovers per-project test manifests scattered across a source tree,
provisions one shared interpreter environment, and runs a fixed pipeline of
quality-assurance steps (tests, coverage, formatting, type checking, lint)
for every discovered project with bounded parallelism.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// RunE shows full help when invoked with no subcommand. Without RunE,
	// Cobra only prints the Long description (omitting Usage and Flags).
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("debug") && os.Getenv("ORCH_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("ORCH_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("ORCH_NO_COLOR") != "") {
			flagNoColor = true
		}

		// ORCH_LOG_FORMAT is this setting's explicit, command-line-adjacent
		// override; .ptr.toml's log_format is only consulted when it is
		// unset, matching the "explicit always wins" rule applied to every
		// other settings-file default (applySettingsDefaults in run.go).
		rawLogFormat := os.Getenv("ORCH_LOG_FORMAT")
		if rawLogFormat == "" {
			if wd, err := os.Getwd(); err == nil {
				if s, _, err := settings.Load(wd); err == nil && s != nil {
					rawLogFormat = s.LogFormat
				}
			}
		}
		logging.Setup(flagVerbose, flagQuiet, rawLogFormat == "json")

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		if flagDir != "" {
			if err := os.Chdir(flagDir); err != nil {
				return fmt.Errorf("changing directory to %s: %w", flagDir, err)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "debug", false, "Enable verbose diagnostics (env: ORCH_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: ORCH_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Override working directory before running")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: ORCH_NO_COLOR, NO_COLOR)")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator. It creates a new root command
// with rootCmd's Use/Short/Long text and attaches rootCmd's existing
// subcommands to it (the subcommands are shared, not copied); rootCmd's
// persistent flags and hooks are not carried over.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           rootCmd.Use,
		Short:         rootCmd.Short,
		Long:          rootCmd.Long,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
