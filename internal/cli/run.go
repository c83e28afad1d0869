package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ptrgo/ptr/internal/discovery"
	"github.com/ptrgo/ptr/internal/environment"
	"github.com/ptrgo/ptr/internal/errs"
	"github.com/ptrgo/ptr/internal/logging"
	"github.com/ptrgo/ptr/internal/manifest"
	"github.com/ptrgo/ptr/internal/pipeline"
	"github.com/ptrgo/ptr/internal/report"
	"github.com/ptrgo/ptr/internal/scheduler"
	"github.com/ptrgo/ptr/internal/settings"
)

// Exit codes (§6): 0 means every discovered Project passed; everything else
// is a distinct non-zero condition so calling CI scripts can tell a project
// failure apart from a setup problem without parsing output.
const (
	exitOK             = 0
	exitProjectFailure = 1
	exitSetupFailure   = 2
	exitCancelled      = 3
	exitDiscoveryEmpty = 4
)

// runFlags holds the run subcommand's own flag values (§6 CLI surface).
var runFlags struct {
	atonce             int
	baseDir            string
	errorOnWarnings    bool
	keepVenv           bool
	mirror             string
	printCov           bool
	printNonConfigured bool
	progressInterval   int
	runDisabled        bool
	statsFile          string
	systemSitePackages bool
	venv               string
	venvTimeout        int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover and run every project's test pipeline",
	Long: `run walks the discovery root for project manifests, provisions one
shared interpreter environment, and runs the fixed pipeline (install, test
under coverage, static analysis) for every discovered project, bounded by
--atonce concurrent workers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := runRun(cmd)
		if err != nil {
			return err
		}
		if code != exitOK {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runFlags.atonce, "atonce", 6, "Maximum concurrent project pipelines")
	runCmd.Flags().StringVar(&runFlags.baseDir, "base-dir", "", "Discovery root (default: current directory)")
	runCmd.Flags().BoolVar(&runFlags.errorOnWarnings, "error-on-warnings", false, "Promote interpreter deprecation warnings to errors in tests_run")
	runCmd.Flags().BoolVar(&runFlags.keepVenv, "keep-venv", false, "Do not delete an owned environment on exit")
	runCmd.Flags().StringVar(&runFlags.mirror, "mirror", "", "Installer index URL (default: public index)")
	runCmd.Flags().BoolVar(&runFlags.printCov, "print-cov", false, "Print per-project coverage summary even on pass")
	runCmd.Flags().BoolVar(&runFlags.printNonConfigured, "print-non-configured", false, "Print manifests discovered with no tool section")
	runCmd.Flags().IntVar(&runFlags.progressInterval, "progress-interval", 5, "Heartbeat interval in seconds (0 disables)")
	runCmd.Flags().BoolVar(&runFlags.runDisabled, "run-disabled", false, "Run projects marked disabled in their manifest")
	runCmd.Flags().StringVar(&runFlags.statsFile, "stats-file", "", "Write the JSON statistics artifact to this path (default: a generated temp file)")
	runCmd.Flags().BoolVar(&runFlags.systemSitePackages, "system-site-packages", false, "Give the created environment access to system site packages")
	runCmd.Flags().StringVar(&runFlags.venv, "venv", "", "Adopt an existing environment instead of creating one")
	runCmd.Flags().IntVar(&runFlags.venvTimeout, "venv-timeout", 120, "Environment creation timeout in seconds")
	rootCmd.AddCommand(runCmd)
}

// runRun does the actual discovery/provision/schedule/report work and
// returns the process exit code. It never calls os.Exit itself, so that
// deferred cleanup (releasing an owned environment) always runs before the
// caller exits the process.
func runRun(cmd *cobra.Command) (int, error) {
	logger := logging.New("run")
	start := time.Now()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applySettingsDefaults(cmd, logger)

	baseDir := runFlags.baseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return 0, fmt.Errorf("resolving current directory: %w", err)
		}
		baseDir = wd
	}
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", baseDir, err)
	}

	loader := manifest.NewLoader(logging.New("manifest"))
	discovered, rawCandidateCount, unconfigured, err := discovery.Walk(baseDir, loader)
	if err != nil {
		return 0, fmt.Errorf("walking %s: %w", baseDir, err)
	}
	for _, d := range discovered {
		for _, w := range d.Warnings {
			logger.Warn("manifest warning", "path", w.Path, "message", w.Message)
		}
	}
	if len(discovered) == 0 {
		fmt.Fprintln(os.Stderr, errs.ErrDiscoveryEmpty)
		return exitDiscoveryEmpty, nil
	}

	projects := make([]*manifest.Project, len(discovered))
	for i, d := range discovered {
		projects[i] = d.Project
	}

	env, err := environment.Provision(ctx, environment.Options{
		AdoptPath:          runFlags.venv,
		MirrorURL:          runFlags.mirror,
		SystemSitePackages: runFlags.systemSitePackages,
		Timeout:            time.Duration(runFlags.venvTimeout) * time.Second,
		BaseDir:            baseDir,
	})
	if err != nil {
		var provErr *errs.ProvisionError
		if errors.As(err, &provErr) {
			fmt.Fprintln(os.Stderr, provErr)
			return exitSetupFailure, nil
		}
		return 0, err
	}
	defer func() {
		if releaseErr := environment.Release(env, runFlags.keepVenv); releaseErr != nil {
			logger.Warn("releasing environment failed", "root", env.Root, "error", releaseErr)
		}
	}()

	outcomes := scheduler.Run(ctx, projects, env, scheduler.Options{
		Concurrency:       runFlags.atonce,
		HeartbeatInterval: time.Duration(runFlags.progressInterval) * time.Second,
		Color:             !flagNoColor,
		Pipeline: pipeline.Options{
			RunDisabled:     runFlags.runDisabled,
			ErrorOnWarnings: runFlags.errorOnWarnings,
		},
	}, logger)

	wallClock := time.Since(start)

	report.PrintSummary(os.Stdout, outcomes, wallClock, unconfigured, report.PrintOptions{
		Color:              !flagNoColor,
		PrintCoverage:      runFlags.printCov,
		PrintNonConfigured: runFlags.printNonConfigured,
	})

	statsPath := runFlags.statsFile
	if statsPath == "" {
		tmp, tmpErr := os.CreateTemp("", "ptr-stats-*.json")
		if tmpErr != nil {
			logger.Warn("creating temporary stats file failed", "error", tmpErr)
		} else {
			statsPath = tmp.Name()
			tmp.Close()
		}
	}
	if statsPath != "" {
		stats := report.Build(outcomes, rawCandidateCount, wallClock)
		if err := report.Write(statsPath, stats); err != nil {
			logger.Error("writing stats artifact failed", "path", statsPath, "error", err)
		} else {
			logger.Info("wrote stats artifact", "path", statsPath)
		}
	}

	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("run: %w", errs.ErrCancelled))
		return exitCancelled, nil
	}

	for _, o := range outcomes {
		if o.Classification != "pass" && o.Classification != "skipped-disabled" {
			return exitProjectFailure, nil
		}
	}
	return exitOK, nil
}

// applySettingsDefaults loads the repo-local .ptr.toml settings file (if
// any) and uses it to fill in any run flag the user did not pass explicitly
// on the command line. An explicit flag always wins over a settings-file
// default (§6).
func applySettingsDefaults(cmd *cobra.Command, logger *log.Logger) {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	s, warnings, err := settings.Load(wd)
	if err != nil {
		logger.Warn("reading settings file failed", "error", err)
		return
	}
	for _, w := range warnings {
		logger.Warn("settings file warning", "message", w)
	}
	if s == nil {
		return
	}

	flags := cmd.Flags()
	if !flags.Changed("atonce") && s.Atonce > 0 {
		runFlags.atonce = s.Atonce
	}
	if !flags.Changed("mirror") && s.Mirror != "" {
		runFlags.mirror = s.Mirror
	}
	if !flags.Changed("stats-file") && s.StatsFile != "" {
		runFlags.statsFile = s.StatsFile
	}
	if !flags.Changed("progress-interval") && s.ProgressInterval > 0 {
		runFlags.progressInterval = s.ProgressInterval
	}
	if !flags.Changed("venv-timeout") && s.VenvTimeoutSecond > 0 {
		runFlags.venvTimeout = s.VenvTimeoutSecond
	}
}
