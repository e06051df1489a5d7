package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kurihiro0119/github-org-repo-access/internal/audit"
	"github.com/kurihiro0119/github-org-repo-access/internal/collector"
	"github.com/kurihiro0119/github-org-repo-access/internal/config"
	"github.com/kurihiro0119/github-org-repo-access/internal/export"
	"github.com/kurihiro0119/github-org-repo-access/internal/logging"
	"github.com/kurihiro0119/github-org-repo-access/internal/progress"
)

const (
	outputJSON  = "json"
	outputTable = "table"
)

// CommandBuilder assembles the root command with replaceable dependencies
type CommandBuilder struct {
	LoadConfig      func() (*config.Config, error)
	NewLogger       func(cfg *config.Config) (*zap.Logger, error)
	NewCollector    func(cfg *config.Config) (collector.Collector, error)
	ProgressEnabled func() bool
	// OutputDir is where report files are written
	OutputDir string
}

// NewCommandBuilder returns a builder wired to GitHub, the environment and the terminal
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{
		LoadConfig: config.Load,
		NewLogger: func(cfg *config.Config) (*zap.Logger, error) {
			return logging.NewLogger(cfg.LogLevel, logging.Format(cfg.LogFormat))
		},
		NewCollector: func(cfg *config.Config) (collector.Collector, error) {
			return collector.NewGitHubCollector(cfg.GitHubToken, cfg.GitHubAPIURL)
		},
		ProgressEnabled: func() bool { return progress.IsTerminal(os.Stderr) },
		OutputDir:       ".",
	}
}

type options struct {
	quiet           bool
	json            bool
	csv             bool
	output          string
	maintainers     bool
	noProfiles      bool
	continueOnError bool
	noProgress      bool
}

// Build constructs the root command
func (b *CommandBuilder) Build() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "github-org-repo-access org [org...]",
		Short: "List GitHub organization repos and their admins",
		Long: `Enumerate the repositories of one or more GitHub organizations and report
which collaborators hold admin (and optionally maintain) permission on each.

The GITHUB_TOKEN environment variable must be set. Results are printed as JSON
unless --quiet is given, and can be exported to github_org_repo_access.json
and github_org_repo_access.csv in the current directory.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.quiet, "quiet", false, "do not print results to stdout")
	flags.BoolVar(&opts.json, "json", false, "export results to "+export.JSONFileName)
	flags.BoolVar(&opts.csv, "csv", false, "export results to "+export.CSVFileName)
	flags.StringVarP(&opts.output, "output", "o", outputJSON, "stdout format (json, table)")
	flags.BoolVar(&opts.maintainers, "maintainers", false, "also report collaborators with maintain permission")
	flags.BoolVar(&opts.noProfiles, "no-profiles", false, "skip fetching admin names and emails")
	flags.BoolVar(&opts.continueOnError, "continue-on-error", false, "skip organizations that fail instead of aborting")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress line on stderr")

	return cmd
}

func (b *CommandBuilder) run(cmd *cobra.Command, orgs []string, opts *options) error {
	if opts.output != outputJSON && opts.output != outputTable {
		return fmt.Errorf("invalid --output %q: must be %s or %s", opts.output, outputJSON, outputTable)
	}

	cfg, err := b.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := b.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	coll, err := b.NewCollector(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub collector: %w", err)
	}

	observers := progress.Multi{progress.NewLogging(logger)}
	var terminal *progress.Terminal
	if !opts.noProgress && b.ProgressEnabled != nil && b.ProgressEnabled() {
		terminal = progress.NewTerminal(cmd.ErrOrStderr())
		observers = append(observers, terminal)
	}

	auditOpts := audit.Options{
		IncludeMaintainers: opts.maintainers,
		ResolveProfiles:    !opts.noProfiles,
		ContinueOnError:    opts.continueOnError,
	}
	report, err := audit.NewEnumerator(coll, observers, logger, auditOpts).Enumerate(cmd.Context(), orgs)
	if terminal != nil {
		terminal.Done()
	}
	if err != nil {
		return err
	}
	for _, f := range report.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: skipped organization %s: %v\n", f.Org, f.Err)
	}

	exportOpts := export.Options{IncludeMaintainers: opts.maintainers}

	if !opts.quiet {
		switch opts.output {
		case outputTable:
			export.WriteTable(cmd.OutOrStdout(), report.Results, exportOpts)
		default:
			if err := export.WriteJSON(cmd.OutOrStdout(), report.Results); err != nil {
				return err
			}
		}
	}
	if opts.json {
		path := filepath.Join(b.OutputDir, export.JSONFileName)
		logger.Info("Exporting results", zap.String("path", path))
		if err := export.ExportJSONFile(path, report.Results); err != nil {
			return err
		}
	}
	if opts.csv {
		path := filepath.Join(b.OutputDir, export.CSVFileName)
		logger.Info("Exporting results", zap.String("path", path))
		if err := export.ExportCSVFile(path, report.Results, exportOpts); err != nil {
			return err
		}
	}

	return nil
}
