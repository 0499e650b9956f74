package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ynabmigrate/ynabmigrate/internal/cache"
	"github.com/ynabmigrate/ynabmigrate/internal/config"
	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
	"github.com/ynabmigrate/ynabmigrate/internal/logger"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
	"github.com/ynabmigrate/ynabmigrate/internal/reconcile"
	"github.com/ynabmigrate/ynabmigrate/internal/runlog"
	"github.com/ynabmigrate/ynabmigrate/internal/transform"
	"github.com/ynabmigrate/ynabmigrate/internal/ynab"
)

// sourceOptions locate the export and its configuration.
type sourceOptions struct {
	configPath   string
	registerPath string
	budgetPath   string
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "ynabmigrate.yaml", "configuration file")
	cmd.Flags().StringVar(&o.registerPath, "register", "", "YNAB4 register export (required)")
	cmd.Flags().StringVar(&o.budgetPath, "budget", "", "YNAB4 budget export (required)")
	_ = cmd.MarkFlagRequired("register")
	_ = cmd.MarkFlagRequired("budget")
}

type importOptions struct {
	sourceOptions
	cachePath  string
	runLogPath string
	envFile    string
	minDate    string
	maxDate    string
	dryRun     bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the export into Firefly III",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.sourceOptions.register(cmd)
	cmd.Flags().StringVar(&opts.cachePath, "cache", cache.DefaultPath, "remote state cache (.json, or .db for SQLite)")
	cmd.Flags().StringVar(&opts.runLogPath, "run-log", runlog.DefaultPath, "CSV log of transaction group outcomes")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "file seeding FIREFLY_III_URL and FIREFLY_III_ACCESS_TOKEN")
	cmd.Flags().StringVar(&opts.minDate, "min-date", "", "skip groups before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.maxDate, "max-date", "", "skip groups after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "build the plan without contacting Firefly III")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()

	minDate, err := parseDateFlag("min-date", opts.minDate)
	if err != nil {
		return err
	}
	maxDate, err := parseDateFlag("max-date", opts.maxDate)
	if err != nil {
		return err
	}
	if !minDate.IsZero() && !maxDate.IsZero() && maxDate.Before(minDate) {
		return fmt.Errorf("--max-date %s is before --min-date %s", opts.maxDate, opts.minDate)
	}

	cfg, plan, err := buildPlan(opts.sourceOptions, time.Now(), log)
	if err != nil {
		return err
	}

	var (
		remote reconcile.Remote
		store  cache.Store = &cache.MemoryStore{}
	)
	if !opts.dryRun {
		creds, err := config.LoadCredentials(opts.envFile)
		if err != nil {
			return fmt.Errorf("loading credentials: %w", err)
		}
		remote = firefly.NewClient(creds.URL, creds.Token, firefly.WithLogger(log))

		if store, err = cache.Open(opts.cachePath); err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer store.Close()
	}

	engine := reconcile.NewEngine(remote, store, cfg, log, reconcile.Options{
		RunID:   runID,
		MinDate: minDate,
		MaxDate: maxDate,
		DryRun:  opts.dryRun,
	})
	report, runErr := engine.Run(ctx, plan)

	if err := runlog.Append(opts.runLogPath, report.Outcomes); err != nil {
		log.Warn().Err(err).Str("path", opts.runLogPath).Msg("failed to write run log")
	}
	printReport(out, report, opts.dryRun)
	return runErr
}

// buildPlan loads the configuration and export and turns them into a plan.
func buildPlan(src sourceOptions, now time.Time, log zerolog.Logger) (*config.Config, *model.Plan, error) {
	cfg, err := config.Load(src.configPath)
	if err != nil {
		return nil, nil, err
	}
	export, err := ynab.Load(src.registerPath, src.budgetPath, cfg.DateFormat)
	if err != nil {
		return nil, nil, err
	}
	log.Info().
		Int("register_rows", len(export.Register)).
		Int("budget_rows", len(export.Budget)).
		Msg("loaded export")

	plan, err := transform.NewBuilder(cfg, transform.ImportTag(now), log).Build(export.Register, export.Budget)
	if err != nil {
		return nil, nil, err
	}
	return cfg, plan, nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, value)
	}
	return t, nil
}

func printReport(w io.Writer, r reconcile.Report, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "Dry run: %d transaction groups not submitted\n", r.Skipped)
		return
	}

	kinds := make([]string, 0, len(r.Entities))
	for k := range r.Entities {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		s := r.Entities[cache.Kind(k)]
		fmt.Fprintf(w, "%-17s %d created, %d updated, %d unchanged\n", k, s.Created, s.Updated, s.Unchanged)
	}
	fmt.Fprintf(w, "Imported %d transaction groups (%d created, %d duplicates), %d skipped, %d balance checkpoints passed\n",
		r.Imported, r.Created, r.Duplicates, r.Skipped, r.Checkpoints)
}
