// Package main provides the local habitflow CLI. It shares the services of the
// API server but runs them against a single-user SQLite database.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/ai"
	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/habitflow-engine/internal/config"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/workers"
)

// localUserID owns every habit in the CLI database.
const localUserID = "local"

const defaultHeatmapDays = 30

var (
	rootDBPath     string
	rootConfigPath string
	rootVerbose    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "habitflow",
		Short:         "Track habits, streaks and monthly reviews",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "database path (default: $XDG_DATA_HOME/habitflow/habitflow.db)")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/habitflow/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "print background logs to stderr")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newInsightsCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newAICmd())

	return rootCmd
}

// cliApp is the service graph a single command runs against.
type cliApp struct {
	stores  *repository.Stores
	habits  *services.HabitService
	stats   *services.StatsService
	reviews *services.ReviewService
	ai      *services.AIInsightService
	clock   services.Clock
	fileCfg config.FileConfig
}

// inlineStreaks recomputes streak snapshots before the command returns; a CLI
// process exits too early for the background worker.
type inlineStreaks struct {
	ctx    context.Context
	worker *workers.StreakWorker
}

func (s inlineStreaks) Enqueue(habitID string) {
	s.worker.Process(s.ctx, habitID)
}

func openApp(cmd *cobra.Command) (*cliApp, error) {
	if rootVerbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}

	configPath := rootConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loc, err := fileCfg.Location()
	if err != nil {
		return nil, err
	}
	aiCfg, err := fileCfg.AIConfig()
	if err != nil {
		return nil, err
	}

	dbPath := rootDBPath
	if dbPath == "" {
		dbPath = fileCfg.DBPathOr(config.DefaultDBPath())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stores, err := repository.OpenSQLStores(ctx, repository.DriverSQLite, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	clock := services.SystemClock(loc)
	streaks := inlineStreaks{ctx: ctx, worker: workers.NewStreakWorker(stores.Habits, clock)}

	return &cliApp{
		stores:  stores,
		habits:  services.NewHabitService(stores.Habits, streaks, clock),
		stats:   services.NewStatsService(stores.Habits),
		reviews: services.NewReviewService(stores.Reviews, stores.Habits),
		ai:      services.NewAIInsightService(stores.Habits, ai.NewRegistryFromConfig(aiCfg), aiCfg.Timeout, clock),
		clock:   clock,
		fileCfg: fileCfg,
	}, nil
}

func (a *cliApp) close() {
	if err := a.stores.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

// withApp opens the database for the duration of fn.
func withApp(fn func(cmd *cobra.Command, args []string, app *cliApp) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.close()
		return fn(cmd, args, app)
	}
}

// resolveHabit accepts a full habit ID or any unambiguous prefix of one.
func (a *cliApp) resolveHabit(ctx context.Context, ref string) (*domain.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("habit id is empty")
	}

	habits, err := a.habits.ListByUserID(ctx, localUserID, true)
	if err != nil {
		return nil, err
	}

	var match *domain.Habit
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
		if !strings.HasPrefix(h.ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("habit id %q is ambiguous", ref)
		}
		match = h
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrHabitNotFound, ref)
	}
	return match, nil
}

// dateOrToday parses a YYYY-MM-DD argument, falling back to the current day.
func (a *cliApp) dateOrToday(value string) (time.Time, error) {
	if value == "" {
		return a.clock(), nil
	}
	t, err := domain.ParseDateKey(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
