package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/analytics"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
)

var (
	addCategory  string
	addColor     string
	addIcon      string
	addFrequency string
	addGoal      int

	listAll bool

	archiveRestore bool

	statsDate string

	reviewDate      string
	reviewSave      bool
	reviewPeriod    string
	reviewDecisions map[string]string
	reviewNotes     map[string]string

	aiProvider string
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a habit",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runAddCmd),
	}
	cmd.Flags().StringVar(&addCategory, "category", "", "category (default: General)")
	cmd.Flags().StringVar(&addColor, "color", "", "color as #RRGGBB")
	cmd.Flags().StringVar(&addIcon, "icon", "", "icon name")
	cmd.Flags().StringVar(&addFrequency, "frequency", domain.FrequencyDaily, "daily, weekly or monthly")
	cmd.Flags().IntVar(&addGoal, "goal", 1, "completions per period for weekly and monthly habits")
	return cmd
}

func runAddCmd(cmd *cobra.Command, args []string, app *cliApp) error {
	habit, err := app.habits.Create(cmd.Context(), services.CreateHabitInput{
		UserID:    localUserID,
		Name:      args[0],
		Category:  addCategory,
		Color:     addColor,
		Icon:      addIcon,
		Frequency: domain.Frequency{Type: addFrequency, Goal: addGoal},
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", habit.Name, shortID(habit.ID))
	return err
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  cobra.NoArgs,
		RunE:  withApp(runListCmd),
	}
	cmd.Flags().BoolVar(&listAll, "all", false, "include archived habits")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string, app *cliApp) error {
	habits, err := app.habits.ListByUserID(cmd.Context(), localUserID, listAll)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No habits yet. Create one with: habitflow add <name>")
		return err
	}

	today := app.clock()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tFREQUENCY\tSTREAK\tTODAY")
	for _, h := range habits {
		name := h.Name
		if h.Archived {
			name += " (archived)"
		}
		done := " "
		if h.IsCompleted(today) {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(h.ID), name, h.Category, formatFrequency(h.Frequency), h.CurrentStreak, done)
	}
	return tw.Flush()
}

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <id> [date]",
		Short: "Toggle a completion for today or the given YYYY-MM-DD",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  withApp(runLogCmd),
	}
}

func runLogCmd(cmd *cobra.Command, args []string, app *cliApp) error {
	habit, err := app.resolveHabit(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var dateArg string
	if len(args) == 2 {
		dateArg = args[1]
	}
	date, err := app.dateOrToday(dateArg)
	if err != nil {
		return err
	}

	completed, err := app.habits.ToggleLog(cmd.Context(), services.ToggleLogInput{
		HabitID: habit.ID,
		UserID:  localUserID,
		Date:    date,
	})
	if err != nil {
		return err
	}

	state := "cleared"
	if completed {
		state = "completed"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s\n", habit.Name, state, domain.DateKey(date))
	return err
}

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a habit, or bring it back with --restore",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runArchiveCmd),
	}
	cmd.Flags().BoolVar(&archiveRestore, "restore", false, "restore an archived habit")
	return cmd
}

func runArchiveCmd(cmd *cobra.Command, args []string, app *cliApp) error {
	habit, err := app.resolveHabit(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	verb := "Archived"
	if archiveRestore {
		verb = "Restored"
		habit, err = app.habits.Restore(cmd.Context(), habit.ID, localUserID)
	} else {
		habit, err = app.habits.Archive(cmd.Context(), habit.ID, localUserID)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, habit.Name)
	return err
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a habit",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runDeleteCmd),
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string, app *cliApp) error {
	habit, err := app.resolveHabit(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := app.habits.Delete(cmd.Context(), habit.ID, localUserID); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", habit.Name)
	return err
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show streaks, completion rates and a heatmap",
		Args:  cobra.NoArgs,
		RunE:  withApp(runStatsCmd),
	}
	cmd.Flags().StringVar(&statsDate, "date", "", "reference day (YYYY-MM-DD, default: today)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string, app *cliApp) error {
	now, err := app.dateOrToday(statsDate)
	if err != nil {
		return err
	}

	overview, err := app.stats.GetOverview(cmd.Context(), localUserID, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Stats for %s: %d active habits\n\n", overview.Date, overview.ActiveHabits)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCURRENT\tLONGEST\tRATE\tTARGET")
	for _, s := range overview.Habits {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\t%d%% of %d/%s\n",
			s.HabitName, s.CurrentStreak, s.LongestStreak, s.CompletionRate,
			s.Target.Rate, s.Target.Goal, s.Target.Type)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	days := app.fileCfg.HeatmapDaysOr(defaultHeatmapDays)
	to := domain.Day(now)
	from := to.AddDate(0, 0, -(days - 1))
	cells, err := app.stats.GetHeatmap(cmd.Context(), localUserID, from, to)
	if err != nil {
		return err
	}
	return writeHeatmap(out, cells)
}

// writeHeatmap prints one shade per day, oldest first.
func writeHeatmap(w io.Writer, cells []domain.HeatmapCell) error {
	if len(cells) == 0 {
		return nil
	}
	peak := 0
	for _, c := range cells {
		if c.Count > peak {
			peak = c.Count
		}
	}

	shades := []rune{'.', '░', '▒', '▓', '█'}
	var b strings.Builder
	for _, c := range cells {
		level := 0
		if peak > 0 && c.Count > 0 {
			level = 1 + (c.Count*(len(shades)-1)-1)/peak
		}
		b.WriteRune(shades[level])
	}

	_, err := fmt.Fprintf(w, "\n%s .. %s\n%s\n", cells[0].Date, cells[len(cells)-1].Date, b.String())
	return err
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show pattern insights for the last four weeks",
		Args:  cobra.NoArgs,
		RunE:  withApp(runInsightsCmd),
	}
}

func runInsightsCmd(cmd *cobra.Command, _ []string, app *cliApp) error {
	insights, err := app.stats.GetInsights(cmd.Context(), localUserID, app.clock())
	if err != nil {
		return err
	}
	return writeInsights(cmd.OutOrStdout(), insights)
}

func writeInsights(w io.Writer, insights []domain.Insight) error {
	if len(insights) == 0 {
		_, err := fmt.Fprintln(w, "No insights yet. Keep logging!")
		return err
	}
	for _, in := range insights {
		if _, err := fmt.Fprintf(w, "[%s] %s\n  %s\n", in.Type, in.Title, in.Description); err != nil {
			return err
		}
	}
	return nil
}

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Summarize last month, or save its review with --save",
		Args:  cobra.NoArgs,
		RunE:  withApp(runReviewCmd),
	}
	cmd.Flags().StringVar(&reviewDate, "date", "", "reference day (YYYY-MM-DD, default: today)")
	cmd.Flags().BoolVar(&reviewSave, "save", false, "save the review")
	cmd.Flags().StringVar(&reviewPeriod, "period", "", "period to save (YYYY-MM, default: the month before --date)")
	cmd.Flags().StringToStringVar(&reviewDecisions, "decision", nil, "habit decision as id=keep|modify|drop (repeatable)")
	cmd.Flags().StringToStringVar(&reviewNotes, "note", nil, "note for a decision as id=text (repeatable)")
	return cmd
}

func runReviewCmd(cmd *cobra.Command, _ []string, app *cliApp) error {
	now, err := app.dateOrToday(reviewDate)
	if err != nil {
		return err
	}
	if reviewSave {
		return saveReview(cmd, app, now)
	}

	summary, err := app.stats.GetReviewSummary(cmd.Context(), localUserID, now)
	if err != nil {
		return err
	}
	status, err := app.reviews.Status(cmd.Context(), localUserID, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Review for %s: %d%% overall\n", summary.Period, summary.TotalCompletionRate)
	if status.Due {
		fmt.Fprintln(out, "Not reviewed yet. Save it with: habitflow review --save --decision <id>=keep")
	} else {
		fmt.Fprintln(out, "Already reviewed.")
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDAYS\tRATE\tTARGET")
	for _, h := range summary.Habits {
		met := "missed"
		if h.TargetMet {
			met = "met"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%.0f%%\t%s\n",
			shortID(h.HabitID), h.Name, h.LoggedDays, h.DaysInMonth, h.Rate*100, met)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if summary.BestHabit != nil {
		fmt.Fprintf(out, "\nBest habit: %s\n", summary.BestHabit.Name)
	}
	if len(summary.DecliningHabits) > 0 {
		fmt.Fprintf(out, "Declining: %s\n", joinNames(summary.DecliningHabits))
	}
	return nil
}

func saveReview(cmd *cobra.Command, app *cliApp, now time.Time) error {
	period := reviewPeriod
	if period == "" {
		period = analytics.PreviousPeriod(now)
	}

	refs := make([]string, 0, len(reviewDecisions))
	for ref := range reviewDecisions {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	decisions := make([]domain.ReviewDecision, 0, len(refs))
	for _, ref := range refs {
		habit, err := app.resolveHabit(cmd.Context(), ref)
		if err != nil {
			return err
		}
		decisions = append(decisions, domain.ReviewDecision{
			HabitID:  habit.ID,
			Decision: reviewDecisions[ref],
			Notes:    reviewNotes[ref],
		})
	}

	review, err := app.reviews.Save(cmd.Context(), services.SaveReviewInput{
		UserID:    localUserID,
		Period:    period,
		Decisions: decisions,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved review for %s with %d decisions\n", review.Period, len(review.Decisions))
	return err
}

func newAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Ask an AI provider for insights",
		Args:  cobra.NoArgs,
		RunE:  withApp(runAICmd),
	}
	cmd.Flags().StringVar(&aiProvider, "provider", "", "openai, anthropic or gemini (default: first configured)")
	return cmd
}

func runAICmd(cmd *cobra.Command, _ []string, app *cliApp) error {
	applyStringConfig(cmd, "provider", &aiProvider, app.fileCfg.AI.Provider)

	insights, err := app.ai.Generate(cmd.Context(), localUserID, aiProvider)
	if err != nil {
		return err
	}
	return writeInsights(cmd.OutOrStdout(), insights)
}

func formatFrequency(f domain.Frequency) string {
	if f.Type == domain.FrequencyDaily || f.Type == "" {
		return domain.FrequencyDaily
	}
	return fmt.Sprintf("%d/%s", f.Goal, strings.TrimSuffix(f.Type, "ly"))
}

func joinNames(stats []domain.HabitReviewStat) string {
	names := make([]string, 0, len(stats))
	for _, s := range stats {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
