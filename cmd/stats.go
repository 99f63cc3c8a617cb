package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/ipquiz/internal/quiz"
	"github.com/abhisek/ipquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show finished quiz sessions and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		days, _ := cmd.Flags().GetInt("days")

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		events, err := rt.events()
		if err != nil {
			return err
		}
		opts := store.QueryOpts{Limit: limit}
		if days > 0 {
			opts.From = time.Now().AddDate(0, 0, -days)
		}
		sessions, err := events.QuerySessionSummaries(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No finished sessions yet.")
			return nil
		}
		printSessionStats(out, sessions)
		return nil
	},
}

func printSessionStats(w io.Writer, sessions []store.SessionSummaryRecord) {
	rule := strings.Repeat("─", 64)
	fmt.Fprintf(w, "%-19s  %9s  %6s  %8s  %6s\n", "Finished", "Questions", "Time", "Score", "%")
	fmt.Fprintln(w, rule)

	var total, possible int
	byTopic := map[string]int{}
	byLevel := map[string]int{}
	for _, s := range sessions {
		fmt.Fprintf(w, "%-19s  %9d  %6s  %8s  %5.0f%%\n",
			s.Timestamp.Local().Format("2006-01-02 15:04:05"),
			s.Questions,
			clock(s.DurationSecs),
			fmt.Sprintf("%d/%d", s.Total, s.Possible),
			percent(s.Total, s.Possible))
		total += s.Total
		possible += s.Possible
		for k, v := range s.ByTopic {
			byTopic[k] += v
		}
		for k, v := range s.ByLevel {
			byLevel[k] += v
		}
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%d sessions, %d/%d points (%.0f%%)\n", len(sessions), total, possible, percent(total, possible))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Points by level")
	for _, l := range quiz.Levels {
		fmt.Fprintf(w, "  %-3s %5d\n", l, byLevel[string(l)])
	}
	if len(byTopic) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Points by topic")
		for _, topic := range sortedKeys(byTopic) {
			fmt.Fprintf(w, "  %-24s %5d\n", truncate(topic, 24), byTopic[topic])
		}
	}
}

func clock(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func percent(earned, possible int) float64 {
	if possible == 0 {
		return 0
	}
	return 100 * float64(earned) / float64(possible)
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	statsCmd.Flags().Int("days", 0, "Only sessions from the last N days")
}
