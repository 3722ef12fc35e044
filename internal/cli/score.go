package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustwatch/internal/scoring"
)

var (
	scoreFaces    int
	scoreBodies   []string
	scoreAt       string
	scoreExpected string
	scoreActual   string
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().IntVar(&scoreFaces, "faces", 1, "Faces visible to the camera")
	scoreCmd.Flags().StringArrayVar(&scoreBodies, "body", nil, "Inbox message body (repeatable)")
	scoreCmd.Flags().StringVar(&scoreAt, "at", "", "Evaluation time, HH:MM today or RFC3339 (default now)")
	scoreCmd.Flags().StringVar(&scoreExpected, "expected", "employee", "Employee the session monitors")
	scoreCmd.Flags().StringVar(&scoreActual, "actual", "", "Logged-in OS user (default: same as --expected)")
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Dry-run the scoring engine",
	Long:  "Scores the given signals with the configured policy. Nothing is persisted and no alert is sent.",
	Args:  cobra.NoArgs,
	RunE:  runScore,
}

type scoreReport struct {
	BehaviorScore int      `json:"behavior_score"`
	EmailScore    int      `json:"email_score"`
	TrustScore    int      `json:"trust_score"`
	Threshold     int      `json:"threshold"`
	Reasons       []string `json:"reasons"`
	Triggered     bool     `json:"triggered"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scorer, err := cfg.Scorer()
	if err != nil {
		return err
	}

	at, err := scoring.ParseAt(scoreAt, time.Now())
	if err != nil {
		return fmt.Errorf("--at: %w", err)
	}
	actual := scoreActual
	if actual == "" {
		actual = scoreExpected
	}

	res := scorer.Evaluate(scoring.Signals{
		Faces:    scoreFaces,
		Bodies:   scoreBodies,
		Now:      at,
		Expected: scoreExpected,
		Actual:   actual,
	})

	reasons := res.Reasons.Tags()
	if reasons == nil {
		reasons = []string{}
	}
	out, _ := json.MarshalIndent(scoreReport{
		BehaviorScore: res.Behavior,
		EmailScore:    res.Email,
		TrustScore:    res.Trust,
		Threshold:     scorer.Policy().Threshold,
		Reasons:       reasons,
		Triggered:     scorer.Triggered(res),
	}, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
