package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/trustwatch/internal/escalation"
	"github.com/ppiankov/trustwatch/internal/scoring"
	"github.com/ppiankov/trustwatch/internal/warnings"
)

// ScoreInput defines parameters for the trustwatch_score tool.
type ScoreInput struct {
	Faces    int      `json:"faces" jsonschema:"number of faces visible to the camera"`
	Bodies   []string `json:"bodies,omitempty" jsonschema:"plain-text bodies of recent inbox messages"`
	Time     string   `json:"time,omitempty" jsonschema:"evaluation time, RFC3339 or HH:MM today; defaults to now"`
	Expected string   `json:"expected" jsonschema:"employee the session monitors"`
	Actual   string   `json:"actual,omitempty" jsonschema:"logged-in OS user; defaults to expected"`
}

// ScoreOutput contains the scored cycle.
type ScoreOutput struct {
	BehaviorScore int      `json:"behavior_score"`
	EmailScore    int      `json:"email_score"`
	TrustScore    int      `json:"trust_score"`
	Reasons       []string `json:"reasons"`
	OffHours      bool     `json:"off_hours"`
	WrongUser     bool     `json:"wrong_user"`
	Triggered     bool     `json:"triggered"`
	Threshold     int      `json:"threshold"`
}

// WarningsInput defines parameters for the trustwatch_warnings tool.
type WarningsInput struct {
	Employee string `json:"employee,omitempty" jsonschema:"employee identity (case-insensitive); omit to list all"`
}

// WarningRecord is one employee's escalation standing.
type WarningRecord struct {
	Employee string `json:"employee"`
	Warnings int    `json:"warnings"`
	State    string `json:"state"`
}

// WarningsOutput lists warning records.
type WarningsOutput struct {
	Records []WarningRecord `json:"records"`
}

func (s *Server) handleScore(_ context.Context, _ *mcpsdk.CallToolRequest, input ScoreInput) (*mcpsdk.CallToolResult, ScoreOutput, error) {
	if strings.TrimSpace(input.Expected) == "" {
		return nil, ScoreOutput{}, fmt.Errorf("expected is required")
	}
	if input.Faces < 0 {
		return nil, ScoreOutput{}, fmt.Errorf("faces must not be negative")
	}
	at, err := scoring.ParseAt(input.Time, s.now())
	if err != nil {
		return nil, ScoreOutput{}, err
	}
	actual := input.Actual
	if actual == "" {
		actual = input.Expected
	}

	res := s.scorer.Evaluate(scoring.Signals{
		Faces:    input.Faces,
		Bodies:   input.Bodies,
		Now:      at,
		Expected: input.Expected,
		Actual:   actual,
	})

	reasons := res.Reasons.Tags()
	if reasons == nil {
		reasons = []string{}
	}
	return nil, ScoreOutput{
		BehaviorScore: res.Behavior,
		EmailScore:    res.Email,
		TrustScore:    res.Trust,
		Reasons:       reasons,
		OffHours:      res.OffHours,
		WrongUser:     res.WrongUser,
		Triggered:     s.scorer.Triggered(res),
		Threshold:     s.scorer.Policy().Threshold,
	}, nil
}

func (s *Server) handleWarnings(_ context.Context, _ *mcpsdk.CallToolRequest, input WarningsInput) (*mcpsdk.CallToolResult, WarningsOutput, error) {
	if input.Employee != "" {
		n, err := s.store.Get(input.Employee)
		if err != nil {
			return nil, WarningsOutput{}, fmt.Errorf("read warnings for %q: %w", input.Employee, err)
		}
		return nil, WarningsOutput{Records: []WarningRecord{
			toRecord(warnings.Record{Employee: warnings.Normalize(input.Employee), Warnings: n}),
		}}, nil
	}

	recs, err := s.store.List()
	if err != nil {
		return nil, WarningsOutput{}, fmt.Errorf("list warnings: %w", err)
	}
	out := WarningsOutput{Records: make([]WarningRecord, 0, len(recs))}
	for _, r := range recs {
		out.Records = append(out.Records, toRecord(r))
	}
	return nil, out, nil
}

func toRecord(r warnings.Record) WarningRecord {
	return WarningRecord{
		Employee: r.Employee,
		Warnings: r.Warnings,
		State:    escalation.StateFor(r.Warnings).String(),
	}
}
