package audit

import (
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/trustwatch/internal/scoring"
)

// TimestampFormat is the layout of the timestamp column.
const TimestampFormat = "2006-01-02 15:04:05"

// Header is the column row written at the top of a new log.
var Header = []string{"timestamp", "employee", "behavior_score", "email_score", "trust_score", "reasons"}

// Entry is one polling cycle as recorded in the audit log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Employee  string    `json:"employee"`
	Behavior  int       `json:"behavior_score"`
	Email     int       `json:"email_score"`
	Trust     int       `json:"trust_score"`
	Reasons   []string  `json:"reasons"`
}

func (e Entry) record() []string {
	return []string{
		e.Timestamp.Format(TimestampFormat),
		e.Employee,
		strconv.Itoa(e.Behavior),
		strconv.Itoa(e.Email),
		strconv.Itoa(e.Trust),
		strings.Join(e.Reasons, scoring.ReasonSeparator),
	}
}
