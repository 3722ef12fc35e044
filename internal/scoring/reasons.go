package scoring

import "strings"

// Reason tags emitted by the engine and the sensitive-access detector.
const (
	TagUnusualTime = "unusual-login-time"
	tagKeyword     = "keyword:"
	tagWrongUser   = "wrong-user:"
	tagFileAccess  = "file-access:"
)

// ReasonSeparator joins reason tags wherever they are rendered as one
// string: log lines and the audit reasons column.
const ReasonSeparator = "; "

// KeywordTag returns the reason tag for a matched suspicious keyword.
func KeywordTag(word string) string { return tagKeyword + word }

// WrongUserTag returns the reason tag for an identity mismatch.
func WrongUserTag(actual string) string { return tagWrongUser + actual }

// FileAccessTag returns the reason tag for a sensitive file access.
func FileAccessTag(basename string) string { return tagFileAccess + basename }

// Reasons is an ordered set of reason tags for one cycle.
// Duplicates are dropped on Add; order is detection order.
type Reasons struct {
	tags []string
}

// Add appends tag unless it is already present.
func (r *Reasons) Add(tag string) {
	for _, t := range r.tags {
		if t == tag {
			return
		}
	}
	r.tags = append(r.tags, tag)
}

// Len returns the number of tags.
func (r *Reasons) Len() int { return len(r.tags) }

// Has reports whether tag is present.
func (r *Reasons) Has(tag string) bool {
	for _, t := range r.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags returns a copy of the tags in detection order.
func (r *Reasons) Tags() []string {
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// Without returns the tags minus any equal to exclude.
func (r *Reasons) Without(exclude string) []string {
	out := make([]string, 0, len(r.tags))
	for _, t := range r.tags {
		if t != exclude {
			out = append(out, t)
		}
	}
	return out
}

// String joins the tags the way the audit log stores them.
func (r *Reasons) String() string {
	return strings.Join(r.tags, ReasonSeparator)
}
