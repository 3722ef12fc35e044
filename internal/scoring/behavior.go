package scoring

// Behavior score bins keyed by detected face count.
const (
	BehaviorAbsent   = 30 // nobody in front of the camera
	BehaviorSingle   = 80 // exactly the employee
	BehaviorMultiple = 40 // someone else is looking
)

// keywordPenalty is subtracted from the email score per distinct keyword.
const keywordPenalty = 10

// BehaviorScore maps a face count to its behavior bin.
func BehaviorScore(faces int) int {
	switch {
	case faces == 1:
		return BehaviorSingle
	case faces > 1:
		return BehaviorMultiple
	default:
		return BehaviorAbsent
	}
}

// EmailScore returns max(0, 100 - 10*matches).
func EmailScore(matches int) int {
	score := 100 - keywordPenalty*matches
	if score < 0 {
		return 0
	}
	return score
}
