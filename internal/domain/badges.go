package domain

import "slices"

// Badge identifiers.
const (
	BadgeWaterSaver    = "water-saver"
	BadgeQuizMaster    = "quiz-master"
	BadgeRiverGuardian = "river-guardian"
)

const riverGuardianHealth = 90

// QuizBadges returns the badges earned by the given quiz progress, in a
// fixed order.
func QuizBadges(p QuizProgress) []string {
	var out []string
	if p.CorrectAnswers > 0 {
		out = append(out, BadgeWaterSaver)
	}
	if p.CorrectAnswers == p.TotalQuestions && allQuestionsCompleted(p.CompletedQuizzes) {
		out = append(out, BadgeQuizMaster)
	}
	if p.RiverHealth >= riverGuardianHealth {
		out = append(out, BadgeRiverGuardian)
	}
	return out
}

func allQuestionsCompleted(done []string) bool {
	for _, q := range questions {
		if !slices.Contains(done, q.ID) {
			return false
		}
	}
	return true
}

// MergeBadges adds earned badges to current and reports whether anything
// changed. Existing badges are never removed.
func MergeBadges(current, earned []string) ([]string, bool) {
	out := slices.Clone(current)
	changed := false
	for _, b := range earned {
		if !slices.Contains(out, b) {
			out = append(out, b)
			changed = true
		}
	}
	return out, changed
}
