package domain

import (
	"fmt"
	"slices"
)

const (
	quizCorrectPoints  = 10
	healthGainCorrect  = 2
	healthLossWrong    = -1
	initialRiverHealth = 50
)

// QuizProgress tracks a user's answers and the river-health score they drive.
type QuizProgress struct {
	UserID           string   `json:"userId"`
	CorrectAnswers   int      `json:"correctAnswers"`
	TotalQuestions   int      `json:"totalQuestions"`
	RiverHealth      int      `json:"riverHealth"`
	CompletedQuizzes []string `json:"completedQuizzes"`
}

// NewQuizProgress returns the starting progress for a user.
func NewQuizProgress(userID string) QuizProgress {
	return QuizProgress{
		UserID:           userID,
		RiverHealth:      initialRiverHealth,
		CompletedQuizzes: []string{},
	}
}

// QuizResult is returned after an answer is scored.
type QuizResult struct {
	Points            int `json:"points"`
	RiverHealthChange int `json:"riverHealthChange"`
	NewRiverHealth    int `json:"newRiverHealth"`
}

// ApplyAnswer scores one answer and returns the updated progress. River
// health never leaves [0, 100].
func ApplyAnswer(p QuizProgress, questionID string, correct bool) (QuizProgress, QuizResult) {
	res := QuizResult{RiverHealthChange: healthLossWrong}
	if correct {
		res.Points = quizCorrectPoints
		res.RiverHealthChange = healthGainCorrect
		p.CorrectAnswers++
	}
	p.TotalQuestions++
	p.RiverHealth = clampHealth(p.RiverHealth + res.RiverHealthChange)
	if questionID != "" && !slices.Contains(p.CompletedQuizzes, questionID) {
		p.CompletedQuizzes = append(slices.Clone(p.CompletedQuizzes), questionID)
	}
	res.NewRiverHealth = p.RiverHealth
	return p, res
}

func clampHealth(v int) int {
	return max(0, min(100, v))
}

// Question is a multiple-choice quiz question.
type Question struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// PublicQuestion is a question without its answer.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

var questions = []Question{
	{
		ID:          "q1",
		Question:    "What percentage of Earth's water is freshwater?",
		Options:     []string{"97%", "3%", "10%", "50%"},
		Correct:     1,
		Explanation: "Only 3% of Earth's water is freshwater, making it a precious resource!",
	},
	{
		ID:          "q2",
		Question:    "Which activity uses the most water in a typical household?",
		Options:     []string{"Drinking", "Showering", "Toilet flushing", "Washing dishes"},
		Correct:     2,
		Explanation: "Toilet flushing accounts for about 30% of household water use.",
	},
	{
		ID:          "q3",
		Question:    "How long can a river ecosystem take to recover from pollution?",
		Options:     []string{"1 year", "5 years", "10-50 years", "100+ years"},
		Correct:     2,
		Explanation: "River ecosystems can take 10-50 years or more to fully recover from severe pollution.",
	},
	{
		ID:          "q4",
		Question:    "What is the main cause of river pollution worldwide?",
		Options:     []string{"Industrial waste", "Agricultural runoff", "Plastic waste", "Oil spills"},
		Correct:     1,
		Explanation: "Agricultural runoff containing fertilizers and pesticides is the leading cause of river pollution.",
	},
}

// Questions returns the quiz catalogue without answers.
func Questions() []PublicQuestion {
	out := make([]PublicQuestion, len(questions))
	for i, q := range questions {
		out[i] = PublicQuestion{ID: q.ID, Question: q.Question, Options: slices.Clone(q.Options)}
	}
	return out
}

// LookupQuestion finds a catalogue question by id.
func LookupQuestion(id string) (Question, error) {
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return Question{}, fmt.Errorf("question %q: %w", id, ErrNotFound)
}

// Grade reports whether option is the correct answer.
func (q Question) Grade(option int) (bool, error) {
	if option < 0 || option >= len(q.Options) {
		return false, fmt.Errorf("%w: option %d out of range", ErrInvalidInput, option)
	}
	return option == q.Correct, nil
}
