package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

// AnswerResult is the graded outcome of a catalogue question.
type AnswerResult struct {
	domain.QuizResult
	Correct       bool     `json:"correct"`
	CorrectOption int      `json:"correctOption"`
	Explanation   string   `json:"explanation"`
	Badges        []string `json:"badges"`
}

// Questions returns the quiz catalogue without answers.
func (s *Service) Questions() []domain.PublicQuestion {
	return domain.Questions()
}

// QuizProgress returns the user's progress, or the starting progress when
// they have not answered anything yet.
func (s *Service) QuizProgress(ctx context.Context, userID string) (domain.QuizProgress, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return domain.QuizProgress{}, err
	}
	return s.loadProgress(ctx, userID)
}

// SubmitQuizAnswer scores an answer the client already graded.
func (s *Service) SubmitQuizAnswer(ctx context.Context, userID, questionID string, correct bool) (domain.QuizResult, error) {
	res, _, err := s.answer(ctx, userID, questionID, correct)
	return res, err
}

// AnswerQuestion grades option against the catalogue and scores it.
func (s *Service) AnswerQuestion(ctx context.Context, userID, questionID string, option int) (AnswerResult, error) {
	q, err := domain.LookupQuestion(questionID)
	if err != nil {
		return AnswerResult{}, err
	}
	correct, err := q.Grade(option)
	if err != nil {
		return AnswerResult{}, err
	}

	res, badges, err := s.answer(ctx, userID, questionID, correct)
	if err != nil {
		return AnswerResult{}, err
	}
	return AnswerResult{
		QuizResult:    res,
		Correct:       correct,
		CorrectOption: q.Correct,
		Explanation:   q.Explanation,
		Badges:        badges,
	}, nil
}

func (s *Service) answer(ctx context.Context, userID, questionID string, correct bool) (domain.QuizResult, []string, error) {
	s.quizMu.Lock()
	defer s.quizMu.Unlock()

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return domain.QuizResult{}, nil, err
	}

	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return domain.QuizResult{}, nil, err
	}
	progress, res := domain.ApplyAnswer(progress, questionID, correct)

	// Record before saving progress: a failed credit must leave progress
	// untouched.
	if res.Points > 0 {
		a := domain.NewActivity(userID, domain.ActivityQuiz, res.Points, map[string]any{
			"questionId": questionID,
			"isCorrect":  correct,
		})
		if _, err := s.record(ctx, a); err != nil {
			return domain.QuizResult{}, nil, err
		}
	}
	if err := s.repo.SaveQuizProgress(ctx, progress); err != nil {
		s.logger.ErrorContext(ctx, "quiz progress not saved after answer was scored",
			"user_id", userID,
			"question_id", questionID,
			"points", res.Points,
			"error", err,
		)
		return domain.QuizResult{}, nil, fmt.Errorf("save quiz progress: %w", err)
	}

	outcome := "wrong"
	if correct {
		outcome = "correct"
	}
	s.metrics.QuizAnswers.WithLabelValues(outcome).Inc()

	// Badges are derived from progress and merged again on the next answer.
	badges, changed := domain.MergeBadges(user.Badges, domain.QuizBadges(progress))
	if changed {
		if _, err := s.repo.UpdateUser(ctx, userID, domain.UserPatch{Badges: badges}); err != nil {
			s.logger.WarnContext(ctx, "badge update failed", "user_id", userID, "error", err)
			return res, user.Badges, nil
		}
		s.logger.InfoContext(ctx, "badges awarded", "user_id", userID, "badges", badges)
	}
	return res, badges, nil
}

func (s *Service) loadProgress(ctx context.Context, userID string) (domain.QuizProgress, error) {
	p, err := s.repo.GetQuizProgress(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewQuizProgress(userID), nil
	}
	if err != nil {
		return domain.QuizProgress{}, fmt.Errorf("load quiz progress: %w", err)
	}
	return p, nil
}
