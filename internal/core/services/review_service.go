package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/analytics"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

type ReviewService struct {
	repo      domain.ReviewRepository
	habitRepo domain.HabitRepository
}

func NewReviewService(repo domain.ReviewRepository, habitRepo domain.HabitRepository) *ReviewService {
	return &ReviewService{
		repo:      repo,
		habitRepo: habitRepo,
	}
}

type SaveReviewInput struct {
	UserID    string
	Period    string
	Decisions []domain.ReviewDecision
}

// Save stores the review for its period, replacing any earlier one, and archives
// the habits the user decided to drop.
func (s *ReviewService) Save(ctx context.Context, input SaveReviewInput) (*domain.MonthlyReview, error) {
	review, err := domain.NewMonthlyReview(input.UserID, input.Period, input.Decisions)
	if err != nil {
		return nil, err
	}

	for _, d := range review.Decisions {
		habit, err := s.habitRepo.GetByID(ctx, d.HabitID)
		if err != nil {
			return nil, err
		}
		if habit.UserID != input.UserID {
			return nil, domain.ErrHabitNotFound
		}
	}

	if err := s.repo.Save(ctx, review); err != nil {
		return nil, err
	}

	for _, d := range review.Decisions {
		if d.Decision != domain.DecisionDrop {
			continue
		}
		if err := s.archive(ctx, d.HabitID); err != nil {
			log.Printf("[REVIEW] Failed to archive dropped habit %s: %v", d.HabitID, err)
		}
	}

	return review, nil
}

func (s *ReviewService) archive(ctx context.Context, habitID string) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit.Archived {
		return nil
	}
	habit.Archive()
	return s.habitRepo.Update(ctx, habit)
}

func (s *ReviewService) Get(ctx context.Context, userID, period string) (*domain.MonthlyReview, error) {
	if _, err := domain.ParsePeriod(period); err != nil {
		return nil, err
	}
	return s.repo.GetByPeriod(ctx, userID, period)
}

func (s *ReviewService) List(ctx context.Context, userID string) ([]*domain.MonthlyReview, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Status tells whether the month preceding now still needs a review.
func (s *ReviewService) Status(ctx context.Context, userID string, now time.Time) (*domain.ReviewStatus, error) {
	reviews, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	periods := make([]string, 0, len(reviews))
	for _, r := range reviews {
		periods = append(periods, r.Period)
	}

	return &domain.ReviewStatus{
		Period: analytics.PreviousPeriod(now),
		Due:    analytics.IsReviewDue(periods, now),
	}, nil
}
