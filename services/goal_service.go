package services

import (
	"context"
	"strings"

	"studytrack/models"
	"studytrack/store"
)

type GoalService struct {
	store  store.GoalStore
	notify Notifier
}

func NewGoalService(st store.GoalStore, n Notifier) *GoalService {
	return &GoalService{store: st, notify: orNop(n)}
}

type GoalInput struct {
	Title       string          `json:"title" validate:"required"`
	Subject     models.Subject  `json:"subject" validate:"required,subject"`
	TargetHours float64         `json:"target_hours" validate:"gt=0"`
	Priority    models.Priority `json:"priority" validate:"omitempty,priority"`
	// Date defaults to today.
	Date string `json:"date" validate:"omitempty,day"`
}

type GoalUpdate struct {
	Title       *string          `json:"title"`
	Subject     *models.Subject  `json:"subject"`
	TargetHours *float64         `json:"target_hours"`
	Priority    *models.Priority `json:"priority"`
}

// Today lists the goals visible on today in display order.
func (s *GoalService) Today(ctx context.Context, userID, today string) ([]models.Goal, error) {
	goals, err := s.store.GetGoals(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	models.SortForDisplay(goals)
	return goals, nil
}

func (s *GoalService) Create(ctx context.Context, userID, today string, in GoalInput) (*models.Goal, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	date := today
	if in.Date != "" {
		date = models.NormalizeDay(in.Date)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	g := &models.Goal{
		Date:        date,
		Title:       in.Title,
		Subject:     in.Subject,
		TargetHours: in.TargetHours,
		Priority:    in.Priority,
	}
	if err := s.store.AddGoal(ctx, userID, g); err != nil {
		return nil, err
	}
	s.notify.Publish(userID, invalidated("goal", g.ID))
	return g, nil
}

func (s *GoalService) Update(ctx context.Context, userID, goalID string, in GoalUpdate) error {
	patch := store.GoalPatch{Subject: in.Subject, TargetHours: in.TargetHours, Priority: in.Priority}
	ve := &ValidationError{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			ve.Problems = append(ve.Problems, "title is required")
		}
		patch.Title = &t
	}
	if in.Subject != nil && !in.Subject.IsValid() {
		ve.Problems = append(ve.Problems, "subject is not a known subject")
	}
	if in.TargetHours != nil && *in.TargetHours <= 0 {
		ve.Problems = append(ve.Problems, "target_hours must be greater than 0")
	}
	if in.Priority != nil && !in.Priority.IsValid() {
		ve.Problems = append(ve.Problems, "priority must be High, Medium or Low")
	}
	if len(ve.Problems) > 0 {
		return ve
	}
	if err := s.store.UpdateGoal(ctx, userID, goalID, patch); err != nil {
		return err
	}
	s.notify.Publish(userID, invalidated("goal", goalID))
	return nil
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if err := s.store.DeleteGoal(ctx, userID, goalID); err != nil {
		return err
	}
	s.notify.Publish(userID, invalidated("goal", goalID))
	return nil
}

// Toggle flips completion from the state the caller last saw.
func (s *GoalService) Toggle(ctx context.Context, userID, goalID string, current bool, today string) error {
	if err := s.store.ToggleGoal(ctx, userID, goalID, current, today); err != nil {
		return err
	}
	s.notify.Publish(userID, invalidated("goal", goalID))
	return nil
}
