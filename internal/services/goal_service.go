package services

import (
	"context"
	"fmt"

	"duit/internal/core"
	"duit/internal/log"
	"duit/internal/storage"
)

// GoalService owns savings-goal mutations. Completion is detected at
// the deposit, so the congratulation fires exactly once.
type GoalService struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewGoalService(repo *storage.SQLiteRepository, logger *log.Logger) *GoalService {
	return &GoalService{
		storage: repo,
		logger:  logger.WithComponent(log.ComponentNotifier),
	}
}

func (s *GoalService) Create(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	return s.storage.CreateGoal(ctx, g)
}

func (s *GoalService) Update(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, err
	}
	return s.storage.GetGoal(ctx, g.UserID, g.ID)
}

// AddFunds deposits into a goal. When the deposit crosses the target,
// the goal is marked completed and a goal-achieved notification is
// created.
func (s *GoalService) AddFunds(ctx context.Context, userID, goalID int64, amount core.Money) (core.SavingsGoal, error) {
	goal, err := s.storage.GetGoal(ctx, userID, goalID)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	justCompleted, err := goal.AddFunds(amount)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	if err := s.storage.UpdateGoal(ctx, goal); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("persist deposit: %w", err)
	}

	if justCompleted {
		_, err := s.storage.CreateNotificationIfAbsent(ctx, core.Notification{
			UserID:   userID,
			Type:     core.NotifGoalAchieved,
			Title:    "Goal Achieved!",
			Message:  fmt.Sprintf("Congratulations! You reached your savings goal %q of %s.", goal.Name, core.FormatRupiah(goal.TargetAmount.Amount)),
			Priority: core.PriorityHigh,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to create goal-achieved notification",
				log.FieldGoalID, goalID, log.FieldError, err)
		}
	}

	return goal, nil
}

func (s *GoalService) Get(ctx context.Context, userID, id int64) (core.SavingsGoal, error) {
	return s.storage.GetGoal(ctx, userID, id)
}

func (s *GoalService) List(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	return s.storage.ListGoals(ctx, userID)
}

func (s *GoalService) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteGoal(ctx, userID, id)
}
