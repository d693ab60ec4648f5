package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Insert stores plan and fills in its ID and CreatedAt.
func (r *PlanRepository) Insert(ctx context.Context, plan *MealPlan) error {
	dailyMeals, err := json.Marshal(plan.DailyMeals)
	if err != nil {
		return fmt.Errorf("failed to marshal daily meals: %w", err)
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (id, user_id, title, description, start_date, end_date, goal, daily_meals, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, plan.UserID, plan.Title, plan.Description, plan.StartDate, plan.EndDate, plan.Goal, string(dailyMeals), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store meal plan: %w", err)
	}

	plan.ID = id
	plan.CreatedAt = createdAt
	return nil
}

// Get retrieves a meal plan by its ID.
func (r *PlanRepository) Get(ctx context.Context, id string) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, start_date, end_date, goal, daily_meals, created_at
		FROM meal_plans WHERE id = ?`, id)

	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Plan not found
		}
		return nil, fmt.Errorf("failed to get meal plan by ID: %w", err)
	}
	return plan, nil
}

// ListRecentByUserID retrieves the N most recent meal plans for a given user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]MealPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, start_date, end_date, goal, daily_meals, created_at
		FROM meal_plans WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal plans: %w", err)
	}
	return plans, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*MealPlan, error) {
	var (
		plan       MealPlan
		dailyMeals string
	)
	err := row.Scan(&plan.ID, &plan.UserID, &plan.Title, &plan.Description,
		&plan.StartDate, &plan.EndDate, &plan.Goal, &dailyMeals, &plan.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dailyMeals), &plan.DailyMeals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal daily meals: %w", err)
	}
	return &plan, nil
}
