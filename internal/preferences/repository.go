package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository is a database-backed store of each user's saved preferences.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Upsert stores prefs for userID, replacing any earlier row.
func (r *Repository) Upsert(ctx context.Context, userID string, prefs Preferences) error {
	dietary, err := json.Marshal(nonNil(prefs.DietaryPreferences))
	if err != nil {
		return fmt.Errorf("failed to marshal dietary preferences: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, goal, dietary_preferences, allergies, calorie_target, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			goal = excluded.goal,
			dietary_preferences = excluded.dietary_preferences,
			allergies = excluded.allergies,
			calorie_target = excluded.calorie_target,
			updated_at = excluded.updated_at`,
		userID, prefs.Goal, string(dietary), prefs.Allergies, prefs.CalorieTarget, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences for user %s: %w", userID, err)
	}
	return nil
}

// Get retrieves the saved preferences for userID.
func (r *Repository) Get(ctx context.Context, userID string) (*Preferences, error) {
	var (
		prefs   Preferences
		dietary string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT goal, dietary_preferences, allergies, calorie_target
		FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&prefs.Goal, &dietary, &prefs.Allergies, &prefs.CalorieTarget)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No preferences saved yet
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	if err := json.Unmarshal([]byte(dietary), &prefs.DietaryPreferences); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dietary preferences: %w", err)
	}
	return &prefs, nil
}

// Exists reports whether userID has saved preferences.
func (r *Repository) Exists(ctx context.Context, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM user_preferences WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check preferences: %w", err)
	}
	return n > 0, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
