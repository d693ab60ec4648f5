package app

import (
	"context"
	"log/slog"

	"ai-kitchen/internal/preferences"
)

// PreferencesResult is the envelope for saved preferences.
type PreferencesResult struct {
	Success     bool                     `json:"success"`
	Preferences *preferences.Preferences `json:"preferences,omitempty"`
	Exists      bool                     `json:"exists"`
	Error       string                   `json:"error,omitempty"`
}

// SavePreferences stores prefs as the user's defaults.
func (a *App) SavePreferences(ctx context.Context, userID string, prefs preferences.Preferences) (res PreferencesResult) {
	defer func() { a.observe("savePreferences", res.Success) }()

	if userID == "" {
		return PreferencesResult{Error: MsgNotAuthenticated}
	}
	if err := prefs.Validate(); err != nil {
		return PreferencesResult{Error: MsgInvalidPreferences}
	}
	if err := a.prefs.Upsert(ctx, userID, prefs); err != nil {
		slog.Error("failed to save preferences", slog.String("user_id", userID), slog.Any("error", err))
		return PreferencesResult{Error: MsgPreferencesFailed}
	}
	return PreferencesResult{Success: true, Preferences: &prefs, Exists: true}
}

// GetPreferences returns the user's saved preferences.
func (a *App) GetPreferences(ctx context.Context, userID string) (res PreferencesResult) {
	defer func() { a.observe("getPreferences", res.Success) }()

	if userID == "" {
		return PreferencesResult{Error: MsgNotAuthenticated}
	}
	prefs, err := a.prefs.Get(ctx, userID)
	if err != nil {
		slog.Error("failed to load preferences", slog.String("user_id", userID), slog.Any("error", err))
		return PreferencesResult{Error: MsgPreferencesLoad}
	}
	if prefs == nil {
		return PreferencesResult{Error: MsgPreferencesNotFound}
	}
	return PreferencesResult{Success: true, Preferences: prefs, Exists: true}
}

// HasPreferences reports whether the user has saved preferences.
func (a *App) HasPreferences(ctx context.Context, userID string) (res PreferencesResult) {
	defer func() { a.observe("hasPreferences", res.Success) }()

	if userID == "" {
		return PreferencesResult{Error: MsgNotAuthenticated}
	}
	exists, err := a.prefs.Exists(ctx, userID)
	if err != nil {
		slog.Error("failed to check preferences", slog.String("user_id", userID), slog.Any("error", err))
		return PreferencesResult{Error: MsgPreferencesLoad}
	}
	return PreferencesResult{Success: true, Exists: exists}
}
