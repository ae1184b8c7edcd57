package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/lumi/backend/internal/domain"
)

// Keys the preferences are stored under
const (
	SavedSuggestionsKey = "lumi-saved-links"
	ThemeKey            = "lumi-theme"
)

// PreferencesService keeps the saved-suggestions list and theme preference.
// Both are read from the store once at construction and written back on every mutation.
type PreferencesService struct {
	store domain.KeyValueStore

	mu    sync.RWMutex
	saved []domain.ProductSuggestion
	theme domain.Theme
}

// NewPreferencesService loads the stored preferences. Missing or unreadable
// values fall back to an empty list and the dark theme.
func NewPreferencesService(ctx context.Context, store domain.KeyValueStore) *PreferencesService {
	s := &PreferencesService{
		store: store,
		saved: []domain.ProductSuggestion{},
		theme: domain.ThemeDark,
	}

	if raw, err := store.Get(ctx, SavedSuggestionsKey); err == nil {
		var saved []domain.ProductSuggestion
		if err := json.Unmarshal(raw, &saved); err != nil {
			log.Printf("[PREFS] Ignoring unreadable saved suggestions: %v", err)
		} else if saved != nil {
			s.saved = saved
		}
	} else if !errors.Is(err, domain.ErrKeyNotFound) {
		log.Printf("[PREFS] Failed to load saved suggestions: %v", err)
	}

	if raw, err := store.Get(ctx, ThemeKey); err == nil {
		if theme := domain.Theme(raw); theme.Valid() {
			s.theme = theme
		}
	} else if !errors.Is(err, domain.ErrKeyNotFound) {
		log.Printf("[PREFS] Failed to load theme: %v", err)
	}

	return s
}

// Saved returns the saved suggestions in the order they were saved
func (s *PreferencesService) Saved() []domain.ProductSuggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ProductSuggestion{}, s.saved...)
}

// Save appends a suggestion unless one with the same id is already saved
func (s *PreferencesService) Save(ctx context.Context, suggestion domain.ProductSuggestion) ([]domain.ProductSuggestion, error) {
	if suggestion.ID == "" {
		return nil, domain.NewValidationError("A suggestion id is required.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.saved {
		if item.ID == suggestion.ID {
			return append([]domain.ProductSuggestion{}, s.saved...), nil
		}
	}

	next := append(append([]domain.ProductSuggestion{}, s.saved...), suggestion)
	if err := s.writeSaved(ctx, next); err != nil {
		return nil, err
	}
	s.saved = next
	return append([]domain.ProductSuggestion{}, next...), nil
}

// Remove drops every saved suggestion with the given id
func (s *PreferencesService) Remove(ctx context.Context, id string) ([]domain.ProductSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.ProductSuggestion, 0, len(s.saved))
	for _, item := range s.saved {
		if item.ID != id {
			next = append(next, item)
		}
	}

	if err := s.writeSaved(ctx, next); err != nil {
		return nil, err
	}
	s.saved = next
	return append([]domain.ProductSuggestion{}, next...), nil
}

// Theme returns the current theme
func (s *PreferencesService) Theme() domain.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme stores the given theme
func (s *PreferencesService) SetTheme(ctx context.Context, theme domain.Theme) (domain.Theme, error) {
	if !theme.Valid() {
		return "", domain.NewValidationError("Theme must be 'dark' or 'light'.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeTheme(ctx, theme)
}

// ToggleTheme switches between dark and light
func (s *PreferencesService) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.ThemeLight
	if s.theme == domain.ThemeLight {
		next = domain.ThemeDark
	}
	return s.writeTheme(ctx, next)
}

func (s *PreferencesService) writeSaved(ctx context.Context, saved []domain.ProductSuggestion) error {
	raw, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encoding saved suggestions: %w", err)
	}
	if err := s.store.Set(ctx, SavedSuggestionsKey, raw); err != nil {
		return fmt.Errorf("storing saved suggestions: %w", err)
	}
	return nil
}

func (s *PreferencesService) writeTheme(ctx context.Context, theme domain.Theme) (domain.Theme, error) {
	if err := s.store.Set(ctx, ThemeKey, []byte(theme)); err != nil {
		return "", fmt.Errorf("storing theme: %w", err)
	}
	s.theme = theme
	return theme, nil
}
