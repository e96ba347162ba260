// Package project manages the catalogue of focus projects: seeding, listing
// with filters, proposals, approval, and favorites.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/settings"
	"github.com/pabu-app/focusd/internal/storage"
)

var (
	// ErrMissingFields is returned when a proposal lacks a title or
	// description.
	ErrMissingFields = errors.New("project proposal requires title, short description and long description")
	// ErrPinRejected is returned when a guardian-gated operation is attempted
	// with a wrong PIN.
	ErrPinRejected = errors.New("pin rejected")
	// ErrNotFound is returned for operations on unknown project IDs.
	ErrNotFound = errors.New("project not found")
)

// Filter selects which slice of the catalogue List returns.
type Filter string

const (
	FilterApproved   Filter = "approved"
	FilterUnapproved Filter = "unapproved"
	FilterStarred    Filter = "starred"
)

// ImageFinder resolves a representative image URL for a project. Never fails;
// implementations fall back to stock imagery.
type ImageFinder interface {
	FindProjectImage(ctx context.Context, title, description string) string
}

// Service owns the project catalogue.
type Service struct {
	store    storage.ProjectStore
	settings *settings.Service
	images   ImageFinder
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService creates a project service. images may be nil; proposals then get
// no image.
func NewService(store storage.ProjectStore, settingsSvc *settings.Service, images ImageFinder, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		settings: settingsSvc,
		images:   images,
		now:      time.Now,
		logger:   logger.With().Str("component", "projects").Logger(),
	}
}

// EnsureSeed populates the catalogue with the starter projects when nothing
// has been stored yet.
func (s *Service) EnsureSeed(ctx context.Context) error {
	_, err := s.store.List(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("checking project catalogue: %w", err)
	}

	seed := seedProjects()
	if err := s.store.Replace(ctx, seed); err != nil {
		return fmt.Errorf("seeding project catalogue: %w", err)
	}
	s.logger.Info().Int("count", len(seed)).Msg("Seeded project catalogue")
	return nil
}

// List returns projects matching the filter. A non-empty search query
// overrides the filter and matches title and descriptions case-insensitively.
func (s *Service) List(ctx context.Context, filter Filter, search string) ([]storage.Project, error) {
	projects, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		var matched []storage.Project
		for _, p := range projects {
			if strings.Contains(strings.ToLower(p.Title), q) ||
				strings.Contains(strings.ToLower(p.ShortDescription), q) ||
				strings.Contains(strings.ToLower(p.LongDescription), q) {
				matched = append(matched, p)
			}
		}
		return matched, nil
	}

	var filtered []storage.Project
	for _, p := range projects {
		switch filter {
		case FilterUnapproved:
			if !p.IsApproved {
				filtered = append(filtered, p)
			}
		case FilterStarred:
			if p.IsFavorite && p.IsApproved {
				filtered = append(filtered, p)
			}
		default:
			if p.IsApproved {
				filtered = append(filtered, p)
			}
		}
	}
	return filtered, nil
}

// Get returns a single project by ID.
func (s *Service) Get(ctx context.Context, id string) (storage.Project, error) {
	projects, err := s.load(ctx)
	if err != nil {
		return storage.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return storage.Project{}, ErrNotFound
}

// ProposalInput is what a child submits when proposing a new project.
type ProposalInput struct {
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	LongDescription  string `json:"longDescription"`
}

// Propose adds a new project to the catalogue. Unless approved is set, it
// lands in the unapproved queue awaiting guardian review. An image is looked
// up best-effort; a failed search still creates the project.
func (s *Service) Propose(ctx context.Context, input ProposalInput, approved bool) (storage.Project, error) {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.ShortDescription) == "" ||
		strings.TrimSpace(input.LongDescription) == "" {
		return storage.Project{}, ErrMissingFields
	}

	p := storage.Project{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(input.Title),
		ShortDescription: strings.TrimSpace(input.ShortDescription),
		LongDescription:  strings.TrimSpace(input.LongDescription),
		IsFavorite:       false,
		IsApproved:       approved,
		CreatedAt:        s.now(),
	}
	if s.images != nil {
		p.Image = s.images.FindProjectImage(ctx, p.Title, p.ShortDescription)
	}

	projects, err := s.load(ctx)
	if err != nil {
		return storage.Project{}, err
	}
	projects = append(projects, p)
	if err := s.store.Replace(ctx, projects); err != nil {
		return storage.Project{}, fmt.Errorf("saving project proposal: %w", err)
	}

	s.logger.Info().Str("project_id", p.ID).Str("title", p.Title).Bool("approved", approved).Msg("Project proposed")
	return p, nil
}

// Approve marks an unapproved project as approved. Guardian-gated.
func (s *Service) Approve(ctx context.Context, id, pin string) (storage.Project, error) {
	if !s.settings.VerifyPin(ctx, pin) {
		return storage.Project{}, ErrPinRejected
	}
	return s.update(ctx, id, func(p *storage.Project) {
		p.IsApproved = true
	})
}

// Delete removes a project from the catalogue. Guardian-gated.
func (s *Service) Delete(ctx context.Context, id, pin string) error {
	if !s.settings.VerifyPin(ctx, pin) {
		return ErrPinRejected
	}

	projects, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := projects[:0]
	found := false
	for _, p := range projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrNotFound
	}
	if err := s.store.Replace(ctx, kept); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	s.logger.Info().Str("project_id", id).Msg("Project deleted")
	return nil
}

// ToggleFavorite flips the starred flag on a project.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (storage.Project, error) {
	return s.update(ctx, id, func(p *storage.Project) {
		p.IsFavorite = !p.IsFavorite
	})
}

func (s *Service) update(ctx context.Context, id string, mutate func(*storage.Project)) (storage.Project, error) {
	projects, err := s.load(ctx)
	if err != nil {
		return storage.Project{}, err
	}
	for i := range projects {
		if projects[i].ID != id {
			continue
		}
		mutate(&projects[i])
		if err := s.store.Replace(ctx, projects); err != nil {
			return storage.Project{}, fmt.Errorf("saving project update: %w", err)
		}
		return projects[i], nil
	}
	return storage.Project{}, ErrNotFound
}

func (s *Service) load(ctx context.Context) ([]storage.Project, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	return projects, nil
}
