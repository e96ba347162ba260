package project

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/settings"
	"github.com/pabu-app/focusd/internal/storage/bolt"
)

type stubImages struct {
	url   string
	calls int
}

func (s *stubImages) FindProjectImage(ctx context.Context, title, description string) string {
	s.calls++
	return s.url
}

func newTestService(t *testing.T) (*Service, *stubImages) {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "focusd.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := zerolog.Nop()
	settingsSvc := settings.NewService(store.Settings(), logger)
	images := &stubImages{url: "https://img.example/found.jpg"}
	svc := NewService(store.Projects(), settingsSvc, images, logger)

	if err := svc.EnsureSeed(context.Background()); err != nil {
		t.Fatalf("EnsureSeed: %v", err)
	}
	return svc, images
}

func TestEnsureSeedIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	before, err := svc.List(context.Background(), FilterApproved, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if err := svc.EnsureSeed(context.Background()); err != nil {
		t.Fatalf("second EnsureSeed: %v", err)
	}

	after, err := svc.List(context.Background(), FilterApproved, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(before) != len(after) {
		t.Errorf("seed ran twice: %d vs %d projects", len(before), len(after))
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	approved, err := svc.List(ctx, FilterApproved, "")
	if err != nil {
		t.Fatalf("List approved: %v", err)
	}
	for _, p := range approved {
		if !p.IsApproved {
			t.Errorf("approved filter returned unapproved project %q", p.Title)
		}
	}

	unapproved, err := svc.List(ctx, FilterUnapproved, "")
	if err != nil {
		t.Fatalf("List unapproved: %v", err)
	}
	if len(unapproved) == 0 {
		t.Fatal("seed should include unapproved projects")
	}
	for _, p := range unapproved {
		if p.IsApproved {
			t.Errorf("unapproved filter returned approved project %q", p.Title)
		}
	}

	starred, err := svc.List(ctx, FilterStarred, "")
	if err != nil {
		t.Fatalf("List starred: %v", err)
	}
	for _, p := range starred {
		if !p.IsFavorite || !p.IsApproved {
			t.Errorf("starred filter returned %+v", p)
		}
	}
}

func TestListSearchOverridesFilter(t *testing.T) {
	svc, _ := newTestService(t)

	// "Ocean Discovery" is unapproved; search must still find it.
	got, err := svc.List(context.Background(), FilterApproved, "ocean")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, p := range got {
		if p.Title == "Ocean Discovery" {
			found = true
		}
	}
	if !found {
		t.Errorf("search did not reach unapproved projects: %+v", got)
	}
}

func TestProposeValidatesFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Propose(context.Background(), ProposalInput{Title: "Only a title"}, false)
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
}

func TestProposeCreatesUnapprovedProject(t *testing.T) {
	svc, images := newTestService(t)
	ctx := context.Background()

	p, err := svc.Propose(ctx, ProposalInput{
		Title:            "Volcano Lab",
		ShortDescription: "Erupting experiments",
		LongDescription:  "Build and understand baking soda volcanoes.",
	}, false)
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}

	if p.ID == "" {
		t.Error("expected generated ID")
	}
	if p.IsApproved {
		t.Error("proposal should start unapproved")
	}
	if p.Image != "https://img.example/found.jpg" {
		t.Errorf("image = %q", p.Image)
	}
	if images.calls != 1 {
		t.Errorf("image lookups = %d, want 1", images.calls)
	}

	unapproved, err := svc.List(ctx, FilterUnapproved, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, q := range unapproved {
		if q.ID == p.ID {
			found = true
		}
	}
	if !found {
		t.Error("proposal not in unapproved queue")
	}
}

func TestApproveRequiresPin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Approve(ctx, "3", "0000"); !errors.Is(err, ErrPinRejected) {
		t.Fatalf("err = %v, want ErrPinRejected", err)
	}

	// Default PIN.
	p, err := svc.Approve(ctx, "3", "1234")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !p.IsApproved {
		t.Error("project not approved")
	}

	got, err := svc.Get(ctx, "3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsApproved {
		t.Error("approval not persisted")
	}
}

func TestApproveUnknownProject(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Approve(context.Background(), "nope", "1234"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRequiresPin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Delete(ctx, "2", "9999"); !errors.Is(err, ErrPinRejected) {
		t.Fatalf("err = %v, want ErrPinRejected", err)
	}

	if err := svc.Delete(ctx, "2", "1234"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected project gone, got %v", err)
	}

	if err := svc.Delete(ctx, "2", "1234"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestToggleFavorite(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.ToggleFavorite(ctx, "2")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !p.IsFavorite {
		t.Error("expected favorite set")
	}

	p, err = svc.ToggleFavorite(ctx, "2")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if p.IsFavorite {
		t.Error("expected favorite cleared")
	}
}
