package store

import (
	"testing"
	"time"
)

func TestGoalRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	deadline := time.Now().Add(30 * 24 * time.Hour)
	goal := &Goal{
		ID:              "goal-1",
		Channel:         "wrist_palmar_flexion",
		TargetDegrees:   70,
		BaselineDegrees: 35.5,
		Deadline:        &deadline,
		Enabled:         true,
	}

	if err := repo.Create(goal); err != nil {
		t.Fatalf("failed to create goal: %v", err)
	}

	if goal.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	retrieved, err := repo.GetByID("goal-1")
	if err != nil {
		t.Fatalf("failed to get goal by ID: %v", err)
	}

	if retrieved.Channel != "wrist_palmar_flexion" {
		t.Errorf("Channel mismatch: got %q", retrieved.Channel)
	}
	if retrieved.TargetDegrees != 70 {
		t.Errorf("TargetDegrees mismatch: got %v", retrieved.TargetDegrees)
	}
	if retrieved.BaselineDegrees != 35.5 {
		t.Errorf("BaselineDegrees mismatch: got %v", retrieved.BaselineDegrees)
	}
	if retrieved.Deadline == nil {
		t.Fatal("Deadline should round-trip")
	}
	if !retrieved.Enabled {
		t.Error("Enabled should round-trip as true")
	}
}

func TestGoalRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	if _, err := repo.GetByID("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestGoalRepository_DuplicateEnabledChannel(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	first := &Goal{ID: "goal-1", Channel: "thumb_abduction", TargetDegrees: 50, Enabled: true}
	if err := repo.Create(first); err != nil {
		t.Fatalf("failed to create first goal: %v", err)
	}

	// A second enabled goal on the same channel violates the unique index
	second := &Goal{ID: "goal-2", Channel: "thumb_abduction", TargetDegrees: 60, Enabled: true}
	if err := repo.Create(second); err == nil {
		t.Error("expected a second enabled goal on the same channel to fail")
	}

	// A disabled one is fine, it keeps history without competing
	disabled := &Goal{ID: "goal-3", Channel: "thumb_abduction", TargetDegrees: 40, Enabled: false}
	if err := repo.Create(disabled); err != nil {
		t.Errorf("disabled duplicate should be allowed: %v", err)
	}
}

func TestGoalRepository_GetEnabledByChannel(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	goals := []*Goal{
		{ID: "goal-1", Channel: "wrist_dorsal_flexion", TargetDegrees: 60, Enabled: true},
		{ID: "goal-2", Channel: "wrist_dorsal_flexion", TargetDegrees: 45, Enabled: false},
		{ID: "goal-3", Channel: "thumb_flexion", TargetDegrees: 55, Enabled: false},
	}
	for _, g := range goals {
		if err := repo.Create(g); err != nil {
			t.Fatalf("failed to create goal %q: %v", g.ID, err)
		}
	}

	g, err := repo.GetEnabledByChannel("wrist_dorsal_flexion")
	if err != nil {
		t.Fatalf("failed to get enabled goal: %v", err)
	}
	if g == nil || g.ID != "goal-1" {
		t.Errorf("expected goal-1, got %+v", g)
	}

	// Only a disabled goal exists for this channel
	g, err = repo.GetEnabledByChannel("thumb_flexion")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != nil {
		t.Errorf("expected nil for a channel with no enabled goal, got %+v", g)
	}

	// No goal at all
	g, err = repo.GetEnabledByChannel("thumb_adduction")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != nil {
		t.Errorf("expected nil for an unset channel, got %+v", g)
	}
}

func TestGoalRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	goal := &Goal{ID: "goal-1", Channel: "wrist_ulnar_deviation", TargetDegrees: 25, Enabled: true}
	if err := repo.Create(goal); err != nil {
		t.Fatalf("failed to create goal: %v", err)
	}

	goal.TargetDegrees = 30
	goal.Enabled = false
	if err := repo.Update(goal); err != nil {
		t.Fatalf("failed to update goal: %v", err)
	}

	retrieved, err := repo.GetByID("goal-1")
	if err != nil {
		t.Fatalf("failed to get goal after update: %v", err)
	}
	if retrieved.TargetDegrees != 30 {
		t.Errorf("TargetDegrees not updated: got %v", retrieved.TargetDegrees)
	}
	if retrieved.Enabled {
		t.Error("Enabled not updated")
	}
	if retrieved.Deadline != nil {
		t.Errorf("Deadline should stay nil, got %v", retrieved.Deadline)
	}
}

func TestGoalRepository_Update_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	goal := &Goal{ID: "missing", Channel: "thumb_extension", TargetDegrees: 10}
	if err := repo.Update(goal); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for non-existent goal, got: %v", err)
	}
}

func TestGoalRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	goals := []*Goal{
		{ID: "goal-1", Channel: "wrist_palmar_flexion", TargetDegrees: 70, Enabled: true},
		{ID: "goal-2", Channel: "thumb_abduction", TargetDegrees: 50, Enabled: true},
	}
	for _, g := range goals {
		if err := repo.Create(g); err != nil {
			t.Fatalf("failed to create goal %q: %v", g.ID, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list goals: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 goals, got %d", len(list))
	}
}

func TestGoalRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Goals()

	goal := &Goal{ID: "goal-1", Channel: "thumb_adduction", TargetDegrees: 15, Enabled: true}
	if err := repo.Create(goal); err != nil {
		t.Fatalf("failed to create goal: %v", err)
	}

	if err := repo.Delete("goal-1"); err != nil {
		t.Fatalf("failed to delete goal: %v", err)
	}

	if _, err := repo.GetByID("goal-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}

	if err := repo.Delete("goal-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for a second delete, got: %v", err)
	}
}
