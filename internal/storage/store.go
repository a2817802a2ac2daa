// ABOUTME: Profile & Plan store: single source of truth for the profile and weekly plan
// ABOUTME: Every mutation updates memory, persists both records and notifies subscribers
package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/models"
)

// Snapshot is a read-only copy of the store state
type Snapshot struct {
	Profile models.UserProfile
	Plan    models.LongevityPlan
}

// Store owns the profile and plan. It is safe for concurrent use; mutations are
// serialized so writers from the CLI, the realtime coach and the MCP server never race.
type Store struct {
	backend Backend

	mu      sync.Mutex
	profile models.UserProfile
	plan    models.LongevityPlan

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// New creates a store and restores state from the backend. Missing, undecodable or
// structurally invalid records fall back to the built-in defaults; startup never fails.
func New(backend Backend) *Store {
	s := &Store{
		backend:     backend,
		profile:     models.DefaultProfile(),
		plan:        models.InitialPlan(),
		subscribers: make(map[int]func(Snapshot)),
	}

	var profile models.UserProfile
	if s.load(ProfileKey, &profile) {
		if profile == (models.UserProfile{}) {
			logging.Warn("stored profile is empty, using defaults", "key", ProfileKey)
		} else {
			s.profile = profile
		}
	}

	var plan models.LongevityPlan
	if s.load(PlanKey, &plan) {
		if err := plan.Validate(); err != nil {
			logging.Warn("stored plan is invalid, using defaults", "key", PlanKey, "err", err)
		} else {
			s.plan = plan
		}
	}

	return s
}

// load decodes key into dest and reports whether a usable record was found
func (s *Store) load(key string, dest interface{}) bool {
	data, err := s.backend.Get(key)
	if err != nil || len(data) == 0 {
		if err != nil {
			logging.Debug("no stored record, using defaults", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logging.Warn("stored record is corrupt, using defaults", "key", key, "err", err)
		return false
	}
	return true
}

// Get returns copies of the current profile and plan
func (s *Store) Get() (models.UserProfile, models.LongevityPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone(), s.plan.Clone()
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	profile, plan := s.Get()
	return Snapshot{Profile: profile, Plan: plan}
}

// SetProfile replaces the profile wholesale
func (s *Store) SetProfile(profile models.UserProfile) error {
	_, err := s.commit(func(p *models.UserProfile, _ *models.LongevityPlan) bool {
		*p = profile.Clone()
		return true
	})
	return err
}

// SetPlan replaces the plan wholesale
func (s *Store) SetPlan(plan models.LongevityPlan) error {
	_, err := s.commit(func(_ *models.UserProfile, pl *models.LongevityPlan) bool {
		*pl = plan.Clone()
		return true
	})
	return err
}

// Restore replaces both entities in a single mutation
func (s *Store) Restore(profile models.UserProfile, plan models.LongevityPlan) error {
	_, err := s.commit(func(p *models.UserProfile, pl *models.LongevityPlan) bool {
		*p = profile.Clone()
		*pl = plan.Clone()
		return true
	})
	return err
}

// MergeMetrics merges a partial metrics update into the current profile
func (s *Store) MergeMetrics(update models.HealthMetrics) error {
	_, err := s.commit(func(p *models.UserProfile, _ *models.LongevityPlan) bool {
		*p = p.WithMetrics(update)
		return true
	})
	return err
}

// ToggleItemCompletion flips the completed flag of one item. Unknown day or id is a no-op
// and reports false.
func (s *Store) ToggleItemCompletion(day, id string) bool {
	found, err := s.commit(func(_ *models.UserProfile, pl *models.LongevityPlan) bool {
		it := findItem(pl, day, id)
		if it == nil {
			return false
		}
		it.Completed = !it.Completed
		return true
	})
	if err != nil {
		logging.Warn("persist after toggle failed", "day", day, "id", id, "err", err)
	}
	return found
}

// SetItemCompletion sets the completed flag of one item to an absolute value.
// Unknown day or id is a no-op and reports false.
func (s *Store) SetItemCompletion(day, id string, completed bool) bool {
	found, err := s.commit(func(_ *models.UserProfile, pl *models.LongevityPlan) bool {
		it := findItem(pl, day, id)
		if it == nil {
			return false
		}
		it.Completed = completed
		return true
	})
	if err != nil {
		logging.Warn("persist after completion update failed", "day", day, "id", id, "err", err)
	}
	return found
}

// ReplaceDayItems replaces the whole item list of one day. Unknown day is a no-op.
func (s *Store) ReplaceDayItems(day string, items []models.PlanItem) bool {
	found, err := s.commit(func(_ *models.UserProfile, pl *models.LongevityPlan) bool {
		for i := range pl.Week {
			if pl.Week[i].Day == day {
				pl.Week[i].Items = append([]models.PlanItem{}, items...)
				return true
			}
		}
		return false
	})
	if err != nil {
		logging.Warn("persist after day replacement failed", "day", day, "err", err)
	}
	return found
}

// Subscribe registers fn to receive a snapshot after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// commit is the one mutation path. mutate works on copies; when it reports a change the
// copies become the new state, both records are persisted and subscribers are notified.
// In-memory state is kept even if persisting fails.
func (s *Store) commit(mutate func(*models.UserProfile, *models.LongevityPlan) bool) (bool, error) {
	s.mu.Lock()
	profile := s.profile.Clone()
	plan := s.plan.Clone()
	if !mutate(&profile, &plan) {
		s.mu.Unlock()
		return false, nil
	}
	s.profile = profile
	s.plan = plan
	err := s.persist()
	snap := Snapshot{Profile: s.profile.Clone(), Plan: s.plan.Clone()}
	s.mu.Unlock()

	s.notify(snap)
	return true, err
}

// persist writes both records. Caller holds s.mu.
func (s *Store) persist() error {
	profileData, err := json.Marshal(s.profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	planData, err := json.Marshal(s.plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := s.backend.Set(ProfileKey, profileData); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	if err := s.backend.Set(PlanKey, planData); err != nil {
		return fmt.Errorf("failed to persist plan: %w", err)
	}
	return nil
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func findItem(plan *models.LongevityPlan, day, id string) *models.PlanItem {
	for i := range plan.Week {
		if plan.Week[i].Day != day {
			continue
		}
		for j := range plan.Week[i].Items {
			if plan.Week[i].Items[j].ID == id {
				return &plan.Week[i].Items[j]
			}
		}
	}
	return nil
}
