// ABOUTME: Tests for the profile and plan store
// ABOUTME: Covers fail-open loading, toggles, absolute sets, day replacement and persistence

package storage

import (
	"errors"
	"reflect"
	"testing"

	"github.com/harper/olympus/internal/models"
	"github.com/harper/olympus/internal/storage/sqlite"
)

// failingBackend returns errors for every operation
type failingBackend struct{}

func (failingBackend) Get(string) ([]byte, error) { return nil, errors.New("boom") }
func (failingBackend) Set(string, []byte) error { return errors.New("boom") }
func (failingBackend) Close() error { return nil }

func TestNew_DefaultsOnFirstRun(t *testing.T) {
	store := New(NewMemoryBackend())

	profile, plan := store.Get()
	if !reflect.DeepEqual(profile, models.DefaultProfile()) {
		t.Errorf("profile = %+v, want defaults", profile)
	}
	if !reflect.DeepEqual(plan, models.InitialPlan().Clone()) {
		t.Errorf("plan = %+v, want initial plan", plan)
	}
}

func TestNew_CorruptRecordsFallBack(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		plan    string
	}{
		{"not json", "{not json", `{"week": 7}`},
		{"null records", "null", "null"},
		{"empty week", "{}", `{"week":[]}`},
		{"six days", "{}", `{"week":[{"day":"Sunday","items":[]},{"day":"Monday","items":[]},{"day":"Tuesday","items":[]},{"day":"Wednesday","items":[]},{"day":"Thursday","items":[]},{"day":"Friday","items":[]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			_ = backend.Set(ProfileKey, []byte(tt.profile))
			_ = backend.Set(PlanKey, []byte(tt.plan))

			store := New(backend)

			profile, plan := store.Get()
			if profile.Age != models.DefaultProfile().Age {
				t.Errorf("Age = %q, want default", profile.Age)
			}
			if err := plan.Validate(); err != nil {
				t.Errorf("loaded plan is invalid: %v", err)
			}
			if !store.ToggleItemCompletion("Monday", "4") {
				t.Error("default plan should be usable after fallback")
			}
		})
	}
}

func TestNew_BackendErrorsFallBack(t *testing.T) {
	store := New(failingBackend{})

	_, plan := store.Get()
	if len(plan.Week) != 7 {
		t.Errorf("len(Week) = %d, want 7", len(plan.Week))
	}
}

func TestToggleItemCompletion_FlipsOnlyTarget(t *testing.T) {
	store := New(NewMemoryBackend())
	_, before := store.Get()

	if !store.ToggleItemCompletion("Monday", "4") {
		t.Fatal("ToggleItemCompletion(Monday, 4) = false, want true")
	}

	_, after := store.Get()
	for di, day := range after.Week {
		for ii, item := range day.Items {
			want := before.Week[di].Items[ii]
			if day.Day == "Monday" && item.ID == "4" {
				want.Completed = !want.Completed
			}
			if item != want {
				t.Errorf("%s/%s = %+v, want %+v", day.Day, item.ID, item, want)
			}
		}
	}

	store.ToggleItemCompletion("Monday", "4")
	_, again := store.Get()
	if !reflect.DeepEqual(again, before) {
		t.Error("double toggle should restore the original plan")
	}
}

func TestToggleItemCompletion_MissIsNoop(t *testing.T) {
	tests := []struct {
		name string
		day  string
		id   string
	}{
		{"unknown day", "Funday", "1"},
		{"unknown id", "Monday", "999"},
		{"id from another day", "Tuesday", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			store := New(backend)
			_, before := store.Get()

			notified := false
			store.Subscribe(func(Snapshot) { notified = true })

			if store.ToggleItemCompletion(tt.day, tt.id) {
				t.Error("ToggleItemCompletion() = true, want false")
			}

			_, after := store.Get()
			if !reflect.DeepEqual(after, before) {
				t.Error("plan changed on a lookup miss")
			}
			if notified {
				t.Error("subscribers notified on a lookup miss")
			}
			if data, _ := backend.Get(PlanKey); data != nil {
				t.Error("a lookup miss should not persist")
			}
		})
	}
}

func TestSetItemCompletion_Absolute(t *testing.T) {
	store := New(NewMemoryBackend())

	for i := 0; i < 2; i++ {
		if !store.SetItemCompletion("Tuesday", "t1", true) {
			t.Fatal("SetItemCompletion() = false, want true")
		}
		_, plan := store.Get()
		it, _ := plan.Item("Tuesday", "t1")
		if !it.Completed {
			t.Errorf("pass %d: Completed = false, want true", i)
		}
	}

	store.SetItemCompletion("Tuesday", "t1", false)
	_, plan := store.Get()
	if it, _ := plan.Item("Tuesday", "t1"); it.Completed {
		t.Error("Completed = true after setting false")
	}
}

func TestReplaceDayItems(t *testing.T) {
	store := New(NewMemoryBackend())
	_, before := store.Get()

	updates := []models.PlanItem{
		{ID: "w1", Time: "08:00", Activity: "Sauna", Type: models.Biohack, Description: "20m"},
	}
	if !store.ReplaceDayItems("Wednesday", updates) {
		t.Fatal("ReplaceDayItems() = false, want true")
	}

	_, after := store.Get()
	wed, _ := after.Day("Wednesday")
	if !reflect.DeepEqual(wed.Items, updates) {
		t.Errorf("Wednesday items = %+v, want %+v", wed.Items, updates)
	}
	for i, d := range after.Week {
		if d.Day == "Wednesday" {
			continue
		}
		if !reflect.DeepEqual(d, before.Week[i]) {
			t.Errorf("%s changed: %+v", d.Day, d)
		}
	}

	if store.ReplaceDayItems("Funday", updates) {
		t.Error("ReplaceDayItems on unknown day should report false")
	}
}

func TestMergeMetrics(t *testing.T) {
	store := New(NewMemoryBackend())

	if err := store.MergeMetrics(models.HealthMetrics{DailySteps: "3000", IsConnected: true}); err != nil {
		t.Fatalf("MergeMetrics() error = %v", err)
	}

	profile, _ := store.Get()
	if profile.HealthMetrics.DailySteps != "3000" {
		t.Errorf("DailySteps = %q, want 3000", profile.HealthMetrics.DailySteps)
	}
	if profile.HealthMetrics.HRV != models.DefaultMetrics().HRV {
		t.Errorf("HRV = %q, want default", profile.HealthMetrics.HRV)
	}
	if profile.Goals != models.DefaultProfile().Goals {
		t.Error("MergeMetrics changed a non-metric field")
	}
}

func TestPersistReloadRoundTrip(t *testing.T) {
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := New(db)
	profile := models.DefaultProfile()
	profile.Age = "41"
	profile.HealthMetrics.VO2Max = "52"
	if err := store.SetProfile(profile); err != nil {
		t.Fatalf("SetProfile() error = %v", err)
	}
	store.ToggleItemCompletion("Monday", "2")

	wantProfile, wantPlan := store.Get()

	reloaded := New(db)
	gotProfile, gotPlan := reloaded.Get()
	if !reflect.DeepEqual(gotProfile, wantProfile) {
		t.Errorf("profile after reload = %+v, want %+v", gotProfile, wantProfile)
	}
	if !reflect.DeepEqual(gotPlan, wantPlan) {
		t.Errorf("plan after reload = %+v, want %+v", gotPlan, wantPlan)
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	store := New(failingBackend{})

	err := store.SetProfile(models.UserProfile{Age: "99"})
	if err == nil {
		t.Error("SetProfile() should report the persist failure")
	}
	profile, _ := store.Get()
	if profile.Age != "99" {
		t.Errorf("Age = %q, want 99", profile.Age)
	}
}

func TestSubscribe(t *testing.T) {
	store := New(NewMemoryBackend())

	var got []Snapshot
	cancel := store.Subscribe(func(s Snapshot) { got = append(got, s) })

	store.ToggleItemCompletion("Monday", "1")
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	if it, _ := got[0].Plan.Item("Monday", "1"); !it.Completed {
		t.Error("snapshot should reflect the mutation")
	}

	cancel()
	store.ToggleItemCompletion("Monday", "1")
	if len(got) != 1 {
		t.Errorf("got %d notifications after cancel, want 1", len(got))
	}
}

func TestGetReturnsCopies(t *testing.T) {
	store := New(NewMemoryBackend())

	profile, plan := store.Get()
	plan.Week[0].Items[0].Completed = true
	profile.HealthMetrics.HRV = "1"

	profile2, plan2 := store.Get()
	if plan2.Week[0].Items[0].Completed {
		t.Error("mutating a returned plan leaked into the store")
	}
	if profile2.HealthMetrics.HRV == "1" {
		t.Error("mutating a returned profile leaked into the store")
	}
}
