// ABOUTME: Tests for UserProfile and HealthMetrics merge behavior
// ABOUTME: Verifies that merges only touch fields the update supplies

package models

import (
	"testing"
)

func TestHealthMetrics_Merge(t *testing.T) {
	tests := []struct {
		name   string
		update HealthMetrics
		check  func(t *testing.T, m HealthMetrics)
	}{
		{
			name:   "single field",
			update: HealthMetrics{VO2Max: "51"},
			check: func(t *testing.T, m HealthMetrics) {
				if m.VO2Max != "51" {
					t.Errorf("VO2Max = %q, want 51", m.VO2Max)
				}
				if m.RestingHeartRate != "52" {
					t.Errorf("RestingHeartRate = %q, want unchanged 52", m.RestingHeartRate)
				}
			},
		},
		{
			name:   "empty update keeps everything",
			update: HealthMetrics{},
			check: func(t *testing.T, m HealthMetrics) {
				if m != DefaultMetrics() {
					t.Errorf("metrics changed on empty update: %+v", m)
				}
			},
		},
		{
			name:   "sync stamp",
			update: HealthMetrics{DailySteps: "9000", LastSynced: "10:00:00", IsConnected: true},
			check: func(t *testing.T, m HealthMetrics) {
				if m.DailySteps != "9000" || m.LastSynced != "10:00:00" || !m.IsConnected {
					t.Errorf("unexpected metrics: %+v", m)
				}
				if m.ActiveCalories != "550" {
					t.Errorf("ActiveCalories = %q, want unchanged 550", m.ActiveCalories)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMetrics()
			m.Merge(tt.update)
			tt.check(t, m)
		})
	}
}

func TestHealthMetrics_MergeNeverDisconnects(t *testing.T) {
	m := DefaultMetrics()
	m.Merge(HealthMetrics{IsConnected: false, HRV: "80"})
	if !m.IsConnected {
		t.Error("merge should not lower IsConnected")
	}
}

func TestUserProfile_WithMetrics(t *testing.T) {
	t.Run("nil metrics start from defaults", func(t *testing.T) {
		p := UserProfile{Age: "40"}
		out := p.WithMetrics(HealthMetrics{HRV: "90"})
		if out.HealthMetrics == nil {
			t.Fatal("HealthMetrics should be created")
		}
		if out.HealthMetrics.HRV != "90" {
			t.Errorf("HRV = %q, want 90", out.HealthMetrics.HRV)
		}
		if out.HealthMetrics.VO2Max != DefaultMetrics().VO2Max {
			t.Errorf("VO2Max = %q, want default", out.HealthMetrics.VO2Max)
		}
		if p.HealthMetrics != nil {
			t.Error("original profile should not be modified")
		}
	})

	t.Run("does not alias the original", func(t *testing.T) {
		p := DefaultProfile()
		out := p.WithMetrics(HealthMetrics{HRV: "10"})
		if p.HealthMetrics.HRV == "10" {
			t.Error("original metrics were mutated")
		}
		if out.HealthMetrics.HRV != "10" {
			t.Errorf("HRV = %q, want 10", out.HealthMetrics.HRV)
		}
	})
}
