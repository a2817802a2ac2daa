// ABOUTME: UserProfile and HealthMetrics represent the user's identity, goals and biometrics
// ABOUTME: Metrics are stored as text to tolerate heterogeneous importer formats
package models

// UserProfile represents the user's self-reported context and imported biometrics
type UserProfile struct {
	Age           string         `json:"age" yaml:"age"`
	Gender        string         `json:"gender" yaml:"gender"`
	Ethnicity     string         `json:"ethnicity" yaml:"ethnicity"`
	Height        string         `json:"height" yaml:"height"`
	Weight        string         `json:"weight" yaml:"weight"`
	Lifestyle     string         `json:"lifestyle" yaml:"lifestyle"`
	Goals         string         `json:"goals" yaml:"goals"`
	HealthMetrics *HealthMetrics `json:"healthMetrics,omitempty" yaml:"healthMetrics,omitempty"`
}

// HealthMetrics is a flat bag of measurements. Every value is free text.
type HealthMetrics struct {
	// Activity
	DailySteps     string `json:"dailySteps" yaml:"dailySteps"`
	ActiveCalories string `json:"activeCalories" yaml:"activeCalories"`
	VO2Max         string `json:"vo2Max" yaml:"vo2Max"`
	FlightsClimbed string `json:"flightsClimbed" yaml:"flightsClimbed"`

	// Vitals
	AvgHeartRate     string `json:"avgHeartRate" yaml:"avgHeartRate"`
	RestingHeartRate string `json:"restingHeartRate" yaml:"restingHeartRate"`
	HRV              string `json:"hrv" yaml:"hrv"`
	BloodOxygen      string `json:"bloodOxygen" yaml:"bloodOxygen"`
	RespiratoryRate  string `json:"respiratoryRate" yaml:"respiratoryRate"`

	// Sleep
	TotalSleepMinutes string `json:"totalSleepMinutes" yaml:"totalSleepMinutes"`
	DeepSleepMinutes  string `json:"deepSleepMinutes" yaml:"deepSleepMinutes"`
	RemSleepMinutes   string `json:"remSleepMinutes" yaml:"remSleepMinutes"`
	SleepEfficiency   string `json:"sleepEfficiency" yaml:"sleepEfficiency"`

	// Body & metabolic
	WeightKg          string `json:"weightKg" yaml:"weightKg"`
	BodyFatPercentage string `json:"bodyFatPercentage" yaml:"bodyFatPercentage"`
	BloodGlucoseMgDl  string `json:"bloodGlucoseMgDl" yaml:"bloodGlucoseMgDl"`
	InsulinMicroIU    string `json:"insulinMicroIU" yaml:"insulinMicroIU"`

	// Lifestyle
	MindfulMinutes string `json:"mindfulMinutes" yaml:"mindfulMinutes"`
	CaffeineMg     string `json:"caffeineMg" yaml:"caffeineMg"`

	LastSynced  string `json:"lastSynced" yaml:"lastSynced"`
	IsConnected bool   `json:"isConnected" yaml:"isConnected"`
}

// Clone returns a deep copy of the profile
func (up UserProfile) Clone() UserProfile {
	if up.HealthMetrics != nil {
		m := *up.HealthMetrics
		up.HealthMetrics = &m
	}
	return up
}

// textFields lists every text metric by pointer so Merge can walk them uniformly.
func (m *HealthMetrics) textFields() []*string {
	return []*string{
		&m.DailySteps, &m.ActiveCalories, &m.VO2Max, &m.FlightsClimbed,
		&m.AvgHeartRate, &m.RestingHeartRate, &m.HRV, &m.BloodOxygen, &m.RespiratoryRate,
		&m.TotalSleepMinutes, &m.DeepSleepMinutes, &m.RemSleepMinutes, &m.SleepEfficiency,
		&m.WeightKg, &m.BodyFatPercentage, &m.BloodGlucoseMgDl, &m.InsulinMicroIU,
		&m.MindfulMinutes, &m.CaffeineMg,
		&m.LastSynced,
	}
}

// Merge copies every non-empty text field of update into m. Empty fields in update
// keep m's previous value. IsConnected is only ever raised, never lowered, by a merge.
func (m *HealthMetrics) Merge(update HealthMetrics) {
	dst := m.textFields()
	src := update.textFields()
	for i := range dst {
		if *src[i] != "" {
			*dst[i] = *src[i]
		}
	}
	if update.IsConnected {
		m.IsConnected = true
	}
}

// WithMetrics returns a copy of the profile whose metrics have update merged in.
// A profile without metrics starts from the default metric set.
func (up UserProfile) WithMetrics(update HealthMetrics) UserProfile {
	out := up.Clone()
	if out.HealthMetrics == nil {
		base := DefaultMetrics()
		out.HealthMetrics = &base
	}
	out.HealthMetrics.Merge(update)
	return out
}

// Connected reports whether imported metrics are available
func (up UserProfile) Connected() bool {
	return up.HealthMetrics != nil && up.HealthMetrics.IsConnected
}
