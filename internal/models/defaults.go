// ABOUTME: First-run defaults for the profile and the weekly plan
// ABOUTME: Used when durable storage is empty or cannot be decoded
package models

// DefaultMetrics returns the baseline metric set used before any import
func DefaultMetrics() HealthMetrics {
	return HealthMetrics{
		DailySteps:        "12000",
		ActiveCalories:    "550",
		VO2Max:            "46",
		FlightsClimbed:    "15",
		AvgHeartRate:      "60",
		RestingHeartRate:  "52",
		HRV:               "78",
		BloodOxygen:       "99",
		RespiratoryRate:   "13",
		TotalSleepMinutes: "480",
		DeepSleepMinutes:  "125",
		RemSleepMinutes:   "110",
		SleepEfficiency:   "95",
		WeightKg:          "78",
		BodyFatPercentage: "14.5",
		BloodGlucoseMgDl:  "82",
		InsulinMicroIU:    "3.5",
		MindfulMinutes:    "15",
		CaffeineMg:        "100",
		LastSynced:        "Just Now",
		IsConnected:       true,
	}
}

// DefaultProfile returns the profile shown on first run
func DefaultProfile() UserProfile {
	m := DefaultMetrics()
	return UserProfile{
		Age:           "38",
		Gender:        "Male",
		Ethnicity:     "Not Specified",
		Height:        "182cm",
		Weight:        "78kg",
		Lifestyle:     "Moderately Active",
		Goals:         "Reverse biological age by 5 years, reach peak VO2 Max, optimize mitochondrial energy.",
		HealthMetrics: &m,
	}
}

// InitialPlan returns the starter week shown on first run
func InitialPlan() LongevityPlan {
	return LongevityPlan{Week: []DailyPlan{
		{Day: "Monday", Items: []PlanItem{
			{ID: "1", Time: "06:00", Activity: "Waking & Hydration", Type: Biohack, Description: "500ml water with electrolytes and lemon."},
			{ID: "2", Time: "06:15", Activity: "Cold Plunge", Type: Biohack, Description: "2 mins @ 10°C. Activates brown fat and boosts dopamine."},
			{ID: "3", Time: "06:30", Activity: "Morning Longevity Stack", Type: Supplement, Description: "1g NMN, 500mg Resveratrol, D3+K2, High-EPA Omega-3."},
			{ID: "4", Time: "07:00", Activity: "Zone 2 Cardio", Type: Exercise, Description: "45 mins brisk incline walk. Target heart rate: 65-75% of max."},
			{ID: "5", Time: "12:00", Activity: "Blueprint Meal: Nutty Pudding", Type: Meal, Description: "Macadamia nuts, walnuts, flaxseeds, berries, pomegranate juice, and pea protein."},
			{ID: "6", Time: "18:00", Activity: "Last Meal: Super Veggie", Type: Meal, Description: "Lentils, broccoli, cauliflower, ginger, garlic, and wild salmon."},
			{ID: "7", Time: "21:00", Activity: "Evening Protocol", Type: Sleep, Description: "Magnesium Threonate + 5m Box Breathing. No screens."},
		}},
		{Day: "Tuesday", Items: []PlanItem{
			{ID: "t1", Time: "07:00", Activity: "Strength Training", Type: Exercise, Description: "Compound lifts (Squats, Deadlifts). Focus on slow eccentric control."},
			{ID: "t2", Time: "17:00", Activity: "Sauna Session", Type: Biohack, Description: "20 mins dry heat. Mimics cardio stress and repairs proteins."},
		}},
		{Day: "Wednesday", Items: []PlanItem{}},
		{Day: "Thursday", Items: []PlanItem{}},
		{Day: "Friday", Items: []PlanItem{}},
		{Day: "Saturday", Items: []PlanItem{}},
		{Day: "Sunday", Items: []PlanItem{}},
	}}
}
