// ABOUTME: Vault export/restore bundles the profile and plan into one backup document
// ABOUTME: Supports JSON and YAML; restore is all-or-nothing
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/olympus/internal/models"
)

// VaultVersion is written into every exported vault
const VaultVersion = "2.1.0"

// ErrIncompleteVault is returned when a vault lacks the profile or the plan
var ErrIncompleteVault = errors.New("vault must contain both profile and plan")

// Vault is the exportable backup document
type Vault struct {
	AppName    string     `yaml:"appName" json:"appName"`
	Version    string     `yaml:"version" json:"version"`
	ExportedAt string     `yaml:"exportedAt" json:"exportedAt"`
	State      VaultState `yaml:"state" json:"state"`
}

// VaultState holds the two persisted entities
type VaultState struct {
	Profile *models.UserProfile   `yaml:"profile,omitempty" json:"profile,omitempty"`
	Plan    *models.LongevityPlan `yaml:"plan,omitempty" json:"plan,omitempty"`
}

// vaultDocument accepts both the manifest shape and a bare {profile, plan} document
type vaultDocument struct {
	State   *VaultState           `yaml:"state" json:"state"`
	Profile *models.UserProfile   `yaml:"profile" json:"profile"`
	Plan    *models.LongevityPlan `yaml:"plan" json:"plan"`
}

// ExportVault captures the current state as a vault
func (s *Store) ExportVault() Vault {
	profile, plan := s.Get()
	return Vault{
		AppName:    "Olympus",
		Version:    VaultVersion,
		ExportedAt: time.Now().Format(time.RFC3339),
		State:      VaultState{Profile: &profile, Plan: &plan},
	}
}

// EncodeVault serializes a vault as indented JSON, or YAML when asYAML is set
func EncodeVault(v Vault, asYAML bool) ([]byte, error) {
	if asYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal vault yaml: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vault json: %w", err)
	}
	return data, nil
}

// DecodeVault parses a JSON or YAML vault and returns its profile and plan. Both must be
// present and the plan must have its seven weekdays, otherwise nothing is returned.
func DecodeVault(data []byte) (models.UserProfile, models.LongevityPlan, error) {
	var doc vaultDocument
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return models.UserProfile{}, models.LongevityPlan{}, fmt.Errorf("failed to parse vault file: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return models.UserProfile{}, models.LongevityPlan{}, fmt.Errorf("failed to parse vault file: %w", err)
	}

	profile, plan := doc.Profile, doc.Plan
	if doc.State != nil && doc.State.Profile != nil && doc.State.Plan != nil {
		profile, plan = doc.State.Profile, doc.State.Plan
	}
	if profile == nil || plan == nil {
		return models.UserProfile{}, models.LongevityPlan{}, ErrIncompleteVault
	}
	if err := plan.Validate(); err != nil {
		return models.UserProfile{}, models.LongevityPlan{}, fmt.Errorf("vault plan is invalid: %w", err)
	}
	return *profile, *plan, nil
}

// RestoreVault decodes data and, only if it is complete, replaces both entities at once.
// On any error the store is left unchanged.
func (s *Store) RestoreVault(data []byte) error {
	profile, plan, err := DecodeVault(data)
	if err != nil {
		return err
	}
	return s.Restore(profile, plan)
}
