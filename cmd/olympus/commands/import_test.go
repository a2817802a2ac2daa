// ABOUTME: Tests for biometric import commands
// ABOUTME: Runs the Apple Health importer end to end and checks Oura token handling

package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/harper/olympus/internal/models"
)

const appleExport = `<?xml version="1.0" encoding="UTF-8"?>
<HealthData locale="en_US">
 <Record type="HKQuantityTypeIdentifierVO2Max" value="48.5"/>
 <Record type="HKQuantityTypeIdentifierRestingHeartRate" value="49"/>
 <Record type="HKQuantityTypeIdentifierStepCount" value="9000"/>
</HealthData>`

func TestImportApple(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "export.xml")
	if err := os.WriteFile(file, []byte(appleExport), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, dir, "import", "apple", file)
	if err != nil {
		t.Fatalf("import apple error = %v", err)
	}
	if !strings.Contains(out, "Biological Archive Integrated.") {
		t.Errorf("unexpected output: %s", out)
	}

	out, _ = runCLI(t, dir, "--format", "json", "profile", "show")
	var profile models.UserProfile
	if err := json.Unmarshal([]byte(out), &profile); err != nil {
		t.Fatalf("profile is not JSON: %v", err)
	}
	m := profile.HealthMetrics
	if m == nil {
		t.Fatal("metrics missing after import")
	}
	if m.VO2Max != "48.5" || m.RestingHeartRate != "49" {
		t.Errorf("imported metrics = vo2 %q rhr %q", m.VO2Max, m.RestingHeartRate)
	}
	if m.HRV != "78" {
		t.Errorf("HRV = %q, existing value should be kept", m.HRV)
	}
}

func TestImportApple_MissingFile(t *testing.T) {
	if _, err := runCLI(t, t.TempDir(), "import", "apple", filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("missing archive should fail")
	}
}

func TestImportOura_NoToken(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv("OURA_BASE_URL", "http://127.0.0.1:1")

	out, err := runCLI(t, t.TempDir(), "import", "oura")
	if err != nil {
		t.Fatalf("import oura error = %v", err)
	}
	if !strings.Contains(out, "Please provide an Oura Personal Access Token.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestImportOura_FailureIsAStatus(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv("OURA_BASE_URL", "http://127.0.0.1:1")

	out, err := runCLI(t, t.TempDir(), "import", "oura", "--token", "tok")
	if err != nil {
		t.Fatalf("import oura error = %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "Error:") {
		t.Errorf("unexpected output: %s", out)
	}
}
