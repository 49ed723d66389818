package adapter_test

import (
	"testing"

	"jobpulse/trends-service/internal/adapter"
)

// ── IsDevRole ──────────────────────────────────────────────────────────────

func TestIsDevRole_AcceptsSoftwareTitles(t *testing.T) {
	titles := []string{
		"Software Engineer",
		"Senior Backend Developer",
		"Full-Stack Engineer",
		"DevOps Engineer",
		"Golang Developer",
		"React Native Developer",
		"iOS Engineer (Swift)",
		"Site Reliability Engineer (SRE)",
		"Staff Data Engineer",
	}
	for _, title := range titles {
		if !adapter.IsDevRole(title) {
			t.Errorf("IsDevRole(%q) = false, want true", title)
		}
	}
}

func TestIsDevRole_RejectsNonSoftwareTitles(t *testing.T) {
	titles := []string{
		"",
		"Account Manager",
		"Mechanical Engineer",
		"Electrical Engineer",
		"Civil Engineer",
		"HVAC Technician",
		"Registered Nurse",
		"Sales Development Representative",
	}
	for _, title := range titles {
		if adapter.IsDevRole(title) {
			t.Errorf("IsDevRole(%q) = true, want false", title)
		}
	}
}

func TestIsDevRole_RoleWordAloneIsNotEnough(t *testing.T) {
	// "Engineer" without a software signal or language stays out.
	if adapter.IsDevRole("Process Engineer") {
		t.Error("IsDevRole(\"Process Engineer\") = true, want false")
	}
}

func TestIsDevRole_SoftwareSignalOverridesExclusion(t *testing.T) {
	// Hardware-ish words are vetoed only without a software signal.
	if !adapter.IsDevRole("Embedded Software Engineer - Automotive") {
		t.Error("software signal should override the automotive exclusion")
	}
}
