package ranking

import (
	"os"
	"path/filepath"
	"testing"
)

// writeCalibration writes a calibration file into a temp dir and returns its path.
func writeCalibration(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}
	return path
}

// TestLoadCalibration_EmptyPath verifies defaults are returned without error
// when no path is configured.
func TestLoadCalibration_EmptyPath(t *testing.T) {
	weights, err := LoadCalibration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *weights != *DefaultWeights() {
		t.Errorf("expected defaults, got %+v", weights)
	}
}

// TestLoadCalibration_MissingFile verifies defaults plus an error when the
// file cannot be read.
func TestLoadCalibration_MissingFile(t *testing.T) {
	weights, err := LoadCalibration("/nonexistent/calibration.json")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if *weights != *DefaultWeights() {
		t.Errorf("expected defaults on error, got %+v", weights)
	}
}

// TestLoadCalibration_InvalidJSON verifies defaults plus an error for
// malformed JSON.
func TestLoadCalibration_InvalidJSON(t *testing.T) {
	path := writeCalibration(t, "{not json")
	weights, err := LoadCalibration(path)
	if err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
	if *weights != *DefaultWeights() {
		t.Errorf("expected defaults on error, got %+v", weights)
	}
}

// TestLoadCalibration_FullOverride verifies a complete valid calibration is
// applied.
func TestLoadCalibration_FullOverride(t *testing.T) {
	path := writeCalibration(t, `{
		"version": "1",
		"weights": {"location": 0.4, "engagement": 0.4, "profile": 0.2}
	}`)

	weights, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weights.Location != 0.4 || weights.Engagement != 0.4 || weights.Profile != 0.2 {
		t.Errorf("override not applied: %+v", weights)
	}
}

// TestLoadCalibration_RejectsBadSum verifies a calibration whose weights do
// not sum to 1.0 is rejected in favor of defaults.
func TestLoadCalibration_RejectsBadSum(t *testing.T) {
	path := writeCalibration(t, `{
		"version": "1",
		"weights": {"location": 0.9, "engagement": 0.9, "profile": 0.9}
	}`)

	weights, err := LoadCalibration(path)
	if err == nil {
		t.Fatal("expected an error for weights not summing to 1.0")
	}
	if *weights != *DefaultWeights() {
		t.Errorf("expected defaults on invalid calibration, got %+v", weights)
	}
}

// TestMergeCalibration tests partial override merging.
func TestMergeCalibration(t *testing.T) {
	tests := []struct {
		name     string
		base     *Weights
		override *Weights
		expected Weights
	}{
		{
			name:     "nil base falls back to defaults",
			base:     nil,
			override: &Weights{Location: 0.6},
			expected: *DefaultWeights(),
		},
		{
			name:     "nil override copies base",
			base:     &Weights{Location: 0.5, Engagement: 0.3, Profile: 0.2},
			override: nil,
			expected: Weights{Location: 0.5, Engagement: 0.3, Profile: 0.2},
		},
		{
			name:     "partial override keeps untouched fields",
			base:     &Weights{Location: 0.5, Engagement: 0.3, Profile: 0.2},
			override: &Weights{Engagement: 0.35},
			expected: Weights{Location: 0.5, Engagement: 0.35, Profile: 0.2},
		},
		{
			name:     "zero values in override are ignored",
			base:     &Weights{Location: 0.5, Engagement: 0.3, Profile: 0.2},
			override: &Weights{},
			expected: Weights{Location: 0.5, Engagement: 0.3, Profile: 0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MergeCalibration(tt.base, tt.override)
			if *result != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, *result)
			}
		})
	}
}

// TestValidateWeights tests the weight invariant check.
func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"defaults are valid", *DefaultWeights(), false},
		{"even split is valid", Weights{Location: 0.34, Engagement: 0.33, Profile: 0.33}, false},
		{"sum above one", Weights{Location: 0.6, Engagement: 0.3, Profile: 0.2}, true},
		{"sum below one", Weights{Location: 0.4, Engagement: 0.3, Profile: 0.2}, true},
		{"negative weight", Weights{Location: 1.2, Engagement: -0.2, Profile: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(tt.weights)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
