package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
)

// weightSumEpsilon is the tolerance when checking that calibrated weights
// sum to 1.0. Floating point literals in a hand-edited JSON file can be off
// by a hair without changing ranking semantics.
const weightSumEpsilon = 1e-9

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Top-level ranking weights
}

// LoadCalibration loads ranking weights from a JSON calibration file.
// Partial configurations are merged with defaults; the merged result must
// sum to 1.0 or the defaults are kept. On any error the defaults are
// returned alongside the error so startup can degrade gracefully.
//
// Parameters:
//   - filePath: Path to the calibration JSON file; empty means defaults.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)

	if err := ValidateWeights(*merged); err != nil {
		slog.Warn("invalid ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("invalid calibration: %w", err)
	}

	logCalibrationOverrides(defaults, merged)
	return merged, nil
}

// MergeCalibration merges override weights with base weights. Only non-zero
// values from the override are applied, allowing partial overrides in the
// calibration file.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.Location != 0 {
		result.Location = override.Location
	}
	if override.Engagement != 0 {
		result.Engagement = override.Engagement
	}
	if override.Profile != 0 {
		result.Profile = override.Profile
	}

	return &result
}

// ValidateWeights checks that all weights are non-negative and sum to 1.0
// within epsilon. A valid weight set guarantees totals stay in [0, 100].
func ValidateWeights(w Weights) error {
	if w.Location < 0 || w.Engagement < 0 || w.Profile < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if diff := math.Abs(w.Sum() - 1.0); diff > weightSumEpsilon {
		return fmt.Errorf("weights must sum to 1.0, got %v", w.Sum())
	}
	return nil
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	if loaded.Location != defaults.Location {
		overrides = append(overrides, fmt.Sprintf("location: %.2f -> %.2f",
			defaults.Location, loaded.Location))
	}
	if loaded.Engagement != defaults.Engagement {
		overrides = append(overrides, fmt.Sprintf("engagement: %.2f -> %.2f",
			defaults.Engagement, loaded.Engagement))
	}
	if loaded.Profile != defaults.Profile {
		overrides = append(overrides, fmt.Sprintf("profile: %.2f -> %.2f",
			defaults.Profile, loaded.Profile))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
