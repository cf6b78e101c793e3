package recognition

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a per-identity calibrated decision threshold, produced
// offline from that student's enrollment samples.
type Profile struct {
	Threshold float64 `yaml:"threshold"`
}

// Profiles maps student IDs to calibrated profiles. A missing entry is
// normal; the strict fallback threshold applies.
type Profiles map[string]Profile

// LoadProfiles reads the profiles artifact. An empty path or a missing
// file is not an error: recognition runs on the global thresholds alone.
func LoadProfiles(path string) (Profiles, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading identity profiles: %w", err)
	}

	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parsing identity profiles: %w", err)
	}
	return profiles, nil
}

// Lookup returns the calibrated profile for a student, if one exists.
func (p Profiles) Lookup(studentID string) (Profile, bool) {
	profile, ok := p[studentID]
	return profile, ok
}
