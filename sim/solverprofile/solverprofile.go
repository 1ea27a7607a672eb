// Package solverprofile holds an optional YAML override file for the
// scheduler/sorter/rater/placement defaults otherwise set purely by CLI
// flags (§6). Grounded on the teacher's sim/bundle.go PolicyBundle
// idiom: strict yaml.v3 decoding (KnownFields) plus a name-registry
// validator, generalized from admission/routing/priority policy names to
// this domain's five open-set interfaces (§9 "Polymorphism").
package solverprofile

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile overrides the scheduler's strategy selection. Every field is
// optional; a zero value means "use the CLI flag's default" — a bundled
// override is not an override at all unless loaded.
type Profile struct {
	Algorithm              string `yaml:"algorithm"`
	Routing                string `yaml:"routing"`
	ConfigurationRating    *int   `yaml:"configuration_rating"`
	FlowSorting            *int   `yaml:"flow_sorting"`
	ConfigurationPlacement *int   `yaml:"configuration_placement"`
	CandidatePaths         *int   `yaml:"candidate_paths"`
	OffensivePlanning      *bool  `yaml:"offensive_planning"`
	VerifySchedule         *bool  `yaml:"verify_schedule"`
}

// Load reads and strictly parses a YAML solver profile: unrecognized
// keys (typos) are rejected rather than silently ignored.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading solver profile: %w", err)
	}
	var p Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing solver profile: %w", err)
	}
	return &p, nil
}

var (
	validAlgorithms = map[string]bool{"": true, "H2S": true, "CELF": true, "EDF": true, "FF": true, "HERMES": true}
	validRoutings   = map[string]bool{"": true, "DIJKSTRA_OVERLAP": true, "K_SHORTEST": true}
)

// Validate checks that every named strategy in the profile is a
// recognized one.
func (p *Profile) Validate() error {
	if !validAlgorithms[p.Algorithm] {
		return fmt.Errorf("unknown algorithm %q; valid options: %s", p.Algorithm, validNames(validAlgorithms))
	}
	if !validRoutings[p.Routing] {
		return fmt.Errorf("unknown routing %q; valid options: %s", p.Routing, validNames(validRoutings))
	}
	return nil
}

func validNames(m map[string]bool) string {
	names := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
