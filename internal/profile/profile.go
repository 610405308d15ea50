// Package profile loads the user's skill profile from YAML files.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

var ErrNoSkills = errors.New("profile has no skills")

// File is the on-disk profile layout:
//
//	skills:
//	  - name: Python
//	    proficiency: 9
//	    category: programming
type File struct {
	Skills opportunity.Skills `yaml:"skills"`
}

// Load reads every file and merges the skills in order. A skill present in
// several files keeps the highest proficiency.
func Load(paths ...string) (opportunity.Skills, error) {
	var skills opportunity.Skills
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}

		parsed, err := Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}
		skills = skills.Merge(parsed)
	}

	if len(skills) == 0 {
		return nil, ErrNoSkills
	}
	return skills, nil
}

// Parse decodes a single profile. Proficiency is clamped to 1..10.
func Parse(r io.Reader) (opportunity.Skills, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	skills := make(opportunity.Skills, 0, len(f.Skills))
	for i, s := range f.Skills {
		if s.Key() == "" {
			return nil, fmt.Errorf("skill #%d has no name", i+1)
		}
		skills = append(skills, s.Clamp())
	}
	return skills, nil
}
