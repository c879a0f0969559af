// Package recipe holds the brew recipe model, its YAML file format and the
// translation of a recipe into appliance commands.
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/srg/brewlink/internal/protocol"
)

// Appliance limits for a mash step
const (
	MinTemperature = 0.0
	MaxTemperature = 100.0
)

// Recipe is a mash schedule plus boil plan
type Recipe struct {
	Name          string         `yaml:"name"`
	BoilTime      uint32         `yaml:"boil_time"` // minutes
	MashSteps     []MashStep     `yaml:"mash_steps"`
	BoilAdditions []BoilAddition `yaml:"boil_additions,omitempty"`
}

// MashStep holds the mash at Temperature (°C) for Minutes
type MashStep struct {
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	Minutes     uint32  `yaml:"minutes"`
}

// BoilAddition is added with Minutes of boil remaining
type BoilAddition struct {
	Name    string `yaml:"name"`
	Minutes uint32 `yaml:"minutes"`
}

// Validate reports every problem found, joined
func (r *Recipe) Validate() error {
	var errs []error

	if r.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if len(r.MashSteps) == 0 {
		errs = append(errs, errors.New("mash_steps must not be empty"))
	}
	for i, s := range r.MashSteps {
		if s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
			errs = append(errs, fmt.Errorf("mash_steps[%d].temperature must be within %g..%g, got %g", i, MinTemperature, MaxTemperature, s.Temperature))
		}
		if s.Minutes == 0 {
			errs = append(errs, fmt.Errorf("mash_steps[%d].minutes must be > 0", i))
		}
	}
	for i, a := range r.BoilAdditions {
		if a.Minutes > r.BoilTime {
			errs = append(errs, fmt.Errorf("boil_additions[%d].minutes %d exceeds boil_time %d", i, a.Minutes, r.BoilTime))
		}
	}

	return errors.Join(errs...)
}

// Parse decodes a YAML recipe. Unknown keys are rejected.
func Parse(data []byte) (*Recipe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Recipe
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}
	return &r, nil
}

// Load reads and parses a YAML recipe file
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}
	return Parse(data)
}

// Translate returns one MashStep command per mash step, in recipe order
func Translate(r *Recipe) []protocol.Command {
	cmds := make([]protocol.Command, 0, len(r.MashSteps))
	for _, s := range r.MashSteps {
		cmds = append(cmds, protocol.MashStep{Temperature: s.Temperature, Minutes: s.Minutes})
	}
	return cmds
}
