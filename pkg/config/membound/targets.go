/*
Copyright 2022 The Katalyst Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package membound

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/pointer"

	"github.com/kubewharf/katalyst-membound/pkg/bound"
	"github.com/kubewharf/katalyst-membound/pkg/trace"
)

// Target is one analyzed access type: the formula branch that bounds it
// and the identifier ranges its accesses carry in the traces.
type Target struct {
	Name     string
	Scenario bound.Scenario
	// IsolationRange selects the target in the isolation trace.
	IsolationRange trace.IDRange
	// InterferenceRange selects the target in the interference traces.
	InterferenceRange trace.IDRange
	// Interference enables the interference analysis of the target. It is
	// off for targets whose contenders may change the path taken, such as
	// cache hits evicted by interfering traffic.
	Interference bool
}

func (t Target) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("target without a name")
	}
	if err := t.Scenario.Validate(); err != nil {
		return fmt.Errorf("target %q: %v", t.Name, err)
	}
	if err := t.IsolationRange.Validate(); err != nil {
		return fmt.Errorf("target %q isolation: %v", t.Name, err)
	}
	if err := t.InterferenceRange.Validate(); err != nil {
		return fmt.Errorf("target %q interference: %v", t.Name, err)
	}
	return nil
}

// DefaultTargets is the target table of the reference measurement campaign.
func DefaultTargets() []Target {
	return []Target{
		{
			Name:              "LLC MISS REF",
			Scenario:          bound.Scenario{Kind: bound.MemoryKindHyper, Direction: bound.DirectionWrite, DirectionInterference: true},
			IsolationRange:    trace.IDRange{Min: 100000, Max: 100111},
			InterferenceRange: trace.IDRange{Min: 100000, Max: 100111},
			Interference:      true,
		},
		{
			Name:              "LLC MISS EV",
			Scenario:          bound.Scenario{Kind: bound.MemoryKindHyper, Direction: bound.DirectionWrite, Evict: true, DirectionInterference: true},
			IsolationRange:    trace.IDRange{Min: 1010000, Max: 1010111},
			InterferenceRange: trace.IDRange{Min: 1010000, Max: 1010111},
			Interference:      true,
		},
		{
			Name:              "LLC HIT",
			Scenario:          bound.Scenario{Kind: bound.MemoryKindHyper, Direction: bound.DirectionWrite, Hit: true, DirectionInterference: true},
			IsolationRange:    trace.IDRange{Min: 110000, Max: 110111},
			InterferenceRange: trace.IDRange{Min: 1000000, Max: 1000111},
		},
		{
			Name:              "SPM READ",
			Scenario:          bound.Scenario{Kind: bound.MemoryKindSPM, Direction: bound.DirectionRead},
			IsolationRange:    trace.IDRange{Min: 0, Max: 111},
			InterferenceRange: trace.IDRange{Min: 0, Max: 111},
			Interference:      true,
		},
		{
			Name:              "SPM WRITE",
			Scenario:          bound.Scenario{Kind: bound.MemoryKindSPM, Direction: bound.DirectionWrite},
			IsolationRange:    trace.IDRange{Min: 1000, Max: 1111},
			InterferenceRange: trace.IDRange{Min: 1000, Max: 1111},
			Interference:      true,
		},
	}
}

// targetsFile is the on-disk form of a target table.
type targetsFile struct {
	Targets []targetSpec `yaml:"targets"`
}

type targetSpec struct {
	Name                  string         `yaml:"name"`
	Memory                string         `yaml:"memory"`
	Direction             string         `yaml:"direction"`
	Hit                   bool           `yaml:"hit"`
	Evict                 bool           `yaml:"evict"`
	DirectionInterference *bool          `yaml:"directionInterference"`
	IsolationRange        *trace.IDRange `yaml:"isolationRange"`
	InterferenceRange     *trace.IDRange `yaml:"interferenceRange"`
	Interference          *bool          `yaml:"interference"`
}

// LoadTargets reads a YAML target table.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read targets config %s", path)
	}
	targets, err := ParseTargets(data)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "parse targets config %s", path)
	}
	return targets, nil
}

// ParseTargets decodes a YAML target table. Hyper targets default to
// direction interference, the interference range defaults to the
// isolation range and the interference analysis is on unless disabled.
func ParseTargets(data []byte) ([]Target, error) {
	file := &targetsFile{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined")
	}

	targets := make([]Target, 0, len(file.Targets))
	for _, spec := range file.Targets {
		kind, err := bound.ParseMemoryKind(spec.Memory)
		if err != nil {
			return nil, fmt.Errorf("target %q: %v", spec.Name, err)
		}
		direction, err := bound.ParseDirection(spec.Direction)
		if err != nil {
			return nil, fmt.Errorf("target %q: %v", spec.Name, err)
		}

		if spec.IsolationRange == nil {
			return nil, fmt.Errorf("target %q has no isolationRange", spec.Name)
		}
		interferenceRange := *spec.IsolationRange
		if spec.InterferenceRange != nil {
			interferenceRange = *spec.InterferenceRange
		}

		targets = append(targets, Target{
			Name: spec.Name,
			Scenario: bound.Scenario{
				Kind:                  kind,
				Direction:             direction,
				Hit:                   spec.Hit,
				Evict:                 spec.Evict,
				DirectionInterference: pointer.BoolDeref(spec.DirectionInterference, kind == bound.MemoryKindHyper),
			},
			IsolationRange:    *spec.IsolationRange,
			InterferenceRange: interferenceRange,
			Interference:      pointer.BoolDeref(spec.Interference, true),
		})
	}
	return targets, nil
}
