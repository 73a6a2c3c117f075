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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubewharf/katalyst-membound/pkg/bound"
	"github.com/kubewharf/katalyst-membound/pkg/trace"
)

const targetsYAML = `
targets:
  - name: LLC HIT
    memory: hyper
    direction: write
    hit: true
    interference: false
    isolationRange: {min: 110000, max: 110111}
    interferenceRange: {min: 1000000, max: 1000111}
  - name: SPM READ
    memory: SPM
    direction: read
    isolationRange: {min: 0, max: 111}
`

func TestParseTargets(t *testing.T) {
	t.Parallel()

	targets, err := ParseTargets([]byte(targetsYAML))
	require.NoError(t, err)
	require.Len(t, targets, 2)

	assert.Equal(t, Target{
		Name:              "LLC HIT",
		Scenario:          bound.Scenario{Kind: bound.MemoryKindHyper, Direction: bound.DirectionWrite, Hit: true, DirectionInterference: true},
		IsolationRange:    trace.IDRange{Min: 110000, Max: 110111},
		InterferenceRange: trace.IDRange{Min: 1000000, Max: 1000111},
	}, targets[0])

	assert.Equal(t, Target{
		Name:              "SPM READ",
		Scenario:          bound.Scenario{Kind: bound.MemoryKindSPM, Direction: bound.DirectionRead},
		IsolationRange:    trace.IDRange{Min: 0, Max: 111},
		InterferenceRange: trace.IDRange{Min: 0, Max: 111},
		Interference:      true,
	}, targets[1])
}

func TestParseTargetsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "targets: []"},
		{name: "unknown memory", data: "targets:\n  - name: x\n    memory: dram\n    direction: read\n"},
		{name: "unknown direction", data: "targets:\n  - name: x\n    memory: spm\n    direction: both\n"},
		{name: "not yaml", data: "targets: [:"},
		{name: "missing isolation range", data: "targets:\n  - name: x\n    memory: spm\n    direction: read\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseTargets([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseTargetsRequiresIsolationRange(t *testing.T) {
	t.Parallel()

	_, err := ParseTargets([]byte("targets:\n  - name: SPM READ\n    memory: spm\n    direction: read\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `target "SPM READ" has no isolationRange`)

	// an explicit zero range is still accepted
	targets, err := ParseTargets([]byte("targets:\n  - name: first\n    memory: spm\n    direction: read\n    isolationRange: {min: 0, max: 0}\n"))
	require.NoError(t, err)
	assert.Equal(t, trace.IDRange{}, targets[0].IsolationRange)
}

func TestLoadTargets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(targetsYAML), 0o644))

	targets, err := LoadTargets(path)
	require.NoError(t, err)
	assert.Len(t, targets, 2)

	_, err = LoadTargets(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "none.yaml")
}

func TestBoundConfigurationValidate(t *testing.T) {
	t.Parallel()

	c := NewBoundConfiguration()
	require.NoError(t, c.Validate())

	c.BurstLengths = []int{8, 8, 0}
	c.ContentionLevels = nil
	c.Targets = append(c.Targets, c.Targets[0], Target{
		Name:              "SPM HIT",
		Scenario:          bound.Scenario{Kind: bound.MemoryKindSPM, Direction: bound.DirectionRead, Hit: true},
		IsolationRange:    trace.IDRange{Min: 0, Max: 1},
		InterferenceRange: trace.IDRange{Min: 0, Max: 1},
	})
	c.LineLength = 0

	err := c.Validate()
	require.Error(t, err)
	for _, msg := range []string{
		"burst length 8 listed twice",
		"burst length 0 must be positive",
		"no contention levels",
		`target "LLC MISS REF" listed twice`,
		`target "SPM HIT"`,
		"cache line length",
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestBoundConfigurationValidateOverlappingRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(targets []Target)
		wantMsg string
	}{
		{
			name: "isolation",
			mutate: func(targets []Target) {
				targets[4].IsolationRange = trace.IDRange{Min: 0, Max: 1111}
			},
			wantMsg: `isolation ranges of targets "SPM READ" [0,111] and "SPM WRITE" [0,1111] overlap`,
		},
		{
			name: "interference",
			mutate: func(targets []Target) {
				targets[0].InterferenceRange = trace.IDRange{Min: 100000, Max: 1000000}
			},
			wantMsg: `interference ranges of targets "LLC MISS REF" [100000,1000000] and "LLC HIT" [1000000,1000111] overlap`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewBoundConfiguration()
			tt.mutate(c.Targets)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDefaultTargets(t *testing.T) {
	t.Parallel()

	for _, target := range DefaultTargets() {
		assert.NoError(t, target.Validate(), target.Name)
	}
}
