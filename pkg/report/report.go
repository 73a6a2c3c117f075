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

// Package report compares the computed latency bounds with the measured
// latencies and renders the comparison as table, YAML, charts and metrics.
package report

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kubewharf/katalyst-membound/pkg/bound"
	"github.com/kubewharf/katalyst-membound/pkg/config/membound"
	"github.com/kubewharf/katalyst-membound/pkg/measurement"
)

// Row compares one bound with the latency measured for it.
type Row struct {
	BurstLength int      `yaml:"burstLength"`
	Contention  int      `yaml:"contention,omitempty"`
	Bound       int      `yaml:"bound"`
	Measured    float64  `yaml:"measured"`
	Overhead    Overhead `yaml:"overhead"`
	Violation   bool     `yaml:"violation,omitempty"`
}

func newRow(burstLength, contention, bound int, measured float64) Row {
	return Row{
		BurstLength: burstLength,
		Contention:  contention,
		Bound:       bound,
		Measured:    measured,
		Overhead:    NewOverhead(float64(bound), measured),
		Violation:   float64(bound) < measured,
	}
}

// TargetReport holds every comparison of one target.
type TargetReport struct {
	Name     string         `yaml:"name"`
	Scenario bound.Scenario `yaml:"-"`
	Kind     string         `yaml:"scenario"`

	Isolation []Row `yaml:"isolation"`
	// Interference compares at the interference burst length, one row per
	// contention level.
	Interference []Row `yaml:"interference,omitempty"`
	// InterferenceBounds maps burst length -> contention level -> bound.
	InterferenceBounds map[int]map[int]int `yaml:"interferenceBounds,omitempty"`

	MeanIsolationOverhead    Overhead `yaml:"meanIsolationOverhead"`
	MeanInterferenceOverhead Overhead `yaml:"meanInterferenceOverhead"`
}

// Violation is a measurement above its bound.
type Violation struct {
	Target string
	Mode   string
	Row    Row
}

func (v Violation) String() string {
	if v.Mode == ModeInterference {
		return fmt.Sprintf("%s %s burst=%d chi=%d: measured %.0f > bound %d",
			v.Target, v.Mode, v.Row.BurstLength, v.Row.Contention, v.Row.Measured, v.Row.Bound)
	}
	return fmt.Sprintf("%s %s burst=%d: measured %.0f > bound %d",
		v.Target, v.Mode, v.Row.BurstLength, v.Row.Measured, v.Row.Bound)
}

const (
	ModeIsolation    = "isolation"
	ModeInterference = "interference"
)

// Report is the result of one analysis run.
type Report struct {
	RunID                   string            `yaml:"runID"`
	BurstLengths            []int             `yaml:"burstLengths"`
	InterferenceBurstLength int               `yaml:"interferenceBurstLength"`
	ContentionLevels        []int             `yaml:"contentionLevels"`
	Targets                 []TargetReport    `yaml:"targets"`
	Traces                  map[string]string `yaml:"traces"`
}

// Build computes every bound of the configuration and pairs it with the
// corresponding measurement.
func Build(conf *membound.BoundConfiguration, calc *bound.Calculator, m *measurement.Measurements) (*Report, error) {
	r := &Report{
		RunID:                   uuid.New().String(),
		BurstLengths:            append([]int(nil), conf.BurstLengths...),
		InterferenceBurstLength: conf.InterferenceBurstLength,
		ContentionLevels:        append([]int(nil), conf.ContentionLevels...),
		Traces:                  make(map[string]string, len(m.Digests)),
	}
	for path, digest := range m.Digests {
		r.Traces[path] = fmt.Sprintf("%016x", digest)
	}

	for _, target := range conf.Targets {
		tr, err := buildTarget(conf, calc, m, target)
		if err != nil {
			return nil, err
		}
		r.Targets = append(r.Targets, tr)
	}
	return r, nil
}

func buildTarget(conf *membound.BoundConfiguration, calc *bound.Calculator, m *measurement.Measurements,
	target membound.Target,
) (TargetReport, error) {
	tr := TargetReport{Name: target.Name, Scenario: target.Scenario, Kind: target.Scenario.String()}

	isolation, ok := m.Isolation[target.Name]
	if !ok {
		return tr, errors.Wrapf(measurement.ErrNoData, "no isolation measurement of target %q", target.Name)
	}
	overheads := make([]Overhead, 0, len(conf.BurstLengths))
	for _, b := range conf.BurstLengths {
		measured, ok := isolation[b]
		if !ok {
			return tr, errors.Wrapf(measurement.ErrNoData, "no isolation measurement of target %q at burst length %d", target.Name, b)
		}
		row := newRow(b, 0, calc.IsolationBound(target.Scenario, bound.Beta(b)), measured)
		tr.Isolation = append(tr.Isolation, row)
		overheads = append(overheads, row.Overhead)
	}
	tr.MeanIsolationOverhead = MeanOverhead(overheads)

	if !target.Interference {
		return tr, nil
	}

	tr.InterferenceBounds = make(map[int]map[int]int, len(conf.BurstLengths))
	for _, b := range burstLengthsWith(conf.BurstLengths, conf.InterferenceBurstLength) {
		tr.InterferenceBounds[b] = make(map[int]int, len(conf.ContentionLevels))
		for _, chi := range conf.ContentionLevels {
			tr.InterferenceBounds[b][chi] = calc.TotalInterferenceBound(target.Scenario, bound.Beta(b), chi)
		}
	}

	interference := m.Interference[target.Name]
	overheads = make([]Overhead, 0, len(conf.ContentionLevels))
	for _, chi := range conf.ContentionLevels {
		sample, ok := interference[chi]
		if !ok {
			return tr, errors.Wrapf(measurement.ErrNoData, "no interference measurement of target %q at contention level %d", target.Name, chi)
		}
		row := newRow(conf.InterferenceBurstLength, chi, tr.InterferenceBounds[conf.InterferenceBurstLength][chi], sample.Max)
		tr.Interference = append(tr.Interference, row)
		overheads = append(overheads, row.Overhead)
	}
	tr.MeanInterferenceOverhead = MeanOverhead(overheads)

	return tr, nil
}

// burstLengthsWith returns the sorted burst lengths including extra.
func burstLengthsWith(burstLengths []int, extra int) []int {
	res := append([]int(nil), burstLengths...)
	for _, b := range burstLengths {
		if b == extra {
			sort.Ints(res)
			return res
		}
	}
	res = append(res, extra)
	sort.Ints(res)
	return res
}

// Violations lists every measurement that exceeds its bound.
func (r *Report) Violations() []Violation {
	var res []Violation
	for _, t := range r.Targets {
		for _, row := range t.Isolation {
			if row.Violation {
				res = append(res, Violation{Target: t.Name, Mode: ModeIsolation, Row: row})
			}
		}
		for _, row := range t.Interference {
			if row.Violation {
				res = append(res, Violation{Target: t.Name, Mode: ModeInterference, Row: row})
			}
		}
	}
	return res
}
