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

// Package measurement reduces recorded traces to the observed isolation
// latency series and worst-case interference latency of every target.
package measurement

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/kubewharf/katalyst-membound/pkg/config/membound"
	"github.com/kubewharf/katalyst-membound/pkg/trace"
	"github.com/kubewharf/katalyst-membound/pkg/util/general"
)

// ErrNoData is returned when a trace holds no record of a target.
var ErrNoData = errors.New("no data for scenario")

// Sample summarizes the latency of one target in one interference trace.
type Sample struct {
	Max   float64 `json:"max" yaml:"max"`
	Mean  float64 `json:"mean" yaml:"mean"`
	P99   float64 `json:"p99" yaml:"p99"`
	Count int     `json:"count" yaml:"count"`
}

// Measurements holds the observed latencies keyed by target name.
type Measurements struct {
	// Isolation maps target -> burst length -> observed cycles.
	Isolation map[string]map[int]float64
	// Interference maps target -> contention level -> worst case summary.
	Interference map[string]map[int]Sample
	// Digests maps every loaded trace path to its content fingerprint.
	Digests map[string]uint64
}

func newMeasurements() *Measurements {
	return &Measurements{
		Isolation:    make(map[string]map[int]float64),
		Interference: make(map[string]map[int]Sample),
		Digests:      make(map[string]uint64),
	}
}

// LoadFunc loads one trace file.
type LoadFunc func(path string, schema trace.Schema) (*trace.Trace, error)

// Aggregator loads the traces named by the configuration and reduces them.
type Aggregator struct {
	conf *membound.BoundConfiguration
	load LoadFunc
}

func NewAggregator(conf *membound.BoundConfiguration) *Aggregator {
	return &Aggregator{conf: conf, load: trace.Load}
}

// WithLoader replaces the trace loader.
func (a *Aggregator) WithLoader(load LoadFunc) *Aggregator {
	a.load = load
	return a
}

// Aggregate loads every trace and reduces it. Any missing trace or target
// without data fails the whole run.
func (a *Aggregator) Aggregate() (*Measurements, error) {
	m := newMeasurements()

	isoPath := a.conf.Naming.IsolationPath()
	iso, err := a.load(isoPath, a.conf.Schema)
	if err != nil {
		return nil, errors.Wrapf(err, "load isolation trace %s", isoPath)
	}
	m.Digests[iso.Path] = iso.Digest
	general.Infof("loaded isolation trace %s with %d records", iso.Path, len(iso.Records))

	for _, target := range a.conf.Targets {
		series, err := IsolationSeries(iso, target.IsolationRange, a.conf.BurstLengths)
		if err != nil {
			return nil, errors.Wrapf(err, "isolation of target %q", target.Name)
		}
		m.Isolation[target.Name] = series
	}

	if !a.interferenceEnabled() {
		return m, nil
	}

	for _, chi := range a.conf.ContentionLevels {
		path := a.conf.Naming.InterferencePath(chi, a.conf.InterferenceBurstLength)
		intf, err := a.load(path, a.conf.Schema)
		if err != nil {
			return nil, errors.Wrapf(err, "load interference trace for contention level %d", chi)
		}
		m.Digests[intf.Path] = intf.Digest
		general.Infof("loaded interference trace %s (chi=%d) with %d records", intf.Path, chi, len(intf.Records))

		for _, target := range a.conf.Targets {
			if !target.Interference {
				continue
			}
			sample, err := WorstCase(intf, target.InterferenceRange)
			if err != nil {
				return nil, errors.Wrapf(err, "interference of target %q at contention level %d", target.Name, chi)
			}
			if _, ok := m.Interference[target.Name]; !ok {
				m.Interference[target.Name] = make(map[int]Sample)
			}
			m.Interference[target.Name][chi] = sample
		}
	}

	return m, nil
}

func (a *Aggregator) interferenceEnabled() bool {
	for _, target := range a.conf.Targets {
		if target.Interference {
			return true
		}
	}
	return false
}

// IsolationSeries maps the records of a target, in file order, onto the
// burst lengths of the sweep. The record count must match the sweep.
func IsolationSeries(tr *trace.Trace, r trace.IDRange, burstLengths []int) (map[int]float64, error) {
	totals := trace.Totals(tr.Select(r))
	if len(totals) == 0 {
		return nil, errors.Wrapf(ErrNoData, "trace %s has no record in %v", tr.Path, r)
	}
	if len(totals) != len(burstLengths) {
		return nil, errors.Errorf("trace %s has %d records in %v, expected one per burst length %v",
			tr.Path, len(totals), r, burstLengths)
	}

	series := make(map[int]float64, len(burstLengths))
	for i, b := range burstLengths {
		series[b] = totals[i]
	}
	return series, nil
}

// WorstCase summarizes the records of a target under contention.
func WorstCase(tr *trace.Trace, r trace.IDRange) (Sample, error) {
	data := stats.Float64Data(trace.Totals(tr.Select(r)))
	if data.Len() == 0 {
		return Sample{}, errors.Wrapf(ErrNoData, "trace %s has no record in %v", tr.Path, r)
	}

	max, err := data.Max()
	if err != nil {
		return Sample{}, errors.Wrapf(err, "max of trace %s in %v", tr.Path, r)
	}
	p99, err := data.Percentile(99)
	if err != nil {
		return Sample{}, errors.Wrapf(err, "p99 of trace %s in %v", tr.Path, r)
	}

	return Sample{
		Max:   max,
		Mean:  stat.Mean(data, nil),
		P99:   p99,
		Count: data.Len(),
	}, nil
}
