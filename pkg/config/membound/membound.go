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

	"k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/kubewharf/katalyst-membound/pkg/bound"
	"github.com/kubewharf/katalyst-membound/pkg/consts"
	"github.com/kubewharf/katalyst-membound/pkg/trace"
)

// BoundConfiguration stores the parameters of one bound analysis run.
type BoundConfiguration struct {
	// BurstLengths are the burst lengths, in beats, of the isolation sweep.
	// The isolation trace holds one record per target and burst length,
	// in this order.
	BurstLengths []int
	// InterferenceBurstLength is the burst length the interference traces
	// were recorded with.
	InterferenceBurstLength int
	// ContentionLevels are the numbers of contending initiators, one
	// interference trace each.
	ContentionLevels []int

	Targets []Target

	MaxOutstanding    int
	Masters           int
	LineLength        int
	HyperFanRatio     int
	IsolationFanRatio int

	Naming trace.Naming
	Schema trace.Schema
}

func NewBoundConfiguration() *BoundConfiguration {
	return &BoundConfiguration{
		BurstLengths:            []int{8, 16, 32, 48, 64, 128, 192, 256},
		InterferenceBurstLength: 16,
		ContentionLevels:        []int{3, 4, 5, 8},
		Targets:                 DefaultTargets(),
		MaxOutstanding:          consts.DefaultMaxOutstanding,
		Masters:                 consts.DefaultCrossbarMasters,
		LineLength:              consts.DefaultLLCLineLength,
		HyperFanRatio:           consts.DefaultHyperFanRatio,
		IsolationFanRatio:       consts.DefaultIsolationFanRatio,
		Naming:                  trace.DefaultNaming(),
		Schema:                  trace.DefaultSchema(),
	}
}

// Calculator builds the bound calculator for the configured system.
func (c *BoundConfiguration) Calculator() *bound.Calculator {
	return &bound.Calculator{
		MaxOutstanding:    c.MaxOutstanding,
		Masters:           c.Masters,
		LineLength:        c.LineLength,
		HyperFanRatio:     c.HyperFanRatio,
		IsolationFanRatio: c.IsolationFanRatio,
	}
}

// Validate rejects configurations the formulas or the trace layout cannot
// serve, so nothing downstream sees an unknown scenario.
func (c *BoundConfiguration) Validate() error {
	var errList []error

	if len(c.BurstLengths) == 0 {
		errList = append(errList, fmt.Errorf("no burst lengths configured"))
	}
	seen := sets.NewInt()
	for _, b := range c.BurstLengths {
		if b < 1 {
			errList = append(errList, fmt.Errorf("burst length %d must be positive", b))
		}
		if seen.Has(b) {
			errList = append(errList, fmt.Errorf("burst length %d listed twice", b))
		}
		seen.Insert(b)
	}
	if c.InterferenceBurstLength < 1 {
		errList = append(errList, fmt.Errorf("interference burst length %d must be positive", c.InterferenceBurstLength))
	}

	if len(c.ContentionLevels) == 0 {
		errList = append(errList, fmt.Errorf("no contention levels configured"))
	}
	seen = sets.NewInt()
	for _, chi := range c.ContentionLevels {
		if chi < 1 {
			errList = append(errList, fmt.Errorf("contention level %d must be positive", chi))
		}
		if seen.Has(chi) {
			errList = append(errList, fmt.Errorf("contention level %d listed twice", chi))
		}
		seen.Insert(chi)
	}

	if len(c.Targets) == 0 {
		errList = append(errList, fmt.Errorf("no targets configured"))
	}
	names := sets.NewString()
	for _, t := range c.Targets {
		if names.Has(t.Name) {
			errList = append(errList, fmt.Errorf("target %q listed twice", t.Name))
		}
		names.Insert(t.Name)
		if err := t.Validate(); err != nil {
			errList = append(errList, err)
		}
	}

	errList = append(errList, overlappingRanges(c.Targets)...)

	errList = append(errList, c.Calculator().Validate(), c.Naming.Validate())
	if c.Schema.IDColumn == "" || c.Schema.AccessColumn == "" || c.Schema.ChannelColumn == "" {
		errList = append(errList, fmt.Errorf("trace column names must not be empty"))
	}

	return errors.NewAggregate(errList)
}

// overlappingRanges reports target pairs sharing identifiers in the same
// trace, since one record would count towards both.
func overlappingRanges(targets []Target) []error {
	var errList []error
	for i := range targets {
		for j := i + 1; j < len(targets); j++ {
			a, b := targets[i], targets[j]
			if a.IsolationRange.Overlaps(b.IsolationRange) {
				errList = append(errList, fmt.Errorf("isolation ranges of targets %q %v and %q %v overlap",
					a.Name, a.IsolationRange, b.Name, b.IsolationRange))
			}
			if a.InterferenceRange.Overlaps(b.InterferenceRange) {
				errList = append(errList, fmt.Errorf("interference ranges of targets %q %v and %q %v overlap",
					a.Name, a.InterferenceRange, b.Name, b.InterferenceRange))
			}
		}
	}
	return errList
}
