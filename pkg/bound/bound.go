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

// Package bound computes analytical worst-case latency bounds, in cycles,
// for accesses that cross the crossbar into the scratchpad or into the
// last-level cache in front of HyperBus memory.
package bound

import (
	"fmt"

	"github.com/kubewharf/katalyst-membound/pkg/consts"
)

// Calculator holds the system parameters the bounds depend on.
type Calculator struct {
	// MaxOutstanding is the number of transactions a contender keeps in flight.
	MaxOutstanding int
	// Masters is the number of crossbar masters arbitrated against each other.
	Masters int
	// LineLength is the last-level cache line length in words.
	LineLength int
	// HyperFanRatio is the clock ratio towards the HyperBus domain.
	HyperFanRatio int
	// IsolationFanRatio is the clock ratio on the initiator side of the crossbar.
	IsolationFanRatio int
}

// NewCalculator returns a Calculator for the default system.
func NewCalculator() *Calculator {
	return &Calculator{
		MaxOutstanding:    consts.DefaultMaxOutstanding,
		Masters:           consts.DefaultCrossbarMasters,
		LineLength:        consts.DefaultLLCLineLength,
		HyperFanRatio:     consts.DefaultHyperFanRatio,
		IsolationFanRatio: consts.DefaultIsolationFanRatio,
	}
}

// Validate rejects parameters the formulas are not defined for.
func (c *Calculator) Validate() error {
	switch {
	case c.MaxOutstanding < 0:
		return fmt.Errorf("max outstanding %d is negative", c.MaxOutstanding)
	case c.Masters < 1:
		return fmt.Errorf("crossbar masters %d must be positive", c.Masters)
	case c.LineLength < 1:
		return fmt.Errorf("cache line length %d must be positive", c.LineLength)
	case c.HyperFanRatio < 1:
		return fmt.Errorf("hyper fan ratio %d must be positive", c.HyperFanRatio)
	case c.IsolationFanRatio < 1:
		return fmt.Errorf("isolation fan ratio %d must be positive", c.IsolationFanRatio)
	}
	return nil
}

// memoryDelay dispatches to the memory behind the crossbar.
func (c *Calculator) memoryDelay(s Scenario, beta int, sc StructuralCase) int {
	rw := s.Direction.Offset()
	switch s.Kind {
	case MemoryKindSPM:
		return ScratchpadDelay(beta, rw, sc)
	case MemoryKindHyper:
		return hybridMemoryDelay(beta, rw, s.Evict, s.Hit, c.LineLength, c.HyperFanRatio)
	}
	panic(fmt.Sprintf("unknown memory kind %q", s.Kind))
}

// IsolationBound is the latency bound of a burst issued by a single initiator.
func (c *Calculator) IsolationBound(s Scenario, beta int) int {
	return CrossbarDelay(c.IsolationFanRatio) +
		CrossbarFanout(c.Masters, CaseIsolation) +
		c.memoryDelay(s, beta, CaseIsolation)
}

// InterferenceContribution is the delay one contending initiator adds to a
// burst. Hyper contenders are always charged the full round trip, whatever
// case the caller asks for.
func (c *Calculator) InterferenceContribution(s Scenario, beta int, sc StructuralCase) int {
	sc.mustValid()

	if s.Kind == MemoryKindHyper {
		sc = CaseIsolation
	}
	return CrossbarFanout(c.Masters, sc) + c.memoryDelay(s, beta, sc)
}

// TotalInterferenceBound is the latency bound of a burst under contention
// level chi.
func (c *Calculator) TotalInterferenceBound(s Scenario, beta, chi int) int {
	same := chi
	if limit := c.MaxOutstanding + 1; same > limit {
		same = limit
	}
	opposite := same + 1

	reverse := s
	reverse.Direction = s.Direction.Opposite()

	return c.InterferenceContribution(s, beta, CaseInterference)*same +
		c.InterferenceContribution(reverse, beta, CaseInterference)*opposite*s.flag() +
		c.IsolationBound(s, beta)
}

var defaultCalculator = NewCalculator()

// IsolationBound uses the default system parameters.
func IsolationBound(s Scenario, beta int) int {
	return defaultCalculator.IsolationBound(s, beta)
}

// InterferenceContribution uses the default system parameters.
func InterferenceContribution(s Scenario, beta int, sc StructuralCase) int {
	return defaultCalculator.InterferenceContribution(s, beta, sc)
}

// TotalInterferenceBound uses the default system parameters.
func TotalInterferenceBound(s Scenario, beta, chi int) int {
	return defaultCalculator.TotalInterferenceBound(s, beta, chi)
}

// Beta converts a burst length in beats into the AXI burst-length field.
func Beta(burstLength int) int {
	return burstLength - 1
}
