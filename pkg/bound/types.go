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

package bound

import (
	"fmt"
	"strings"
)

// MemoryKind is the kind of memory a target sits behind.
type MemoryKind string

const (
	// MemoryKindSPM is the on-chip scratchpad memory.
	MemoryKindSPM MemoryKind = "SPM"
	// MemoryKindHyper is the HyperBus memory behind the last-level cache.
	MemoryKindHyper MemoryKind = "Hyper"
)

// ParseMemoryKind maps a case-insensitive name to a MemoryKind.
func ParseMemoryKind(s string) (MemoryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spm":
		return MemoryKindSPM, nil
	case "hyper", "llc":
		return MemoryKindHyper, nil
	}
	return "", fmt.Errorf("unknown memory kind %q", s)
}

func (k MemoryKind) Valid() bool {
	return k == MemoryKindSPM || k == MemoryKindHyper
}

// Direction is the direction of an access.
type Direction string

const (
	DirectionRead  Direction = "read"
	DirectionWrite Direction = "write"
)

// ParseDirection maps a case-insensitive name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read", "r":
		return DirectionRead, nil
	case "write", "w":
		return DirectionWrite, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

func (d Direction) Valid() bool {
	return d == DirectionRead || d == DirectionWrite
}

// Offset is the direction-dependent control offset in cycles: a read pays
// one more cycle than a write in the memory front end.
func (d Direction) Offset() int {
	if d == DirectionRead {
		return 1
	}
	return 0
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == DirectionRead {
		return DirectionWrite
	}
	return DirectionRead
}

// StructuralCase selects which part of a path a delay term describes.
type StructuralCase int

const (
	// CaseIsolation is the full end-to-end round trip of one access.
	CaseIsolation StructuralCase = 3
	// CaseInterference is the steady-state contribution of one contender.
	CaseInterference StructuralCase = 4
)

func (c StructuralCase) Valid() bool {
	return c == CaseIsolation || c == CaseInterference
}

func (c StructuralCase) String() string {
	switch c {
	case CaseIsolation:
		return "isolation"
	case CaseInterference:
		return "interference"
	}
	return fmt.Sprintf("StructuralCase(%d)", int(c))
}

// mustValid guards the formulas, which are undefined outside the two cases.
func (c StructuralCase) mustValid() {
	if !c.Valid() {
		panic(fmt.Sprintf("structural case %d is not one of %d or %d", int(c), CaseIsolation, CaseInterference))
	}
}

// Scenario selects the formula branch for one target.
type Scenario struct {
	Kind      MemoryKind
	Direction Direction
	// Hit is only meaningful for Hyper targets.
	Hit bool
	// Evict marks a miss that writes back a dirty line before the refill.
	Evict bool
	// DirectionInterference marks targets where opposite-direction traffic
	// contends on the same resource.
	DirectionInterference bool
}

// Validate checks the scenario is inside the formulas' domain.
func (s Scenario) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown memory kind %q", s.Kind)
	}
	if !s.Direction.Valid() {
		return fmt.Errorf("unknown direction %q", s.Direction)
	}
	if s.Kind == MemoryKindSPM && (s.Hit || s.Evict) {
		return fmt.Errorf("hit and evict do not apply to %s", s.Kind)
	}
	if s.Hit && s.Evict {
		return fmt.Errorf("a cache hit cannot evict")
	}
	return nil
}

func (s Scenario) String() string {
	switch s.Kind {
	case MemoryKindHyper:
		switch {
		case s.Hit:
			return fmt.Sprintf("%s/%s/hit", s.Kind, s.Direction)
		case s.Evict:
			return fmt.Sprintf("%s/%s/miss-evict", s.Kind, s.Direction)
		default:
			return fmt.Sprintf("%s/%s/miss-refill", s.Kind, s.Direction)
		}
	}
	return fmt.Sprintf("%s/%s", s.Kind, s.Direction)
}

// flag is the multiplier of the opposite-direction term.
func (s Scenario) flag() int {
	if s.DirectionInterference {
		return 1
	}
	return 0
}
