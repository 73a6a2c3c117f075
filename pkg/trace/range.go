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

package trace

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kubewharf/katalyst-membound/pkg/consts"
)

// IDRange is an inclusive range of access identifiers. The traffic
// generator encodes the scenario of an access in its identifier.
type IDRange struct {
	Min int64 `yaml:"min" json:"min"`
	Max int64 `yaml:"max" json:"max"`
}

func (r IDRange) Contains(id int64) bool {
	return id >= r.Min && id <= r.Max
}

func (r IDRange) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("identifier range %v starts below zero", r)
	}
	if r.Min > r.Max {
		return fmt.Errorf("identifier range %v is empty", r)
	}
	return nil
}

// Overlaps reports whether both ranges share at least one identifier.
func (r IDRange) Overlaps(o IDRange) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

func (r IDRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}

// Naming resolves trace file names. Interference names are rendered from
// a pattern carrying the contention level and the burst-length field.
type Naming struct {
	Dir                 string
	Isolation           string
	InterferencePattern string
}

// DefaultNaming returns the names produced by the measurement scripts.
func DefaultNaming() Naming {
	return Naming{
		Dir:                 ".",
		Isolation:           consts.DefaultIsolationTrace,
		InterferencePattern: consts.DefaultInterferenceTracePattern,
	}
}

func (n Naming) Validate() error {
	if n.Isolation == "" {
		return fmt.Errorf("isolation trace name is empty")
	}
	if !strings.Contains(n.InterferencePattern, consts.TracePatternContention) {
		return fmt.Errorf("interference trace pattern %q has no %s placeholder",
			n.InterferencePattern, consts.TracePatternContention)
	}
	return nil
}

// IsolationPath is the path of the single-initiator trace.
func (n Naming) IsolationPath() string {
	return filepath.Join(n.Dir, n.Isolation)
}

// InterferencePath is the path of the trace recorded at contention level
// chi with bursts of burstLength beats.
func (n Naming) InterferencePath(chi, burstLength int) string {
	name := strings.NewReplacer(
		consts.TracePatternContention, strconv.Itoa(chi),
		consts.TracePatternBeta, strconv.Itoa(burstLength-1),
	).Replace(n.InterferencePattern)
	return filepath.Join(n.Dir, name)
}
