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

package report

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Overhead is how far a bound lies above the measured latency, in percent
// of the measurement. It is undefined when nothing was measured.
type Overhead struct {
	Percent float64
	Defined bool
}

// NewOverhead returns (bound - measured) * 100 / measured.
func NewOverhead(bound, measured float64) Overhead {
	if measured == 0 || math.IsNaN(measured) {
		return Overhead{}
	}
	return Overhead{Percent: (bound - measured) * 100 / measured, Defined: true}
}

func (o Overhead) String() string {
	if !o.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", o.Percent)
}

func (o Overhead) MarshalYAML() (interface{}, error) {
	if !o.Defined {
		return "n/a", nil
	}
	return math.Round(o.Percent*100) / 100, nil
}

// MeanOverhead averages the defined overheads.
func MeanOverhead(overheads []Overhead) Overhead {
	values := make([]float64, 0, len(overheads))
	for _, o := range overheads {
		if o.Defined {
			values = append(values, o.Percent)
		}
	}
	if len(values) == 0 {
		return Overhead{}
	}
	return Overhead{Percent: stat.Mean(values, nil), Defined: true}
}
