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
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kubewharf/katalyst-membound/pkg/metrics"
)

// WriteTable prints one line per comparison.
func WriteTable(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tMODE\tBURST\tCHI\tBOUND\tMEASURED\tOVERHEAD\t")
	for _, t := range r.Targets {
		for _, row := range t.Isolation {
			fmt.Fprintf(tw, "%s\t%s\t%d\t-\t%d\t%.0f\t%s\t%s\n",
				t.Name, ModeIsolation, row.BurstLength, row.Bound, row.Measured, row.Overhead, mark(row))
		}
		for _, row := range t.Interference {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.0f\t%s\t%s\n",
				t.Name, ModeInterference, row.BurstLength, row.Contention, row.Bound, row.Measured, row.Overhead, mark(row))
		}
	}
	return tw.Flush()
}

func mark(row Row) string {
	if row.Violation {
		return "VIOLATION"
	}
	return ""
}

// WriteYAML stores the report as a YAML document at path.
func WriteYAML(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", path)
	}
	return nil
}

// Emit stores every bound, measurement and overhead of the report.
func Emit(emitter metrics.MetricEmitter, r *Report) error {
	for _, t := range r.Targets {
		target := metrics.MetricTag{Key: "target", Val: t.Name}

		isolation := emitter.WithTags(ModeIsolation, target)
		for _, row := range t.Isolation {
			// chi stays empty so both modes share one label set
			if err := emitRow(isolation, row,
				metrics.MetricTag{Key: "burst", Val: strconv.Itoa(row.BurstLength)},
				metrics.MetricTag{Key: "chi", Val: ""},
			); err != nil {
				return err
			}
		}

		interference := emitter.WithTags(ModeInterference, target)
		for _, row := range t.Interference {
			if err := emitRow(interference, row,
				metrics.MetricTag{Key: "burst", Val: strconv.Itoa(row.BurstLength)},
				metrics.MetricTag{Key: "chi", Val: strconv.Itoa(row.Contention)},
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitRow(emitter metrics.MetricEmitter, row Row, tags ...metrics.MetricTag) error {
	if err := emitter.StoreInt64("bound_cycles", int64(row.Bound), metrics.MetricTypeNameRaw, tags...); err != nil {
		return err
	}
	if err := emitter.StoreFloat64("measured_cycles", row.Measured, metrics.MetricTypeNameRaw, tags...); err != nil {
		return err
	}
	if row.Overhead.Defined {
		if err := emitter.StoreFloat64("overhead_percent", row.Overhead.Percent, metrics.MetricTypeNameRaw, tags...); err != nil {
			return err
		}
	}
	violation := int64(0)
	if row.Violation {
		violation = 1
	}
	return emitter.StoreInt64("violation", violation, metrics.MetricTypeNameRaw, tags...)
}
