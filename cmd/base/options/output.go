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

package options

import (
	"github.com/spf13/pflag"

	"github.com/kubewharf/katalyst-membound/pkg/config/generic"
)

// OutputOptions holds the configurations of the produced artifacts.
type OutputOptions struct {
	OutputDir       string
	ReportFile      string
	MetricsTextfile string
	ChartFormats    []string
	PrintTable      bool
	FailOnViolation bool
}

func NewOutputOptions() *OutputOptions {
	c := generic.NewOutputConfiguration()
	return &OutputOptions{
		OutputDir:       c.OutputDir,
		ReportFile:      "report.yaml",
		MetricsTextfile: "membound.prom",
		ChartFormats:    c.ChartFormats,
		PrintTable:      c.PrintTable,
		FailOnViolation: c.FailOnViolation,
	}
}

// AddFlags adds flags  to the specified FlagSet.
func (o *OutputOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.OutputDir, "output-dir", o.OutputDir, "the directory charts, report and metrics are written to")
	fs.StringVar(&o.ReportFile, "report-file", o.ReportFile, "the name of the YAML report, empty to disable it")
	fs.StringVar(&o.MetricsTextfile, "metrics-textfile", o.MetricsTextfile,
		"the name of the prometheus textfile, empty to disable it")
	fs.StringSliceVar(&o.ChartFormats, "charts", o.ChartFormats, "the formats charts are rendered in, empty to disable charts")
	fs.BoolVar(&o.PrintTable, "print-table", o.PrintTable, "whether to print the comparison table to stdout")
	fs.BoolVar(&o.FailOnViolation, "fail-on-violation", o.FailOnViolation,
		"whether the run fails when a measurement exceeds its bound")
}

func (o *OutputOptions) ApplyTo(c *generic.OutputConfiguration) error {
	c.OutputDir = o.OutputDir
	c.ReportFile = o.ReportFile
	c.MetricsTextfile = o.MetricsTextfile
	c.ChartFormats = o.ChartFormats
	c.PrintTable = o.PrintTable
	c.FailOnViolation = o.FailOnViolation
	return nil
}
