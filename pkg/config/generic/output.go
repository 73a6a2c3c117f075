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

package generic

import "fmt"

const (
	ChartFormatSVG = "svg"
	ChartFormatPDF = "pdf"
)

// OutputConfiguration describes where and how the results are written.
type OutputConfiguration struct {
	// OutputDir is where charts, report and metrics file are written.
	OutputDir string
	// ReportFile is the name of the YAML report; empty disables it.
	ReportFile string
	// MetricsTextfile is the name of the prometheus textfile; empty disables it.
	MetricsTextfile string
	// ChartFormats lists the formats the charts are rendered in; empty disables charts.
	ChartFormats []string
	// PrintTable writes the comparison table to stdout.
	PrintTable bool
	// FailOnViolation makes the run fail when a measurement exceeds its bound.
	FailOnViolation bool
}

func NewOutputConfiguration() *OutputConfiguration {
	return &OutputConfiguration{
		OutputDir:       ".",
		ChartFormats:    []string{ChartFormatPDF, ChartFormatSVG},
		PrintTable:      true,
		FailOnViolation: true,
	}
}

func (c *OutputConfiguration) Validate() error {
	for _, f := range c.ChartFormats {
		if f != ChartFormatSVG && f != ChartFormatPDF {
			return fmt.Errorf("unsupported chart format %q", f)
		}
	}
	return nil
}
