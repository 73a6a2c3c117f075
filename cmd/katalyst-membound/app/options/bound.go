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
	"fmt"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/kubewharf/katalyst-membound/pkg/config/membound"
)

// BoundOptions holds the configurations of the analyzed system and its traces.
type BoundOptions struct {
	TraceDir                 string
	IsolationTrace           string
	InterferenceTracePattern string
	TraceDelimiter           string
	IDColumn                 string
	AccessColumn             string
	ChannelColumn            string

	BurstLengths            []int
	InterferenceBurstLength int
	ContentionLevels        []int
	TargetsConfig           string

	MaxOutstanding    int
	Masters           int
	LineLength        int
	HyperFanRatio     int
	IsolationFanRatio int
}

func NewBoundOptions() *BoundOptions {
	c := membound.NewBoundConfiguration()
	return &BoundOptions{
		TraceDir:                 c.Naming.Dir,
		IsolationTrace:           c.Naming.Isolation,
		InterferenceTracePattern: c.Naming.InterferencePattern,
		TraceDelimiter:           string(c.Schema.Delimiter),
		IDColumn:                 c.Schema.IDColumn,
		AccessColumn:             c.Schema.AccessColumn,
		ChannelColumn:            c.Schema.ChannelColumn,
		BurstLengths:             c.BurstLengths,
		InterferenceBurstLength:  c.InterferenceBurstLength,
		ContentionLevels:         c.ContentionLevels,
		MaxOutstanding:           c.MaxOutstanding,
		Masters:                  c.Masters,
		LineLength:               c.LineLength,
		HyperFanRatio:            c.HyperFanRatio,
		IsolationFanRatio:        c.IsolationFanRatio,
	}
}

// AddTraceFlags adds the trace location and layout flags.
func (o *BoundOptions) AddTraceFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.TraceDir, "trace-dir", o.TraceDir, "the directory holding the recorded traces")
	fs.StringVar(&o.IsolationTrace, "isolation-trace", o.IsolationTrace, "the file name of the isolation trace")
	fs.StringVar(&o.InterferenceTracePattern, "interference-trace-pattern", o.InterferenceTracePattern,
		"the file name pattern of the interference traces, {chi} is replaced by the contention level "+
			"and {beta} by the interference burst length minus one")
	fs.StringVar(&o.TraceDelimiter, "trace-delimiter", o.TraceDelimiter, "the single character separating trace columns")
	fs.StringVar(&o.IDColumn, "trace-id-column", o.IDColumn, "the trace column holding the access identifier")
	fs.StringVar(&o.AccessColumn, "trace-access-column", o.AccessColumn, "the trace column holding the access cycles")
	fs.StringVar(&o.ChannelColumn, "trace-channel-column", o.ChannelColumn, "the trace column holding the channel cycles")
}

// AddBoundFlags adds the flags of the analyzed system.
func (o *BoundOptions) AddBoundFlags(fs *pflag.FlagSet) {
	fs.IntSliceVar(&o.BurstLengths, "burst-lengths", o.BurstLengths,
		"the burst lengths in beats of the isolation sweep, in trace order")
	fs.IntVar(&o.InterferenceBurstLength, "interference-burst-length", o.InterferenceBurstLength,
		"the burst length in beats the interference traces were recorded with")
	fs.IntSliceVar(&o.ContentionLevels, "contention-levels", o.ContentionLevels,
		"the numbers of contending initiators, one interference trace each")
	fs.StringVar(&o.TargetsConfig, "targets-config", o.TargetsConfig,
		"a YAML file with the analyzed targets, the built-in target table is used if empty")

	fs.IntVar(&o.MaxOutstanding, "max-outstanding", o.MaxOutstanding,
		"the number of transactions a contending initiator keeps in flight")
	fs.IntVar(&o.Masters, "crossbar-masters", o.Masters, "the number of crossbar masters")
	fs.IntVar(&o.LineLength, "llc-line-length", o.LineLength, "the last-level cache line length in words")
	fs.IntVar(&o.HyperFanRatio, "hyper-fan-ratio", o.HyperFanRatio, "the clock ratio towards the HyperBus domain")
	fs.IntVar(&o.IsolationFanRatio, "isolation-fan-ratio", o.IsolationFanRatio,
		"the clock ratio on the initiator side of the crossbar")
}

// ApplyTo fills up config with options
func (o *BoundOptions) ApplyTo(c *membound.BoundConfiguration) error {
	delimiter, err := parseDelimiter(o.TraceDelimiter)
	if err != nil {
		return err
	}

	c.Naming.Dir = o.TraceDir
	c.Naming.Isolation = o.IsolationTrace
	c.Naming.InterferencePattern = o.InterferenceTracePattern
	c.Schema.Delimiter = delimiter
	c.Schema.IDColumn = o.IDColumn
	c.Schema.AccessColumn = o.AccessColumn
	c.Schema.ChannelColumn = o.ChannelColumn

	c.BurstLengths = o.BurstLengths
	c.InterferenceBurstLength = o.InterferenceBurstLength
	c.ContentionLevels = o.ContentionLevels

	c.MaxOutstanding = o.MaxOutstanding
	c.Masters = o.Masters
	c.LineLength = o.LineLength
	c.HyperFanRatio = o.HyperFanRatio
	c.IsolationFanRatio = o.IsolationFanRatio

	if o.TargetsConfig != "" {
		targets, err := membound.LoadTargets(o.TargetsConfig)
		if err != nil {
			return err
		}
		c.Targets = targets
	}
	return nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("trace delimiter %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
