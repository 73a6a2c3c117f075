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

package consts

// KatalystComponentMemBound is the component name the bound analyzer runs as.
const KatalystComponentMemBound = "katalyst-membound"

// timing parameters of the interconnect, all expressed in cycles
const (
	// ScratchpadControlCycles is the fixed controller cost of a scratchpad access.
	ScratchpadControlCycles = 5
	// HyperFrontEndControlCycles is the fixed front-end cost of one external memory transfer.
	HyperFrontEndControlCycles = 5
	// LLCHitCycles is the fixed cost of a last-level cache hit, excluding beats.
	LLCHitCycles = 6
	// LLCLookupCycles is the tag lookup cost paid on a miss before the access.
	LLCLookupCycles = 2
	// HyperPhyCycles is the per-line physical-layer cost, scaled by the fan ratio.
	HyperPhyCycles = 17

	// DefaultLLCLineLength is the number of words in one cache line.
	DefaultLLCLineLength = 8
	// DefaultHyperFanRatio is the clock ratio between the system and the HyperBus domain.
	DefaultHyperFanRatio = 2
	// DefaultIsolationFanRatio is the clock ratio used on the isolation path.
	DefaultIsolationFanRatio = 1
	// DefaultCrossbarMasters is the number of crossbar masters in the analyzed system.
	DefaultCrossbarMasters = 2
	// DefaultMaxOutstanding is the number of transactions an initiator may keep in flight.
	DefaultMaxOutstanding = 4
)

// trace file defaults
const (
	DefaultTraceDelimiter     = ","
	DefaultTraceIDColumn      = "AX_ID"
	DefaultTraceAccessColumn  = "ACC"
	DefaultTraceChannelColumn = "CHAN"

	DefaultIsolationTrace           = "traces_rw_1-4-7.dat"
	DefaultInterferenceTracePattern = "traces_rw_0-{chi}-{beta}.dat"

	TracePatternContention = "{chi}"
	TracePatternBeta       = "{beta}"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "membound"
