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
	"github.com/kubewharf/katalyst-membound/pkg/consts"
)

// In every formula below beta is the AXI burst-length field, so a burst
// moves beta+1 beats.

// CrossbarDelay is the cost of crossing a clock-domain boundary into the
// crossbar for a given fan ratio.
func CrossbarDelay(fanRatio int) int {
	return 1 + 4*fanRatio + 4 + fanRatio
}

// crossbarWriteDelay is the write-channel share of CrossbarDelay.
func crossbarWriteDelay(fanRatio int) int {
	return 1 + 4*fanRatio
}

// ScratchpadDelay returns the scratchpad cost of a burst: the full round
// trip for CaseIsolation, the beats alone for CaseInterference.
func ScratchpadDelay(beta, rw int, c StructuralCase) int {
	c.mustValid()

	beats := beta + 1
	if c == CaseIsolation {
		return consts.ScratchpadControlCycles + rw + beats
	}
	return beats
}

// CrossbarFanout is the arbitration cost among nMasters contenders.
func CrossbarFanout(nMasters int, c StructuralCase) int {
	c.mustValid()

	if c == CaseIsolation {
		return 2 + nMasters - 1
	}
	return nMasters - 1
}

// HybridMemoryDelay returns the cost of a burst served by the last-level
// cache, refilling from (and on evict also writing back to) HyperBus memory
// on a miss.
func HybridMemoryDelay(beta, rw int, evict, hit bool) int {
	return hybridMemoryDelay(beta, rw, evict, hit, consts.DefaultLLCLineLength, consts.DefaultHyperFanRatio)
}

func hybridMemoryDelay(beta, rw int, evict, hit bool, lineLength, fanRatio int) int {
	beats := beta + 1
	if hit {
		return consts.LLCHitCycles + beats
	}

	llcTime := consts.LLCLookupCycles + consts.LLCHitCycles + beats

	frontEnd := consts.HyperFrontEndControlCycles + rw
	transfer := consts.HyperPhyCycles*fanRatio + lineLength*fanRatio*2
	singleRead := frontEnd + CrossbarDelay(fanRatio) + transfer
	singleWrite := frontEnd + crossbarWriteDelay(fanRatio) + transfer

	lines := (beats + lineLength - 1) / lineLength
	if !evict {
		return llcTime + lines*singleRead
	}
	return llcTime + lines*(singleRead+singleWrite)
}
