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

package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const targetsConfig = `
targets:
- name: SPM READ
  memory: spm
  direction: read
  isolationRange: {min: 0, max: 111}
- name: SPM WRITE
  memory: spm
  direction: write
  isolationRange: {min: 1000, max: 1111}
`

// writeTraces lays out one isolation and one interference trace. SPM READ
// is bounded by 27 and 35 in isolation and by 86 at contention level 3.
func writeTraces(t *testing.T, spmReadWorstCase int) (string, string) {
	t.Helper()
	dir := t.TempDir()

	isolation := "AX_ID,ACC,CHAN\n0,18,2\n1,27,3\n1000,18,2\n1001,27,3\n"
	interference := fmt.Sprintf("AX_ID,ACC,CHAN\n5,40,0\n7,%d,0\n1005,60,0\n", spmReadWorstCase)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "traces_rw_1-4-7.dat"), []byte(isolation), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "traces_rw_0-3-15.dat"), []byte(interference), 0o644))

	targets := filepath.Join(dir, "targets.yaml")
	require.NoError(t, os.WriteFile(targets, []byte(targetsConfig), 0o644))
	return dir, targets
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewMemBoundCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun(t *testing.T) {
	traceDir, targets := writeTraces(t, 50)
	outputDir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t,
		"--trace-dir="+traceDir,
		"--targets-config="+targets,
		"--burst-lengths=8,16",
		"--contention-levels=3",
		"--output-dir="+outputDir,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "TARGET")
	assert.Equal(t, 1+4+2, len(strings.Split(strings.TrimSpace(out), "\n")))
	assert.NotContains(t, out, "VIOLATION")

	for _, name := range []string{"report.yaml", "membound.prom", "measurements_16.pdf", "measurements_16.svg"} {
		_, err := os.Stat(filepath.Join(outputDir, name))
		assert.NoError(t, err, name)
	}

	prom, err := os.ReadFile(filepath.Join(outputDir, "membound.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `membound_bound_cycles{burst="16",chi="3",target="SPM READ",unit="interference"} 86`)
}

func TestRunViolation(t *testing.T) {
	traceDir, targets := writeTraces(t, 90)
	args := []string{
		"--trace-dir=" + traceDir,
		"--targets-config=" + targets,
		"--burst-lengths=8,16",
		"--contention-levels=3",
		"--charts=",
		"--report-file=",
		"--metrics-textfile=",
	}

	out, err := execute(t, args...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBoundViolated))
	assert.Contains(t, out, "VIOLATION")

	_, err = execute(t, append(args, "--fail-on-violation=false")...)
	assert.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	traceDir, targets := writeTraces(t, 50)

	// the interference trace of level 4 was never recorded
	_, err := execute(t,
		"--trace-dir="+traceDir,
		"--targets-config="+targets,
		"--burst-lengths=8,16",
		"--contention-levels=3,4",
		"--print-table=false",
		"--charts=",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contention level 4")

	// three burst lengths but two records per target
	_, err = execute(t,
		"--trace-dir="+traceDir,
		"--targets-config="+targets,
		"--burst-lengths=8,16,32",
		"--contention-levels=3",
	)
	assert.Error(t, err)

	_, err = execute(t, "--trace-dir="+filepath.Join(traceDir, "missing"), "--targets-config="+targets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	_, err = execute(t, "--contention-levels=0")
	assert.Error(t, err)

	_, err = execute(t, "extra")
	assert.Error(t, err)
}
