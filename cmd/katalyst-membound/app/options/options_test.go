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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/kubewharf/katalyst-membound/pkg/bound"
	"github.com/kubewharf/katalyst-membound/pkg/config/generic"
)

func parse(t *testing.T, opt *Options, args ...string) {
	t.Helper()
	fss := &cliflag.NamedFlagSets{}
	opt.AddFlags(fss)

	commandLine := pflag.NewFlagSet("test", pflag.ContinueOnError)
	for _, f := range fss.FlagSets {
		commandLine.AddFlagSet(f)
	}
	require.NoError(t, commandLine.Parse(args))
}

func TestOptionsDefaults(t *testing.T) {
	opt := NewOptions()
	parse(t, opt)

	conf, err := opt.Config()
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, []int{8, 16, 32, 48, 64, 128, 192, 256}, conf.BurstLengths)
	assert.Equal(t, 16, conf.InterferenceBurstLength)
	assert.Equal(t, []int{3, 4, 5, 8}, conf.ContentionLevels)
	assert.Len(t, conf.Targets, 5)
	assert.Equal(t, ',', conf.Schema.Delimiter)
	assert.Equal(t, []string{generic.ChartFormatPDF, generic.ChartFormatSVG}, conf.ChartFormats)
	assert.Equal(t, "report.yaml", conf.ReportFile)
	assert.True(t, conf.FailOnViolation)
}

func TestOptionsFlags(t *testing.T) {
	targets := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(targets, []byte(`
targets:
- name: SPM READ
  memory: spm
  direction: read
  isolationRange: {min: 0, max: 111}
`), 0o644))

	opt := NewOptions()
	parse(t, opt,
		"--trace-dir=/traces",
		"--burst-lengths=8,16",
		"--contention-levels=3,5",
		"--interference-burst-length=8",
		"--max-outstanding=8",
		"--trace-delimiter=;",
		"--trace-id-column=id",
		"--targets-config="+targets,
		"--charts=svg",
		"--report-file=",
		"--fail-on-violation=false",
	)

	conf, err := opt.Config()
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, "/traces/traces_rw_0-5-7.dat", conf.Naming.InterferencePath(5, conf.InterferenceBurstLength))
	assert.Equal(t, []int{8, 16}, conf.BurstLengths)
	assert.Equal(t, []int{3, 5}, conf.ContentionLevels)
	assert.Equal(t, 8, conf.Calculator().MaxOutstanding)
	assert.Equal(t, ';', conf.Schema.Delimiter)
	assert.Equal(t, "id", conf.Schema.IDColumn)
	require.Len(t, conf.Targets, 1)
	assert.Equal(t, bound.MemoryKindSPM, conf.Targets[0].Scenario.Kind)
	assert.Equal(t, []string{generic.ChartFormatSVG}, conf.ChartFormats)
	assert.Empty(t, conf.ReportFile)
	assert.False(t, conf.FailOnViolation)
}

func TestOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "long delimiter", args: []string{"--trace-delimiter=;;"}},
		{name: "empty delimiter", args: []string{"--trace-delimiter="}},
		{name: "missing targets config", args: []string{"--targets-config=/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := NewOptions()
			parse(t, opt, tt.args...)
			_, err := opt.Config()
			assert.Error(t, err)
		})
	}

	opt := NewOptions()
	parse(t, opt, "--charts=png", "--burst-lengths=8,8")
	conf, err := opt.Config()
	require.NoError(t, err)
	assert.Error(t, conf.Validate())
}

func TestParseDelimiter(t *testing.T) {
	t.Parallel()

	r, err := parseDelimiter(`\t`)
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	r, err = parseDelimiter("|")
	require.NoError(t, err)
	assert.Equal(t, '|', r)
}
