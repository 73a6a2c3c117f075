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
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/kubewharf/katalyst-membound/cmd/katalyst-membound/app/options"
	"github.com/kubewharf/katalyst-membound/pkg/config"
	"github.com/kubewharf/katalyst-membound/pkg/consts"
	"github.com/kubewharf/katalyst-membound/pkg/measurement"
	"github.com/kubewharf/katalyst-membound/pkg/metrics"
	"github.com/kubewharf/katalyst-membound/pkg/report"
	"github.com/kubewharf/katalyst-membound/pkg/util/general"
)

// ErrBoundViolated is returned when a measurement exceeds its bound and
// the run is configured to fail on it.
var ErrBoundViolated = errors.New("measured latency exceeds the computed bound")

// NewMemBoundCommand creates a *cobra.Command object with default parameters
func NewMemBoundCommand() *cobra.Command {
	opt := options.NewOptions()

	cmd := &cobra.Command{
		Use: consts.KatalystComponentMemBound,
		Long: `katalyst-membound computes worst-case latency bounds of memory accesses crossing the
crossbar into the scratchpad or the last-level cache in front of HyperBus memory, and
checks them against the latencies recorded in isolation and interference traces.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opt, cmd.OutOrStdout())
		},
		Args: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		},
	}

	fss := &cliflag.NamedFlagSets{}
	opt.AddFlags(fss)
	fs := cmd.Flags()
	for _, f := range fss.FlagSets {
		fs.AddFlagSet(f)
	}
	cliflag.SetUsageAndHelpFunc(cmd, *fss, 0)

	return cmd
}

// Run the bound analysis once and write every configured artifact.
func Run(opt *options.Options, out io.Writer) error {
	conf, err := opt.Config()
	if err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	general.Infof("analyzing %d targets over burst lengths %v and contention levels %v",
		len(conf.Targets), conf.BurstLengths, conf.ContentionLevels)

	if !general.IsPathExists(conf.Naming.Dir) {
		return errors.Errorf("trace dir %s does not exist", conf.Naming.Dir)
	}

	m, err := measurement.NewAggregator(conf.BoundConfiguration).Aggregate()
	if err != nil {
		return err
	}

	r, err := report.Build(conf.BoundConfiguration, conf.Calculator(), m)
	if err != nil {
		return err
	}
	general.Infof("built report %s", r.RunID)

	if err := writeArtifacts(conf, r, out); err != nil {
		return err
	}

	violations := r.Violations()
	for _, v := range violations {
		general.Warningf("bound violated: %v", v)
	}
	if len(violations) > 0 && conf.FailOnViolation {
		return errors.Wrapf(ErrBoundViolated, "%d of the comparisons", len(violations))
	}
	return nil
}

func writeArtifacts(conf *config.Configuration, r *report.Report, out io.Writer) error {
	if conf.PrintTable {
		if err := report.WriteTable(out, r); err != nil {
			return errors.Wrap(err, "write table")
		}
	}

	if conf.ReportFile == "" && conf.MetricsTextfile == "" && len(conf.ChartFormats) == 0 {
		return nil
	}
	if err := general.EnsureDirectory(conf.OutputDir); err != nil {
		return errors.Wrapf(err, "create output dir %s", conf.OutputDir)
	}

	if conf.ReportFile != "" {
		path := filepath.Join(conf.OutputDir, conf.ReportFile)
		if err := report.WriteYAML(path, r); err != nil {
			return err
		}
		general.Infof("wrote report %s", path)
	}

	if conf.MetricsTextfile != "" {
		emitter := metrics.NewTextfileMetricsEmitter(consts.MetricsNamespace)
		if err := report.Emit(emitter, r); err != nil {
			return errors.Wrap(err, "emit metrics")
		}
		path := filepath.Join(conf.OutputDir, conf.MetricsTextfile)
		if err := emitter.WriteTextfile(path); err != nil {
			return errors.Wrapf(err, "write metrics textfile %s", path)
		}
		general.Infof("wrote metrics %s", path)
	}

	if len(conf.ChartFormats) > 0 {
		written, err := report.RenderCharts(conf.OutputDir, r, conf.ChartFormats)
		if err != nil {
			return errors.Wrap(err, "render charts")
		}
		general.Infof("wrote charts %v", written)
	}
	return nil
}
