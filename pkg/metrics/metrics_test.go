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

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextfileMetricsEmitter(t *testing.T) {
	t.Parallel()

	emitter := NewTextfileMetricsEmitter("membound")
	w := emitter.WithTags("isolation", MetricTag{Key: "target", Val: "SPM READ"})

	require.NoError(t, w.StoreInt64("bound_cycles", 35, MetricTypeNameRaw, MetricTag{Key: "burst", Val: "16"}))
	require.NoError(t, w.StoreFloat64("bound_cycles", 45, MetricTypeNameRaw, MetricTag{Key: "burst", Val: "32"}))
	require.NoError(t, w.StoreInt64("violations", 1, MetricTypeNameCount, MetricTag{Key: "burst", Val: "16"}))
	require.NoError(t, w.StoreInt64("violations", 2, MetricTypeNameCount, MetricTag{Key: "burst", Val: "16"}))

	count, err := testutil.GatherAndCount(emitter.Gatherer(), "membound_bound_cycles")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// label sets are fixed by the first emission
	assert.ErrorContains(t, emitter.StoreFloat64("bound_cycles", 1, MetricTypeNameRaw),
		"metric bound_cycles emitted with labels [], registered with [burst target unit]")
	assert.ErrorContains(t, w.StoreInt64("violations", -1, MetricTypeNameCount, MetricTag{Key: "burst", Val: "16"}),
		"counter violations cannot decrease")
	assert.ErrorContains(t, emitter.StoreFloat64("other", 1, MetricTypeName("histogram")),
		`unsupported metric type "histogram"`)

	// a name clashing with a registered collector is wrapped with the metric key
	clash := NewTextfileMetricsEmitter("")
	require.NoError(t, clash.registry.Register(prometheus.NewGauge(prometheus.GaugeOpts{Name: "violation", Help: "x"})))
	assert.ErrorContains(t, clash.StoreInt64("violation", 1, MetricTypeNameRaw), "register gauge violation")

	path := filepath.Join(t.TempDir(), "membound.prom")
	require.NoError(t, emitter.WriteTextfile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, `membound_bound_cycles{burst="16",target="SPM READ",unit="isolation"} 35`)
	assert.Contains(t, text, `membound_violations{burst="16",target="SPM READ",unit="isolation"} 3`)
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestMetricTagWrapper(t *testing.T) {
	t.Parallel()

	w := DummyMetrics{}.WithTags("report", MetricTag{Key: "run", Val: "a"})
	w2 := w.WithTags("report", MetricTag{Key: "run", Val: "b"}, MetricTag{Key: "mode", Val: "x"})

	wrapper := w.(*MetricTagWrapper)
	wrapper2 := w2.(*MetricTagWrapper)
	assert.Equal(t, []MetricTag{{Key: "run", Val: "a"}}, wrapper.commonTags)
	assert.Equal(t, []MetricTag{{Key: "run", Val: "b"}, {Key: "mode", Val: "x"}}, wrapper2.commonTags)
	assert.NoError(t, w2.StoreInt64("k", 1, MetricTypeNameRaw))

	assert.Equal(t, []MetricTag{{Key: "a", Val: "1"}, {Key: "b", Val: "2"}},
		ConvertMapToTags(map[string]string{"b": "2", "a": "1"}))
}
