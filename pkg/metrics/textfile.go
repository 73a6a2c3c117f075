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
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// TextfileMetricsEmitter keeps metrics in a private prometheus registry and
// writes them out in the text exposition format, to be picked up by the
// node exporter textfile collector or archived next to a report.
type TextfileMetricsEmitter struct {
	mtx       sync.Mutex
	namespace string
	registry  *prometheus.Registry

	gauges   map[string]*prometheus.GaugeVec
	counters map[string]*prometheus.CounterVec
	labels   map[string][]string
}

var _ MetricEmitter = &TextfileMetricsEmitter{}

func NewTextfileMetricsEmitter(namespace string) *TextfileMetricsEmitter {
	return &TextfileMetricsEmitter{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
		gauges:    make(map[string]*prometheus.GaugeVec),
		counters:  make(map[string]*prometheus.CounterVec),
		labels:    make(map[string][]string),
	}
}

func (p *TextfileMetricsEmitter) StoreInt64(key string, val int64, emitType MetricTypeName, tags ...MetricTag) error {
	return p.StoreFloat64(key, float64(val), emitType, tags...)
}

func (p *TextfileMetricsEmitter) StoreFloat64(key string, val float64, emitType MetricTypeName, tags ...MetricTag) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	names, values := splitTags(tags)
	if known, ok := p.labels[key]; ok && !equalNames(known, names) {
		return errors.Errorf("metric %s emitted with labels %v, registered with %v", key, names, known)
	}

	switch emitType {
	case MetricTypeNameRaw:
		vec, ok := p.gauges[key]
		if !ok {
			vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: p.namespace, Name: key, Help: key}, names)
			if err := p.registry.Register(vec); err != nil {
				return errors.Wrapf(err, "register gauge %s", key)
			}
			p.gauges[key] = vec
			p.labels[key] = names
		}
		vec.WithLabelValues(values...).Set(val)
	case MetricTypeNameCount:
		vec, ok := p.counters[key]
		if !ok {
			vec = prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: p.namespace, Name: key, Help: key}, names)
			if err := p.registry.Register(vec); err != nil {
				return errors.Wrapf(err, "register counter %s", key)
			}
			p.counters[key] = vec
			p.labels[key] = names
		}
		if val < 0 {
			return errors.Errorf("counter %s cannot decrease by %v", key, val)
		}
		vec.WithLabelValues(values...).Add(val)
	default:
		return errors.Errorf("unsupported metric type %q", emitType)
	}
	return nil
}

func (p *TextfileMetricsEmitter) WithTags(unit string, commonTags ...MetricTag) MetricEmitter {
	newMetricTagWrapper := &MetricTagWrapper{MetricEmitter: p}
	return newMetricTagWrapper.WithTags(unit, commonTags...)
}

// Gatherer exposes the registry, e.g. for tests.
func (p *TextfileMetricsEmitter) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteTextfile atomically writes every metric to path.
func (p *TextfileMetricsEmitter) WriteTextfile(path string) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return prometheus.WriteToTextfile(path, p.registry)
}

func splitTags(tags []MetricTag) ([]string, []string) {
	sorted := append([]MetricTag(nil), tags...)
	sortTags(sorted)

	names := make([]string, 0, len(sorted))
	values := make([]string, 0, len(sorted))
	for _, tag := range sorted {
		names = append(names, tag.Key)
		values = append(values, tag.Val)
	}
	return names, values
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
