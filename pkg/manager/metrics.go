/*
Copyright AppsCode Inc. and Contributors

Licensed under the AppsCode Free Trial License 1.0.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://github.com/appscode/licenses/raw/1.0.0/AppsCode-Free-Trial-1.0.0.md

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package manager

import (
	"time"

	"stash.appscode.dev/ketchup/pkg/catalog"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records how a run went. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	discoveredTypes prometheus.Gauge
	fetchDuration   *prometheus.HistogramVec
	fetchErrors     *prometheus.CounterVec
	collected       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		discoveredTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ketchup_discovered_resource_types",
			Help: "Number of listable resource types served by the API server.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ketchup_fetch_duration_seconds",
			Help:    "Time taken to list all instances of one resource type.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"scope"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ketchup_fetch_errors_total",
			Help: "Resource types that could not be listed.",
		}, []string{"kind"}),
		collected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ketchup_resources_collected_total",
			Help: "Resource instances collected.",
		}, []string{"scope"}),
	}
	m.Registry.MustRegister(m.discoveredTypes, m.fetchDuration, m.fetchErrors, m.collected)
	return m
}

func (m *Metrics) observeDiscovery(c catalog.Catalog) {
	if m == nil {
		return
	}
	m.discoveredTypes.Set(float64(len(c)))
}

func (m *Metrics) observeFetch(rt catalog.ResourceType, took time.Duration, n int, err error) {
	if m == nil {
		return
	}
	scope := string(rt.Scope)
	m.fetchDuration.WithLabelValues(scope).Observe(took.Seconds())
	if err != nil {
		m.fetchErrors.WithLabelValues(rt.QualifiedName()).Inc()
		return
	}
	m.collected.WithLabelValues(scope).Add(float64(n))
}

// WriteToTextfile writes the metrics in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	return errors.Wrapf(prometheus.WriteToTextfile(path, m.Registry), "failed to write metrics to %s", path)
}
