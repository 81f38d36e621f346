// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsBootstrap holds Prometheus metrics for the bootstrap steps.
type metricsBootstrap struct {
	once sync.Once

	docsInserted   *prometheus.CounterVec
	indexesCreated *prometheus.CounterVec
	indexesFailed  prometheus.Counter
	vectorSkipped  prometheus.Counter

	seedDuration  prometheus.Histogram
	indexDuration prometheus.Histogram
	runDuration   prometheus.Histogram
}

var bsMetrics metricsBootstrap

func (m *metricsBootstrap) init() {
	m.once.Do(func() {
		m.docsInserted = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "docseed_documents_inserted_total", Help: "Seed documents inserted"}, []string{"collection"})
		m.indexesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "docseed_indexes_created_total", Help: "Indexes created"}, []string{"kind"})
		m.indexesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "docseed_indexes_failed_total", Help: "Standard index creations that failed"})
		m.vectorSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "docseed_vector_index_skipped_total", Help: "Vector index creations skipped after an error"})

		buckets := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.seedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "docseed_seed_seconds", Help: "Duration of the seed step", Buckets: buckets})
		m.indexDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "docseed_index_seconds", Help: "Duration of index creation", Buckets: buckets})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "docseed_run_seconds", Help: "Duration of a full run", Buckets: buckets})

		prometheus.MustRegister(
			m.docsInserted, m.indexesCreated, m.indexesFailed, m.vectorSkipped,
			m.seedDuration, m.indexDuration, m.runDuration,
		)
	})
}

func recordInserted(collection string, n int) {
	bsMetrics.init()
	bsMetrics.docsInserted.WithLabelValues(collection).Add(float64(n))
}
