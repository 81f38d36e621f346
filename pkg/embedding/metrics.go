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

package embedding

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsEmbedding struct {
	once sync.Once

	computed prometheus.Counter
	errors   prometheus.Counter
	retries  prometheus.Counter

	embedDuration prometheus.Histogram
	runDuration   prometheus.Histogram
}

var embMetrics metricsEmbedding

func (m *metricsEmbedding) init() {
	m.once.Do(func() {
		m.computed = prometheus.NewCounter(prometheus.CounterOpts{Name: "docseed_embeddings_computed_total", Help: "Plot embeddings computed and stored"})
		m.errors = prometheus.NewCounter(prometheus.CounterOpts{Name: "docseed_embeddings_errors_total", Help: "Movies skipped after a provider error"})
		m.retries = prometheus.NewCounter(prometheus.CounterOpts{Name: "docseed_embeddings_retries_total", Help: "Provider call retries"})

		m.embedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docseed_embed_seconds",
			Help:    "Duration of one provider call including retries",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docseed_embedding_run_seconds",
			Help:    "Duration of an embedding generation run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		})

		prometheus.MustRegister(m.computed, m.errors, m.retries, m.embedDuration, m.runDuration)
	})
}
