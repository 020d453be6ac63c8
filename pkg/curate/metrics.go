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

package curate

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsCurate holds Prometheus metrics for the curation pipeline.
type metricsCurate struct {
	once sync.Once

	filesProcessed prometheus.Counter
	filesFailed    prometheus.Counter

	unitsExtracted    prometheus.Counter
	unitsAccepted     prometheus.Counter
	qualityRejected   prometheus.Counter
	duplicatesSkipped prometheus.Counter

	batchesFlushed prometheus.Counter
	flushRetries   prometheus.Counter
	flushFallbacks prometheus.Counter

	fileDuration  prometheus.Histogram
	flushDuration prometheus.Histogram
	runDuration   prometheus.Histogram
}

var curMetrics metricsCurate

func (m *metricsCurate) init() {
	m.once.Do(func() {
		m.filesProcessed = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_files_processed_total", Help: "Source files parsed and scanned"})
		m.filesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_files_failed_total", Help: "Source files skipped after read or parse failure"})

		m.unitsExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_units_extracted_total", Help: "Code units extracted before filtering"})
		m.unitsAccepted = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_units_accepted_total", Help: "Code units accepted into batches"})
		m.qualityRejected = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_quality_rejected_total", Help: "Code units rejected by the quality filter"})
		m.duplicatesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_duplicates_skipped_total", Help: "Code units skipped as duplicates"})

		m.batchesFlushed = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_batches_flushed_total", Help: "Batch files written, fallback writes included"})
		m.flushRetries = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_flush_retries_total", Help: "Batch write retries after a storage failure"})
		m.flushFallbacks = prometheus.NewCounter(prometheus.CounterOpts{Name: "codecorpus_flush_fallbacks_total", Help: "Batches redirected to the local fallback directory"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.fileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codecorpus_file_seconds", Help: "Per-file processing duration", Buckets: buckets})
		m.flushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codecorpus_flush_seconds", Help: "Batch flush duration", Buckets: buckets})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codecorpus_run_seconds", Help: "Total curation run duration", Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600}})

		prometheus.MustRegister(
			m.filesProcessed, m.filesFailed,
			m.unitsExtracted, m.unitsAccepted, m.qualityRejected, m.duplicatesSkipped,
			m.batchesFlushed, m.flushRetries, m.flushFallbacks,
			m.fileDuration, m.flushDuration, m.runDuration,
		)
	})
}

func observeFile(d time.Duration, failed bool) {
	curMetrics.init()
	curMetrics.fileDuration.Observe(d.Seconds())
	if failed {
		curMetrics.filesFailed.Inc()
	} else {
		curMetrics.filesProcessed.Inc()
	}
}

func observeFlush(d time.Duration) {
	curMetrics.init()
	curMetrics.flushDuration.Observe(d.Seconds())
	curMetrics.batchesFlushed.Inc()
}
