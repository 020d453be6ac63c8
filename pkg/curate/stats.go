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

import "time"

// Status is the terminal state of a curation run.
type Status string

const (
	// StatusRunning is the state while the pipeline is mid-run.
	StatusRunning Status = "running"

	// StatusSuccess means every discovered file was processed.
	StatusSuccess Status = "success"

	// StatusPartial means at least one file failed but at least one
	// succeeded; everything that could be collected was collected.
	StatusPartial Status = "partial"

	// StatusError means the run produced nothing usable: every file
	// failed, or storage gave out even through the fallback.
	StatusError Status = "error"

	// StatusCancelled means the run was stopped on request; accepted
	// units up to that point were flushed.
	StatusCancelled Status = "cancelled"
)

// RunStats summarizes one curation run.
type RunStats struct {
	// FilesProcessed is the number of source files successfully parsed
	// and scanned.
	FilesProcessed int `json:"files_processed"`

	// FilesFailed is the number of files skipped after a read or parse
	// failure.
	FilesFailed int `json:"files_failed"`

	// UnitsExtracted is the total number of code units found, before any
	// filtering.
	UnitsExtracted int `json:"units_extracted"`

	// UnitsAccepted is the number of units that cleared quality and
	// dedup and entered a batch.
	UnitsAccepted int `json:"units_accepted"`

	// QualityRejected is the number of units dropped by the quality
	// filter (including unnamed and empty-bodied units).
	QualityRejected int `json:"quality_rejected"`

	// DuplicatesSkipped is the number of units dropped as already seen.
	DuplicatesSkipped int `json:"duplicates_skipped"`

	// BatchesFlushed is the number of batch files written, fallback
	// writes included.
	BatchesFlushed int `json:"batches_flushed"`

	Status Status `json:"status"`

	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}
