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
	"errors"
	"sync/atomic"
)

// ErrForced is returned by Run when a second cancellation request aborts
// the run before the partial batch could be flushed.
var ErrForced = errors.New("curation forcibly terminated")

// Token carries cooperative cancellation requests into a running
// pipeline. The first request asks the run to stop cleanly: finish the
// unit in flight, flush the partial batch, report stats. A second request
// means stop now; the pipeline abandons the batch and returns ErrForced.
//
// Safe for concurrent use; the CLI's signal handler and the pipeline
// share one Token.
type Token struct {
	requests atomic.Int32
}

// NewToken creates an unrequested Token.
func NewToken() *Token {
	return &Token{}
}

// Request registers one cancellation request and returns the running
// total.
func (t *Token) Request() int {
	return int(t.requests.Add(1))
}

// Requested reports whether cancellation has been asked for at all.
func (t *Token) Requested() bool {
	return t.requests.Load() > 0
}

// Forced reports whether cancellation was requested more than once.
func (t *Token) Forced() bool {
	return t.requests.Load() > 1
}
