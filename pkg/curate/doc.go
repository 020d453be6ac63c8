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

// Package curate orchestrates a corpus curation run: discover source
// files, extract code units, score them, drop duplicates, and flush
// accepted units to storage in batches.
//
// A run degrades rather than dies: unreadable or unparseable files are
// logged and counted (the run ends "partial"), a corrupt duplicate cache
// starts empty, and a failing backend is retried and then redirected to a
// local fallback directory. Only when even the fallback fails does the
// run end in "error".
//
// Cancellation is cooperative through a Token shared with the caller's
// signal handler: one request finishes the file in flight and flushes the
// partial batch, a second abandons the batch and returns ErrForced.
package curate
