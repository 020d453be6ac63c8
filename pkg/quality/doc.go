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

// Package quality filters extracted code units before they enter the
// corpus.
//
// Each unit is scored 0-100 against a battery of checks. Hard checks
// reject on their own: size floors, banned markers (TODO, FIXME,
// NotImplemented), failure to re-parse as a standalone fragment, and
// boilerplate bodies that do no work. Soft checks only subtract from the
// score, so a well-documented function that narrowly misses the keyword
// density or content ratio can still clear the acceptance threshold.
//
// The verdict records the names of failed checks so rejected units can be
// audited after a run.
package quality
