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

// Package dedup drops code units that are already in the corpus.
//
// Content mode hashes whitespace-normalized text; structure mode hashes a
// canonical serialization of the unit's syntax tree with identifiers and
// literals elided, catching renamed copies at the cost of one extra parse
// per unit. Keys are namespaced per language either way.
//
// The seen set persists across runs in a bbolt file under the project
// state directory, so incremental curation of a growing tree does not
// re-admit units collected earlier.
package dedup
