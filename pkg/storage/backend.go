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

package storage

import (
	"context"

	"github.com/kraklabs/codecorpus/pkg/extract"
)

// Backend is the interface that all batch storage backends must implement.
// Keys are flat strings; a backend may map them to files, object names, or
// table rows, but the same key always addresses the same batch.
type Backend interface {
	// Connect prepares the backend for writes (creates directories, opens
	// connections). Idempotent.
	Connect(ctx context.Context) error

	// WriteBatch persists one batch of accepted units under key. Writes
	// are all-or-nothing: a failed write must not leave a partial batch
	// readable under the key.
	WriteBatch(ctx context.Context, key string, units []extract.CodeUnit) error

	// ListKeys returns the keys of all stored batches with the given
	// prefix, sorted.
	ListKeys(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the backend.
	Close() error
}
