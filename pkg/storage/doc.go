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

// Package storage persists curated batches.
//
// The Backend interface is the pipeline's only view of storage: connect,
// write a batch under a key, list keys, close. LocalBackend implements it
// on the filesystem, one JSON file per batch, written atomically via a
// temp file and rename so an interrupted run never leaves a torn batch
// behind.
//
// # Quick Start
//
//	backend := storage.NewLocalBackend(".codecorpus/batches")
//	if err := backend.Connect(ctx); err != nil {
//	    return err
//	}
//	defer backend.Close()
//
//	if err := backend.WriteBatch(ctx, "units-go-20250101T120000-0001.json", units); err != nil {
//	    return err
//	}
//
//	keys, err := backend.ListKeys(ctx, "units-")
//
// Remote object-store backends implement the same interface; nothing in
// the pipeline assumes a filesystem.
package storage
