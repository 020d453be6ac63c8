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

package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketRecords = []byte("records")
	bucketMeta    = []byte("meta")
	keyMode       = []byte("mode")
)

// boltTimeout bounds the file-lock wait so a stale lock from a crashed run
// fails fast instead of hanging the CLI.
const boltTimeout = 5 * time.Second

// SaveCache persists the detector's seen set to a bolt file at path,
// replacing any previous contents. The detector mode is stored alongside
// so a later run with a different mode ignores the stale keys.
func (d *Detector) SaveCache(path string) error {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: boltTimeout})
	if err != nil {
		return fmt.Errorf("open dedup cache: %w", err)
	}
	defer db.Close()

	d.mu.Lock()
	records := make([]Record, 0, len(d.seen))
	for _, r := range d.seen {
		records = append(records, r)
	}
	d.mu.Unlock()

	err = db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketRecords) != nil {
			if err := tx.DeleteBucket(bucketRecords); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket(bucketRecords)
		if err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keyMode, []byte(d.mode)); err != nil {
			return err
		}
		for _, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(r.Hash), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write dedup cache: %w", err)
	}
	return nil
}

// LoadCache merges previously persisted keys into the detector and returns
// how many were loaded. A missing file is a fresh start, not an error. A
// cache written under a different mode is skipped: its keys cannot match
// anything this detector will compute.
//
// A corrupt or unreadable cache returns an error so the caller can log it
// and continue with an empty set; duplicates are then re-admitted rather
// than the run failing.
func (d *Detector) LoadCache(path string) (int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: boltTimeout, ReadOnly: true})
	if err != nil {
		return 0, fmt.Errorf("open dedup cache: %w", err)
	}
	defer db.Close()

	loaded := 0
	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("dedup cache has no meta bucket")
		}
		if mode := meta.Get(keyMode); string(mode) != string(d.mode) {
			return nil
		}

		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return nil
		}

		d.mu.Lock()
		defer d.mu.Unlock()
		return bucket.ForEach(func(k, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("record %q: %w", k, err)
			}
			d.seen[string(k)] = r
			loaded++
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("read dedup cache: %w", err)
	}
	return loaded, nil
}
