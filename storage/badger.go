// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/juju/errors"
)

const badgerKeyPrefix = "snapshot/"

// Badger keeps snapshots in an embedded badger database.
type Badger struct {
	db *badger.DB
}

// NewBadger opens a badger database in dir. An empty dir keeps the database
// in memory.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+key), value)
	})
}

func (b *Badger) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.NotFoundf("snapshot %q", key)
		} else if err != nil {
			return errors.Trace(err)
		}
		value, err = item.ValueCopy(nil)
		return errors.Trace(err)
	})
	return value, err
}

func (b *Badger) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return keys, errors.Trace(err)
}

func (b *Badger) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		k := []byte(badgerKeyPrefix + key)
		if _, err := txn.Get(k); errors.Is(err, badger.ErrKeyNotFound) {
			return errors.NotFoundf("snapshot %q", key)
		} else if err != nil {
			return errors.Trace(err)
		}
		return txn.Delete(k)
	})
}

func (b *Badger) Close() error {
	return b.db.Close()
}
