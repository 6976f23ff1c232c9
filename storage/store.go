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

// Package storage keeps recommender snapshots in key value backends. A
// snapshot is the JSON encoding of the recommender dict.
package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/gorse-io/smr/base/json"
	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/recommender"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Store saves and loads named recommender snapshots.
type Store interface {
	Save(ctx context.Context, name string, r *recommender.Recommender) error
	// Load returns an errors.NotFound error if the snapshot does not exist.
	Load(ctx context.Context, name string) (*recommender.Recommender, error)
	// List returns snapshot names in ascending order.
	List(ctx context.Context) ([]string, error)
	// Delete returns an errors.NotFound error if the snapshot does not exist.
	Delete(ctx context.Context, name string) error
	Close() error
}

// Backend stores raw snapshot values by key. Get and Remove return
// errors.NotFound errors for missing keys.
type Backend interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Keys(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open a snapshot store. The scheme of path selects the backend:
//
//	badger://<dir>
//	sqlite://<file>
//	redis://<host>:<port>/<db> or rediss://...
//	file://<dir>
func Open(path string) (Store, error) {
	var (
		backend Backend
		err     error
	)
	switch {
	case strings.HasPrefix(path, BadgerPrefix):
		backend, err = NewBadger(path[len(BadgerPrefix):])
	case strings.HasPrefix(path, SQLitePrefix):
		backend, err = NewSQLite(path[len(SQLitePrefix):])
	case strings.HasPrefix(path, RedisPrefix), strings.HasPrefix(path, RedissPrefix):
		backend, err = NewRedis(path)
	case strings.HasPrefix(path, FilePrefix):
		backend, err = NewPOSIX(path[len(FilePrefix):])
	default:
		return nil, errors.NotSupportedf("snapshot store %s", log.RedactStorePath(path))
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Debug("open snapshot store", zap.String("path", log.RedactStorePath(path)))
	return NewStore(backend), nil
}

// NewStore creates a Store on top of a backend.
func NewStore(backend Backend) Store {
	return &store{backend: backend}
}

type store struct {
	backend Backend
}

func validateName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, "/\\") {
		return errors.NotValidf("snapshot name %q", name)
	}
	return nil
}

func (s *store) Save(ctx context.Context, name string, r *recommender.Recommender) error {
	if err := validateName(name); err != nil {
		return errors.Trace(err)
	}
	data, err := json.Marshal(r.ToDict())
	if err != nil {
		return errors.Trace(err)
	}
	if err = s.backend.Put(ctx, name, data); err != nil {
		return errors.Annotatef(err, "save snapshot %q", name)
	}
	log.Logger().Debug("save snapshot", zap.String("name", name), zap.Int("bytes", len(data)))
	return nil
}

func (s *store) Load(ctx context.Context, name string) (*recommender.Recommender, error) {
	if err := validateName(name); err != nil {
		return nil, errors.Trace(err)
	}
	data, err := s.backend.Get(ctx, name)
	if err != nil {
		return nil, errors.Annotatef(err, "load snapshot %q", name)
	}
	var d recommender.Dict
	if err = json.Unmarshal(data, &d); err != nil {
		return nil, errors.Trace(err)
	}
	r, err := recommender.FromDict(&d)
	if err != nil {
		return nil, errors.Annotatef(err, "restore snapshot %q", name)
	}
	return r, nil
}

func (s *store) List(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	keys = lo.Uniq(keys)
	sort.Strings(keys)
	return keys, nil
}

func (s *store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(s.backend.Remove(ctx, name))
}

func (s *store) Close() error {
	return s.backend.Close()
}
