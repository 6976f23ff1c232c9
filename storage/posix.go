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
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
)

const posixExtension = ".json"

// POSIX keeps each snapshot in a JSON file of a directory.
type POSIX struct {
	dir string
}

// NewPOSIX creates dir if it does not exist.
func NewPOSIX(dir string) (*POSIX, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Trace(err)
	}
	return &POSIX{dir: dir}, nil
}

func (p *POSIX) path(key string) string {
	return filepath.Join(p.dir, key+posixExtension)
}

// Put writes a temporary file and renames it, so readers never see a partial
// snapshot.
func (p *POSIX) Put(_ context.Context, key string, value []byte) error {
	file, err := os.CreateTemp(p.dir, "."+key+"-*")
	if err != nil {
		return errors.Trace(err)
	}
	if _, err = file.Write(value); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return errors.Trace(err)
	}
	if err = file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(file.Name(), p.path(key)))
}

func (p *POSIX) Get(_ context.Context, key string) ([]byte, error) {
	value, err := os.ReadFile(p.path(key))
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("snapshot %q", key)
	}
	return value, errors.Trace(err)
}

func (p *POSIX) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && !strings.HasPrefix(name, ".") && strings.HasSuffix(name, posixExtension) {
			keys = append(keys, strings.TrimSuffix(name, posixExtension))
		}
	}
	return keys, nil
}

func (p *POSIX) Remove(_ context.Context, key string) error {
	err := os.Remove(p.path(key))
	if os.IsNotExist(err) {
		return errors.NotFoundf("snapshot %q", key)
	}
	return errors.Trace(err)
}

func (p *POSIX) Close() error {
	return nil
}
