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

package config

import (
	"github.com/gorse-io/smr/storage"
	"github.com/juju/errors"
)

// Settings are the configuration and the snapshot store opened from it.
type Settings struct {
	Config *Config
	Store  storage.Store
}

func NewSettings(config *Config) (*Settings, error) {
	store, err := storage.Open(config.Store.Path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Settings{Config: config, Store: store}, nil
}

func (s *Settings) Close() error {
	return s.Store.Close()
}
