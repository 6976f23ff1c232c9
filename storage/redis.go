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

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "smr:snapshot:"

// Redis keeps snapshots as plain string values.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the redis server of a redis:// or rediss:// URL.
func NewRedis(rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	return errors.Trace(r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err())
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFoundf("snapshot %q", key)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	return value, nil
}

func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	it := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for it.Next(ctx) {
		keys = append(keys, it.Val()[len(redisKeyPrefix):])
	}
	return keys, errors.Trace(it.Err())
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	deleted, err := r.client.Del(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return errors.Trace(err)
	}
	if deleted == 0 {
		return errors.NotFoundf("snapshot %q", key)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
