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
	"database/sql"

	"github.com/juju/errors"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"
)

// SQLite keeps snapshots in the snapshots table of a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database file and creates the snapshots table.
func NewSQLite(dataSourceName string) (*SQLite, error) {
	dataSourceName, err := AppendURLParams(dataSourceName, []lo.Tuple2[string, string]{
		{"_pragma", "busy_timeout(10000)"},
		{"_pragma", "journal_mode(wal)"},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if _, err = db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
	name TEXT PRIMARY KEY,
	value BLOB
);`); err != nil {
		_ = db.Close()
		return nil, errors.Trace(err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO snapshots (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value
`, key, value)
	return errors.Trace(err)
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
SELECT value FROM snapshots WHERE name = ?
`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundf("snapshot %q", key)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	return value, nil
}

func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rs, err := s.db.QueryContext(ctx, `SELECT name FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rs.Close()
	var keys []string
	for rs.Next() {
		var key string
		if err = rs.Scan(&key); err != nil {
			return nil, errors.Trace(err)
		}
		keys = append(keys, key)
	}
	return keys, errors.Trace(rs.Err())
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, key)
	if err != nil {
		return errors.Trace(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Trace(err)
	}
	if affected == 0 {
		return errors.NotFoundf("snapshot %q", key)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
