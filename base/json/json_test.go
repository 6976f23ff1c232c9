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

package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape struct {
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Names   []string `json:"names"`
}

func TestUnmarshalEmpty(t *testing.T) {
	s := &shape{Rows: 1}
	require.NoError(t, Unmarshal(nil, &s))
	assert.Nil(t, s)
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(shape{Rows: 2, Columns: 3, Names: []string{"a"}}))
	var s shape
	require.NoError(t, NewDecoder(&buf).Decode(&s))
	assert.Equal(t, shape{Rows: 2, Columns: 3, Names: []string{"a"}}, s)

	data, err := Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":2,"columns":3,"names":["a"]}`, string(data))
}
