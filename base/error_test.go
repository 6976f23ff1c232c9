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

package base

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := DimensionMismatchf("row names of length %d", 3)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorIs(t, err, errors.NotValid)
	assert.NotErrorIs(t, err, ErrUnknownName)

	err = UnknownTagf("tag %q", "male")
	assert.ErrorIs(t, err, ErrUnknownTag)
	assert.ErrorIs(t, err, errors.NotFound)
	assert.Contains(t, err.Error(), "male")

	err = UnknownNamef("row %q", "A")
	assert.ErrorIs(t, err, ErrUnknownName)
	assert.ErrorIs(t, err, errors.NotFound)

	err = errors.Trace(InvalidArgumentf("column %q", "sex"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = IncompatibleRecommendersf("tag type %q", "sex")
	assert.ErrorIs(t, err, ErrIncompatibleRecommenders)
	assert.ErrorIs(t, err, errors.NotSupported)
}
