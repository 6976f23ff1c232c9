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
	"github.com/juju/errors"
)

// Kinds of errors raised by matrices and recommenders. Each kind also satisfies
// the closest juju error type, so callers may test either one with errors.Is.
const (
	ErrDimensionMismatch        = errors.ConstError("dimension mismatch")
	ErrUnknownName              = errors.ConstError("unknown name")
	ErrUnknownTag               = errors.ConstError("unknown tag")
	ErrInvalidArgument          = errors.ConstError("invalid argument")
	ErrIncompatibleRecommenders = errors.ConstError("incompatible recommenders")
)

// DimensionMismatchf reports a name list or shape whose cardinality does not fit.
func DimensionMismatchf(format string, args ...any) error {
	return errors.WithType(errors.NotValidf(format, args...), ErrDimensionMismatch)
}

// UnknownNamef reports a row or column name lookup miss.
func UnknownNamef(format string, args ...any) error {
	return errors.WithType(errors.NotFoundf(format, args...), ErrUnknownName)
}

// UnknownTagf reports a tag that no tag type of a recommender knows.
func UnknownTagf(format string, args ...any) error {
	return errors.WithType(errors.NotFoundf(format, args...), ErrUnknownTag)
}

// InvalidArgumentf reports a malformed table or column specification.
func InvalidArgumentf(format string, args ...any) error {
	return errors.WithType(errors.NotValidf(format, args...), ErrInvalidArgument)
}

// IncompatibleRecommendersf reports conflicting row universes or tag types.
func IncompatibleRecommendersf(format string, args ...any) error {
	return errors.WithType(errors.NotSupportedf(format, args...), ErrIncompatibleRecommenders)
}
