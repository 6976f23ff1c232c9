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

package matrix

import (
	"strconv"

	"github.com/samber/lo"
)

// Names maps between row (or column) names and positions. Lookups of a repeated
// name resolve to its first position. Names are never modified after creation,
// so matrices share them freely.
type Names struct {
	index map[string]int
	names []string
}

func NewNames(names []string) *Names {
	n := &Names{
		index: make(map[string]int, len(names)),
		names: append([]string(nil), names...),
	}
	for i, name := range names {
		if _, exist := n.index[name]; !exist {
			n.index[name] = i
		}
	}
	return n
}

// DefaultNames returns "0", "1", ..., strconv.Itoa(n-1).
func DefaultNames(n int) []string {
	return lo.Times(n, strconv.Itoa)
}

func (n *Names) Len() int {
	return len(n.names)
}

// Index returns the position of a name.
func (n *Names) Index(name string) (int, bool) {
	i, exist := n.index[name]
	return i, exist
}

func (n *Names) Name(i int) string {
	return n.names[i]
}

// Slice returns a copy of all names in position order.
func (n *Names) Slice() []string {
	return append([]string(nil), n.names...)
}

// Unique returns true if no name repeats.
func (n *Names) Unique() bool {
	return len(n.index) == len(n.names)
}

// Contains returns true if every given name is present.
func (n *Names) Contains(names ...string) bool {
	for _, name := range names {
		if _, exist := n.index[name]; !exist {
			return false
		}
	}
	return true
}

func (n *Names) equal(other *Names) bool {
	if n.Len() != other.Len() {
		return false
	}
	for i := range n.names {
		if n.names[i] != other.names[i] {
			return false
		}
	}
	return true
}
