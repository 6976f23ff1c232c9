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
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Print writes the matrix as a table. Rows and columns are listed in
// lexicographic order of their names and zeros are shown as ".".
func (m *SparseMatrix) Print(w io.Writer) error {
	rowOrder := lo.Range(m.rows)
	sort.SliceStable(rowOrder, func(a, b int) bool {
		return m.rowNames.Name(rowOrder[a]) < m.rowNames.Name(rowOrder[b])
	})
	colOrder := lo.Range(m.cols)
	sort.SliceStable(colOrder, func(a, b int) bool {
		return m.colNames.Name(colOrder[a]) < m.colNames.Name(colOrder[b])
	})
	dense := m.ToDense()

	table := tablewriter.NewWriter(w)
	header := append([]string{""}, lo.Map(colOrder, func(j int, _ int) string {
		return m.colNames.Name(j)
	})...)
	table.Header(header)
	for _, i := range rowOrder {
		row := make([]string, 0, m.cols+1)
		row = append(row, m.rowNames.Name(i))
		for _, j := range colOrder {
			if dense[i][j] == 0 {
				row = append(row, ".")
			} else {
				row = append(row, strconv.FormatFloat(dense[i][j], 'g', 6, 64))
			}
		}
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

// String renders the matrix with Print.
func (m *SparseMatrix) String() string {
	var builder strings.Builder
	if err := m.Print(&builder); err != nil {
		return err.Error()
	}
	return builder.String()
}
