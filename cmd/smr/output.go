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

package main

import (
	"io"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/recommender"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
)

// parseWeighted reads arguments of the form "name" or "name=weight". A bare
// name weighs 1 and repeated names add up.
func parseWeighted(args []string) (map[string]float64, error) {
	weighted := make(map[string]float64, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, base.InvalidArgumentf("empty name in %q", arg)
		}
		w := 1.0
		if found {
			var err error
			if w, err = strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
				return nil, base.InvalidArgumentf("weight of %q", name)
			}
		}
		weighted[name] += w
	}
	return weighted, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 6, 64)
}

func printScores(w io.Writer, header string, scores []recommender.Score) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", header, "Score"})
	for i, score := range scores {
		if err := table.Append([]string{strconv.Itoa(i + 1), score.Id, formatScore(score.Score)}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func printTagScores(w io.Writer, scores []recommender.TagScore) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Tag", "Tag Type", "Score"})
	for i, score := range scores {
		if err := table.Append([]string{strconv.Itoa(i + 1), score.Tag, score.TagType, formatScore(score.Score)}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func printItems(w io.Writer, items mapset.Set[string]) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Item"})
	sorted := items.ToSlice()
	sort.Strings(sorted)
	for _, item := range sorted {
		if err := table.Append([]string{item}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func printSummary(w io.Writer, r *recommender.Recommender) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Tag Type", "Tags", "Weight"})
	weights := r.TagTypeWeights()
	for _, tagType := range r.TagTypes() {
		m, err := r.Matrix(tagType)
		if err != nil {
			return errors.Trace(err)
		}
		if err = table.Append([]string{tagType, strconv.Itoa(m.ColumnsCount()), formatScore(weights[tagType])}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
