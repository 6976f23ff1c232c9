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
	"os"
	"strconv"

	"github.com/gorse-io/smr/base/json"
	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/recommender"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listCommand = &cobra.Command{
	Use:   "list",
	Short: "List saved recommenders.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := settings.Store.List(cmd.Context())
		if err != nil {
			return errors.Trace(err)
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header([]string{"Name"})
		for _, name := range names {
			if err = table.Append([]string{name}); err != nil {
				return errors.Trace(err)
			}
		}
		return errors.Trace(table.Render())
	},
}

var showCommand = &cobra.Command{
	Use:   "show NAME",
	Short: "Show tag types of a saved recommender, or the matrix of one tag type.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRecommender(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		tagType, _ := cmd.Flags().GetString("matrix")
		if tagType == "" {
			return printSummary(cmd.OutOrStdout(), r)
		}
		m, err := r.Matrix(tagType)
		if err != nil {
			return errors.Trace(err)
		}
		return errors.Trace(m.Print(cmd.OutOrStdout()))
	},
}

var deleteCommand = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved recommender.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.Store.Delete(cmd.Context(), args[0]); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("delete recommender", zap.String("name", args[0]))
		return nil
	},
}

var joinCommand = &cobra.Command{
	Use:   "join NAME LEFT RIGHT",
	Short: "Join two saved recommenders with disjoint tag types and save the result.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("type")
		joinType, err := recommender.ParseJoinType(name)
		if err != nil {
			return errors.Trace(err)
		}
		left, err := loadRecommender(cmd, args[1])
		if err != nil {
			return errors.Trace(err)
		}
		right, err := loadRecommender(cmd, args[2])
		if err != nil {
			return errors.Trace(err)
		}
		joined, err := left.Join(right, joinType)
		if err != nil {
			return errors.Trace(err)
		}
		if err = settings.Store.Save(cmd.Context(), args[0], joined); err != nil {
			return errors.Trace(err)
		}
		return printSummary(cmd.OutOrStdout(), joined)
	},
}

var metadataCommand = &cobra.Command{
	Use:   "metadata NAME SOURCE TAG_TYPE",
	Short: "Turn the tags of a tag type into items and save the result.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tagTypes, _ := cmd.Flags().GetStringSlice("tag-types")
		source, err := loadRecommender(cmd, args[1])
		if err != nil {
			return errors.Trace(err)
		}
		r, err := source.ToMetadataRecommender(args[2], tagTypes...)
		if err != nil {
			return errors.Trace(err)
		}
		if err = settings.Store.Save(cmd.Context(), args[0], r); err != nil {
			return errors.Trace(err)
		}
		return printSummary(cmd.OutOrStdout(), r)
	},
}

var exportCommand = &cobra.Command{
	Use:   "export NAME [FILE]",
	Short: "Write a saved recommender as JSON or long form CSV to a file or stdout.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRecommender(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		w := cmd.OutOrStdout()
		if len(args) > 1 {
			file, err := os.Create(args[1])
			if err != nil {
				return errors.Trace(err)
			}
			defer file.Close()
			w = file
		}
		if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
			sep, _ := cmd.Flags().GetString("sep")
			return errors.Trace(writeLongForm(w, r, sep))
		}
		return errors.Trace(json.NewEncoder(w).Encode(r.ToDict()))
	},
}

// writeLongForm writes every non-zero cell as an (id, tag_type, tag, weight)
// row, which "build --long-form --weight-column weight" reads back. Items
// without tags and tag type weights are not written.
func writeLongForm(w io.Writer, r *recommender.Recommender, sep string) error {
	var records [][]string
	for _, tagType := range r.TagTypes() {
		m, err := r.Matrix(tagType)
		if err != nil {
			return errors.Trace(err)
		}
		items, tags := m.RowNames(), m.ColumnNames()
		m.DoNonZero(func(i, j int, v float64) {
			records = append(records, []string{items[i], tagType, tags[j], strconv.FormatFloat(v, 'g', -1, 64)})
		})
	}
	table, err := dataset.NewTable([]string{"id", "tag_type", "tag", "weight"}, records)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(dataset.WriteCSV(w, table, sep))
}

var importCommand = &cobra.Command{
	Use:   "import NAME [FILE]",
	Short: "Save a recommender read as JSON from a file or stdin.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var reader io.Reader = cmd.InOrStdin()
		if len(args) > 1 {
			file, err := os.Open(args[1])
			if err != nil {
				return errors.Trace(err)
			}
			defer file.Close()
			reader = file
		}
		r, err := decodeRecommender(reader)
		if err != nil {
			return errors.Trace(err)
		}
		if err = settings.Store.Save(cmd.Context(), args[0], r); err != nil {
			return errors.Trace(err)
		}
		return printSummary(cmd.OutOrStdout(), r)
	},
}

func decodeRecommender(reader io.Reader) (*recommender.Recommender, error) {
	var d recommender.Dict
	if err := json.NewDecoder(reader).Decode(&d); err != nil {
		return nil, errors.Annotate(err, "failed to decode recommender")
	}
	return recommender.FromDict(&d)
}

func init() {
	showCommand.Flags().String("matrix", "", "print the matrix of a tag type")
	exportCommand.Flags().Bool("csv", false, "write long form csv instead of json")
	exportCommand.Flags().String("sep", ",", "separator of the csv")
	joinCommand.Flags().String("type", string(recommender.OuterJoin), "join type: inner, outer or left")
	metadataCommand.Flags().StringSlice("tag-types", nil, "tag types of the metadata items (default all others)")
	rootCommand.AddCommand(listCommand, showCommand, deleteCommand, joinCommand, metadataCommand, exportCommand, importCommand)
}
