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
	"strings"

	"github.com/gorse-io/smr/base"
	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/config"
	"github.com/gorse-io/smr/dataset"
	"github.com/gorse-io/smr/matrix"
	"github.com/gorse-io/smr/recommender"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sourceOptions describe how a csv file maps to tag types.
type sourceOptions struct {
	ItemColumn    string
	Columns       []string
	LongForm      bool
	TagTypeColumn string
	TagColumn     string
	WeightColumn  string
}

// buildRecommender creates a recommender from a table following the
// configuration: cross tabulation, term weights, optional latent semantic
// analysis and tag type weights, in this order.
func buildRecommender(table *dataset.Table, source sourceOptions, conf *config.Config) (*recommender.Recommender, error) {
	aggregation, err := matrix.ParseAggregation(conf.Recommender.Aggregation)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var r *recommender.Recommender
	if source.LongForm {
		r, err = recommender.NewFromLongForm(table, recommender.LongFormOptions{
			ItemColumn:               source.ItemColumn,
			TagTypeColumn:            source.TagTypeColumn,
			TagColumn:                source.TagColumn,
			WeightColumn:             source.WeightColumn,
			AddTagTypesToColumnNames: conf.Recommender.AddTagTypesToColumnNames,
			TagValueSeparator:        conf.Recommender.TagValueSeparator,
			Aggregation:              aggregation,
		})
	} else {
		columns := source.Columns
		if len(columns) == 0 {
			columns = lo.Without(table.Columns(), source.ItemColumn)
			if conf.LSA.Enable {
				columns = lo.Without(columns, conf.LSA.TextColumn)
			}
		}
		r, err = recommender.NewFromWideForm(table, source.ItemColumn, recommender.WideFormOptions{
			Columns:                  columns,
			AddTagTypesToColumnNames: conf.Recommender.AddTagTypesToColumnNames,
			TagValueSeparator:        conf.Recommender.TagValueSeparator,
			Aggregation:              aggregation,
		})
	}
	if err != nil {
		return nil, errors.Trace(err)
	}

	functions, err := conf.Recommender.TermWeightFunctions()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !functions.IsIdentity() {
		if r, err = r.ApplyTermWeightFunctions(functions.Global, functions.Local, functions.Normalizer); err != nil {
			return nil, errors.Trace(err)
		}
	}

	if conf.LSA.Enable {
		documents, err := documentsOf(table, source.ItemColumn, conf.LSA.TextColumn)
		if err != nil {
			return nil, errors.Trace(err)
		}
		analyzer, err := conf.LSA.Analyzer(functions)
		if err != nil {
			return nil, errors.Trace(err)
		}
		model, err := analyzer.Fit(documents)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fit latent semantic analysis")
		}
		log.Logger().Info("fit latent semantic analysis",
			zap.Int("documents", len(documents)),
			zap.Int("terms", len(model.Terms())),
			zap.Int("topics", model.NumTopics()))
		if r, err = model.Endow(r); err != nil {
			return nil, errors.Trace(err)
		}
	}

	if weights := conf.Recommender.WeightsOf(r.TagTypes()); len(weights) > 0 {
		if r, err = r.SetTagTypeWeights(weights); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return r, nil
}

// documentsOf joins the texts of every item.
func documentsOf(table *dataset.Table, itemColumn, textColumn string) (map[string]string, error) {
	if !table.HasColumn(textColumn) {
		return nil, base.InvalidArgumentf("text column %q", textColumn)
	}
	items, err := table.Column(itemColumn)
	if err != nil {
		return nil, errors.Trace(err)
	}
	texts, err := table.Column(textColumn)
	if err != nil {
		return nil, errors.Trace(err)
	}
	documents := make(map[string]string, len(items))
	for i, item := range items {
		if strings.TrimSpace(texts[i]) == "" {
			continue
		}
		if document, exist := documents[item]; exist {
			documents[item] = document + " " + texts[i]
		} else {
			documents[item] = texts[i]
		}
	}
	return documents, nil
}

var buildCommand = &cobra.Command{
	Use:   "build NAME",
	Short: "Build a recommender from a csv file and save it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("csv")
		sep, _ := cmd.Flags().GetString("sep")
		var source sourceOptions
		source.ItemColumn, _ = cmd.Flags().GetString("item-column")
		source.Columns, _ = cmd.Flags().GetStringSlice("columns")
		source.LongForm, _ = cmd.Flags().GetBool("long-form")
		source.TagTypeColumn, _ = cmd.Flags().GetString("tag-type-column")
		source.TagColumn, _ = cmd.Flags().GetString("tag-column")
		source.WeightColumn, _ = cmd.Flags().GetString("weight-column")

		table, err := dataset.LoadCSV(path, sep)
		if err != nil {
			return errors.Trace(err)
		}
		r, err := buildRecommender(table, source, settings.Config)
		if err != nil {
			return errors.Trace(err)
		}
		if err = settings.Store.Save(cmd.Context(), args[0], r); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("save recommender",
			zap.String("name", args[0]),
			zap.Int("items", len(r.Items())),
			zap.Strings("tag_types", r.TagTypes()))
		return printSummary(cmd.OutOrStdout(), r)
	},
}

func init() {
	buildCommand.Flags().String("csv", "", "csv file of items and tags")
	buildCommand.Flags().String("sep", ",", "field separator of the csv file")
	buildCommand.Flags().String("item-column", "id", "column of item names")
	buildCommand.Flags().StringSlice("columns", nil, "tag type columns of a wide form table (default all but the item column)")
	buildCommand.Flags().Bool("long-form", false, "read (item, tag type, tag, weight) rows")
	buildCommand.Flags().String("tag-type-column", "tag_type", "column of tag types in long form")
	buildCommand.Flags().String("tag-column", "tag", "column of tags in long form")
	buildCommand.Flags().String("weight-column", "", "column of weights in long form (default 1 per row)")
	_ = buildCommand.MarkFlagRequired("csv")
	rootCommand.AddCommand(buildCommand)
}
