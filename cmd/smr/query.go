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
	"github.com/gorse-io/smr/lsa"
	"github.com/gorse-io/smr/recommender"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addQueryFlags(flagSet *pflag.FlagSet) {
	flagSet.IntP("n-recs", "n", 10, "number of results (zero or less returns all)")
	flagSet.Bool("normalize", false, "normalize scores")
	flagSet.Bool("ignore-unknown", false, "skip unknown tags and items instead of failing")
}

func queryOptions(flagSet *pflag.FlagSet) []recommender.QueryOption {
	n, _ := flagSet.GetInt("n-recs")
	normalize, _ := flagSet.GetBool("normalize")
	ignoreUnknown, _ := flagSet.GetBool("ignore-unknown")
	options := []recommender.QueryOption{
		recommender.WithNRecs(n),
		recommender.WithNormalize(normalize),
		recommender.WithIgnoreUnknown(ignoreUnknown),
	}
	if flagSet.Lookup("keep-history") != nil {
		keepHistory, _ := flagSet.GetBool("keep-history")
		options = append(options, recommender.WithRemoveHistory(!keepHistory))
	}
	return options
}

func loadRecommender(cmd *cobra.Command, name string) (*recommender.Recommender, error) {
	r, err := settings.Store.Load(cmd.Context(), name)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load recommender %s", name)
	}
	return r, nil
}

var recommendCommand = &cobra.Command{
	Use:   "recommend NAME ITEM[=WEIGHT]...",
	Short: "Recommend items similar to a history of items.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := parseWeighted(args[1:])
		if err != nil {
			return errors.Trace(err)
		}
		r, err := loadRecommender(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		scores, err := r.Recommend(history, queryOptions(cmd.Flags())...)
		if err != nil {
			return errors.Trace(err)
		}
		return printScores(cmd.OutOrStdout(), "Item", scores)
	},
}

var profileCommand = &cobra.Command{
	Use:   "profile NAME ITEM[=WEIGHT]...",
	Short: "Show the tags characterizing a history of items.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := parseWeighted(args[1:])
		if err != nil {
			return errors.Trace(err)
		}
		r, err := loadRecommender(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		scores, err := r.Profile(history, queryOptions(cmd.Flags())...)
		if err != nil {
			return errors.Trace(err)
		}
		return printTagScores(cmd.OutOrStdout(), scores)
	},
}

var queryCommand = &cobra.Command{
	Use:   "query NAME [TAG[=WEIGHT]...]",
	Short: "Recommend items matching a profile of tags.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := parseWeighted(args[1:])
		if err != nil {
			return errors.Trace(err)
		}
		options := queryOptions(cmd.Flags())
		if text, _ := cmd.Flags().GetString("text"); text != "" {
			// words missing from the vocabulary are skipped
			for word, count := range textProfile(text, settings.Config.LSA.StopWords) {
				profile[word] += count
			}
			options = append(options, recommender.WithIgnoreUnknown(true))
		}
		if len(profile) == 0 {
			return errors.NotValidf("empty profile")
		}
		r, err := loadRecommender(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		scores, err := r.RecommendByProfile(profile, options...)
		if err != nil {
			return errors.Trace(err)
		}
		return printScores(cmd.OutOrStdout(), "Item", scores)
	},
}

// textProfile counts the words of a text as Word tags.
func textProfile(text string, stopWords []string) map[string]float64 {
	if len(stopWords) == 0 {
		stopWords = lsa.DefaultStopWords
	}
	profile := make(map[string]float64)
	for _, token := range lsa.NewTokenizer(stopWords).Tokenize(text) {
		profile[lsa.WordPrefix+token]++
	}
	return profile
}

var classifyCommand = &cobra.Command{
	Use:   "classify NAME TAG_TYPE TAG[=WEIGHT]...",
	Short: "Vote for tags of a tag type among the nearest items of a profile.",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := parseWeighted(args[2:])
		if err != nil {
			return errors.Trace(err)
		}
		neighbors, _ := cmd.Flags().GetInt("neighbors")
		r, err := loadRecommender(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		scores, err := r.ClassifyByProfile(args[1], profile, neighbors, queryOptions(cmd.Flags())...)
		if err != nil {
			return errors.Trace(err)
		}
		return printScores(cmd.OutOrStdout(), "Label", scores)
	},
}

var retrieveCommand = &cobra.Command{
	Use:   "retrieve NAME",
	Short: "Retrieve items by should, must and must not tags.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		should, _ := cmd.Flags().GetStringSlice("should")
		must, _ := cmd.Flags().GetStringSlice("must")
		mustNot, _ := cmd.Flags().GetStringSlice("must-not")
		ignoreUnknown, _ := cmd.Flags().GetBool("ignore-unknown")
		r, err := loadRecommender(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		items, err := r.RetrieveByQueryElements(should, must, mustNot, recommender.WithIgnoreUnknown(ignoreUnknown))
		if err != nil {
			return errors.Trace(err)
		}
		return printItems(cmd.OutOrStdout(), items)
	},
}

func init() {
	for _, command := range []*cobra.Command{recommendCommand, profileCommand, queryCommand, classifyCommand} {
		addQueryFlags(command.Flags())
	}
	recommendCommand.Flags().Bool("keep-history", false, "keep history items in recommendations")
	queryCommand.Flags().String("text", "", "free text matched against Word tags")
	classifyCommand.Flags().Int("neighbors", 10, "number of nearest items voting")
	retrieveCommand.Flags().StringSlice("should", nil, "items having any of these tags")
	retrieveCommand.Flags().StringSlice("must", nil, "items having all of these tags")
	retrieveCommand.Flags().StringSlice("must-not", nil, "items having none of these tags")
	retrieveCommand.Flags().Bool("ignore-unknown", false, "skip unknown tags instead of failing")
	rootCommand.AddCommand(recommendCommand, profileCommand, queryCommand, classifyCommand, retrieveCommand)
}
