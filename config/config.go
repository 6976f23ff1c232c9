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

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/smr/lsa"
	"github.com/gorse-io/smr/recommender"
	"github.com/gorse-io/smr/weight"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the command line tool.
type Config struct {
	Store       StoreConfig       `mapstructure:"store"`
	Recommender RecommenderConfig `mapstructure:"recommender"`
	LSA         LSAConfig         `mapstructure:"lsa"`
}

// StoreConfig is the configuration of the snapshot store.
type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RecommenderConfig is the configuration of recommender building.
type RecommenderConfig struct {
	AddTagTypesToColumnNames bool               `mapstructure:"add_tag_types_to_column_names"`
	TagValueSeparator        string             `mapstructure:"tag_value_separator" validate:"required"`
	Aggregation              string             `mapstructure:"aggregation" validate:"omitempty,oneof=sum last max"`
	TermWeights              TermWeightsConfig  `mapstructure:"term_weights"`
	TagTypeWeights           map[string]float64 `mapstructure:"tag_type_weights" validate:"dive,gt=0"`
}

// TermWeightsConfig names the term weight functions applied to every tag type.
type TermWeightsConfig struct {
	Global     string `mapstructure:"global" validate:"oneof=none idf gfidf normal binary column_stochastic"`
	Local      string `mapstructure:"local" validate:"oneof=none binary log log1p"`
	Normalizer string `mapstructure:"normalizer" validate:"oneof=none cosine sum max"`
}

// LSAConfig is the configuration of the Word and Topic tag types.
type LSAConfig struct {
	Enable           bool     `mapstructure:"enable"`
	TextColumn       string   `mapstructure:"text_column" validate:"required_if=Enable true"`
	NumTopics        int      `mapstructure:"num_topics" validate:"gt=0"`
	Method           string   `mapstructure:"method" validate:"oneof=svd nmf"`
	MinTermFrequency int      `mapstructure:"min_term_frequency" validate:"gte=1"`
	MaxIterations    int      `mapstructure:"max_iterations" validate:"gt=0"`
	StopWords        []string `mapstructure:"stop_words"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "file://snapshots",
		},
		Recommender: RecommenderConfig{
			TagValueSeparator: recommender.DefaultTagValueSeparator,
			TermWeights: TermWeightsConfig{
				Global:     string(weight.IDF),
				Local:      string(weight.LocalNone),
				Normalizer: string(weight.Cosine),
			},
		},
		LSA: LSAConfig{
			TextColumn:       "description",
			NumTopics:        20,
			Method:           string(lsa.SVD),
			MinTermFrequency: 1,
			MaxIterations:    100,
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [store]
	viper.SetDefault("store.path", defaultConfig.Store.Path)
	// [recommender]
	viper.SetDefault("recommender.add_tag_types_to_column_names", defaultConfig.Recommender.AddTagTypesToColumnNames)
	viper.SetDefault("recommender.tag_value_separator", defaultConfig.Recommender.TagValueSeparator)
	viper.SetDefault("recommender.aggregation", defaultConfig.Recommender.Aggregation)
	// [recommender.term_weights]
	viper.SetDefault("recommender.term_weights.global", defaultConfig.Recommender.TermWeights.Global)
	viper.SetDefault("recommender.term_weights.local", defaultConfig.Recommender.TermWeights.Local)
	viper.SetDefault("recommender.term_weights.normalizer", defaultConfig.Recommender.TermWeights.Normalizer)
	// [lsa]
	viper.SetDefault("lsa.enable", defaultConfig.LSA.Enable)
	viper.SetDefault("lsa.text_column", defaultConfig.LSA.TextColumn)
	viper.SetDefault("lsa.num_topics", defaultConfig.LSA.NumTopics)
	viper.SetDefault("lsa.method", defaultConfig.LSA.Method)
	viper.SetDefault("lsa.min_term_frequency", defaultConfig.LSA.MinTermFrequency)
	viper.SetDefault("lsa.max_iterations", defaultConfig.LSA.MaxIterations)
}

type configBinding struct {
	key string
	env string
}

func bindEnv() error {
	bindings := []configBinding{
		{"store.path", "SMR_STORE"},
		{"recommender.add_tag_types_to_column_names", "SMR_ADD_TAG_TYPES_TO_COLUMN_NAMES"},
		{"recommender.tag_value_separator", "SMR_TAG_VALUE_SEPARATOR"},
		{"recommender.aggregation", "SMR_AGGREGATION"},
		{"recommender.term_weights.global", "SMR_GLOBAL_WEIGHT"},
		{"recommender.term_weights.local", "SMR_LOCAL_WEIGHT"},
		{"recommender.term_weights.normalizer", "SMR_NORMALIZER"},
		{"lsa.enable", "SMR_LSA_ENABLE"},
		{"lsa.text_column", "SMR_LSA_TEXT_COLUMN"},
		{"lsa.num_topics", "SMR_LSA_NUM_TOPICS"},
		{"lsa.method", "SMR_LSA_METHOD"},
		{"lsa.stop_words", "SMR_LSA_STOP_WORDS"},
	}
	for _, binding := range bindings {
		if err := viper.BindEnv(binding.key, binding.env); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func unmarshal(config *Config) error {
	return viper.Unmarshal(config, viper.DecodeHook(mapstructure.StringToSliceHookFunc(",")))
}

// LoadConfig loads configuration from a TOML file. Environment variables
// override values of the file and an empty path loads defaults only.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	if err := bindEnv(); err != nil {
		return nil, errors.Trace(err)
	}
	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("toml")
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var config Config
	if err := unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and names of the configuration.
func (config *Config) Validate() error {
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

// TermWeightFunctions parses the term weight functions.
func (config *RecommenderConfig) TermWeightFunctions() (weight.Functions, error) {
	return weight.Parse(config.TermWeights.Global, config.TermWeights.Local, config.TermWeights.Normalizer)
}

// WeightsOf matches configured tag type weights to tag types. Configuration
// keys are case insensitive.
func (config *RecommenderConfig) WeightsOf(tagTypes []string) map[string]float64 {
	weights := make(map[string]float64)
	for key, w := range config.TagTypeWeights {
		for _, tagType := range tagTypes {
			if strings.EqualFold(key, tagType) {
				weights[tagType] = w
			}
		}
	}
	return weights
}

// Analyzer creates a latent semantic analyzer.
func (config *LSAConfig) Analyzer(weights weight.Functions) (*lsa.Analyzer, error) {
	method, err := lsa.ParseMethod(config.Method)
	if err != nil {
		return nil, errors.Trace(err)
	}
	analyzer := lsa.NewAnalyzer(config.NumTopics)
	analyzer.Method = method
	analyzer.MinTermFrequency = config.MinTermFrequency
	analyzer.MaxIterations = config.MaxIterations
	analyzer.Weights = weights
	if len(config.StopWords) > 0 {
		analyzer.StopWords = config.StopWords
	}
	return analyzer, nil
}
