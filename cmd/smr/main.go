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
	"fmt"
	"os"

	"github.com/gorse-io/smr/base/log"
	"github.com/gorse-io/smr/cmd/version"
	"github.com/gorse-io/smr/config"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var settings *config.Settings

var rootCommand = &cobra.Command{
	Use:   "smr",
	Short: "Sparse matrix recommender over tagged items.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
		if cmd.Name() == versionCommand.Name() {
			return nil
		}
		// load config
		configPath, _ := cmd.Flags().GetString("config")
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			return errors.Annotate(err, "failed to load config")
		}
		if store, _ := cmd.Flags().GetString("store"); store != "" {
			conf.Store.Path = store
		}
		log.Logger().Debug("open store", zap.String("store", log.RedactStorePath(conf.Store.Path)))
		if settings, err = config.NewSettings(conf); err != nil {
			return errors.Annotate(err, "failed to open store")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if settings != nil {
			if err := settings.Close(); err != nil {
				log.Logger().Error("failed to close store", zap.Error(err))
			}
		}
		log.CloseLogger()
	},
	SilenceUsage: true,
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.BuildInfo())
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().String("store", "", "snapshot store overriding the configuration")
	rootCommand.AddCommand(versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
