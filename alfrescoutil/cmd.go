/*
Copyright © 2017 the ALFRESCO authors.
This file is part of ALFRESCO.

ALFRESCO is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ALFRESCO is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ALFRESCO.  If not, see <http://www.gnu.org/licenses/>.
*/

package alfrescoutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rarutter/alfresco"
)

// Version is the model version, stamped at build time.
var Version = "dev"

// CmdCfg bundles the configuration with the command tree.
type CmdCfg struct {
	*Cfg

	Root, runCmd, versionCmd *cobra.Command
}

// options are the command-line configurable settings. Every option is
// also readable from the configuration file under the same name.
var options = []struct {
	name, usage, shorthand string
	defaultVal             interface{}
}{
	{
		name:       "config",
		usage:      "Path to the configuration file (key = value format).",
		shorthand:  "c",
		defaultVal: "",
	},
	{
		name:       "LogLevel",
		usage:      "Console log level: debug, info, warn or error.",
		defaultVal: "info",
	},
	{
		name:       "Seed",
		usage:      "Base random seed; replicate r draws from Seed+r.",
		defaultVal: 0,
	},
	{
		name:       "Reps",
		usage:      "Number of independent replicates to simulate.",
		defaultVal: 1,
	},
	{
		name:       "NProcs",
		usage:      "Number of replicates to run concurrently.",
		defaultVal: 1,
	},
	{
		name:       "Output.Dir",
		usage:      "Directory receiving map and statistic outputs.",
		defaultVal: ".",
	},
}

// InitializeConfig builds the command tree and binds the options.
func InitializeConfig() *CmdCfg {
	cfg := &CmdCfg{Cfg: &Cfg{Viper: viper.New()}}

	cfg.Root = &cobra.Command{
		Use:   "alfresco",
		Short: "A boreal landscape fire and succession model.",
		Long: `ALFRESCO simulates wildfire and vegetation succession on a raster
landscape, one cell-year at a time, across independent replicates.
Use the subcommands specified below to access the model functionality.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if file := cfg.GetString("config"); file != "" {
				cfg.SetConfigFile(file)
				if err := cfg.ReadInConfig(); err != nil {
					return &alfresco.ConfigError{Key: "config", Reason: err.Error()}
				}
			}
			level, err := logrus.ParseLevel(cfg.GetString("LogLevel"))
			if err != nil {
				return &alfresco.ConfigError{Key: "LogLevel", Reason: err.Error()}
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	cfg.runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the simulation.",
		Long: `run executes every configured replicate: landscape load, the
yearly fire / succession / statistics pipeline, map writes, and the
final statistic files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cfg.Cfg)
		},
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ALFRESCO v%s\n", Version)
			return nil
		},
	}

	cfg.Root.AddCommand(cfg.runCmd, cfg.versionCmd)

	flagsets := []*pflag.FlagSet{cfg.Root.PersistentFlags()}
	for _, option := range options {
		for _, set := range flagsets {
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
		cfg.SetDefault(option.name, option.defaultVal)
	}
	return cfg
}

// Run loads the species registry and raster header from the
// configuration and executes the model.
func Run(cfg *Cfg) error {
	reg, err := alfresco.LoadSpecies(cfg)
	if err != nil {
		return err
	}
	rio, err := cfg.RasterIO()
	if err != nil {
		return err
	}
	m, err := alfresco.NewModel(cfg, reg, rio)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"reps": m.NumReps, "grid": fmt.Sprintf("%dx%d", rio.YSize, rio.XSize),
	}).Info("starting simulation")
	return m.Run()
}
