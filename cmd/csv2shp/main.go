// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the csv2shp CLI.
//
// csv2shp selects survey points from a CSV or Excel table by Name prefix and
// packages them as a zipped PointZ shapefile plus a CSV extract. The convert
// subcommand runs one conversion; serve offers the same form over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/csv2shp/internal/logging"
	"github.com/pdiddy/csv2shp/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the csv2shp CLI.
var rootCmd = &cobra.Command{
	Use:   "csv2shp",
	Short: "Package surveyed coded targets as a zipped 3D shapefile",
	Long: `csv2shp reads a table of surveyed points (Name, Easting, Northing,
Elevation), keeps the rows whose Name starts with a prefix, and writes them
as a PointZ shapefile with a .prj, zipped together with a CSV extract of the
same rows.

Run "csv2shp convert" for a single conversion or "csv2shp serve" for the
browser form.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./csv2shp.yaml or ~/.config/csv2shp/csv2shp.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "diagnostic log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("csv2shp")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "csv2shp"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("CSV2SHP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("conversion.crs", types.DefaultCRS)
	v.SetDefault("conversion.naming_tags", types.DefaultNamingTags)
	v.SetDefault("conversion.output_dir", ".")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("serve.addr", ":9595")
	v.SetDefault("serve.data_dir", "csv2shp-data")
	v.SetDefault("serve.max_upload_mb", 32)
	v.SetDefault("serve.max_archives", 50)
}

// loadConfig builds the typed configuration from v. Keys follow the yaml
// layout of types.Config, so the output of "config show" reads back as a
// config file.
func loadConfig(v *viper.Viper) types.Config {
	tags := v.GetStringSlice("conversion.naming_tags")
	if len(tags) == 0 {
		tags = types.DefaultNamingTags
	}
	return types.Config{
		Conversion: types.ConversionConfig{
			CRS:        v.GetString("conversion.crs"),
			NamingTags: tags,
			OutputDir:  v.GetString("conversion.output_dir"),
			WorkDir:    v.GetString("conversion.work_dir"),
		},
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Serve: types.ServeConfig{
			Addr:         v.GetString("serve.addr"),
			DataDir:      v.GetString("serve.data_dir"),
			AccountsFile: v.GetString("serve.accounts_file"),
			MaxUploadMB:  v.GetInt("serve.max_upload_mb"),
			MaxArchives:  v.GetInt("serve.max_archives"),
		},
	}
}

// newLogger returns the diagnostic logger described by cfg, writing to stderr.
func newLogger(cfg types.LogConfig) logging.Logger {
	return logging.New(logging.Config{Level: cfg.Level, Format: cfg.Format}, os.Stderr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
