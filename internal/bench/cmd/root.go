// Package cmd wires the concurbench command tree: run, compare, report,
// trend, and import over the scenarios in internal/bench, persisted to a
// local SQLite file. Grounded on the teacher's internal/cmd package: the
// same cobra root plus viper config-file/env binding and a slog logger
// set up in PersistentPreRun.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dbPath  string
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "concurbench",
	Short: "Self-benchmarks for the parallel and promise packages",
	Long: `concurbench runs fixed workloads against the parallel worker pool and
the promise combinators, records their wall-clock distribution, persists
runs to a local SQLite database, and compares runs against each other to
catch regressions or confirm improvements.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./concurbench.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "concurbench.db", "path to the SQLite run history database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("concurbench")
	}

	viper.SetEnvPrefix("CONCURBENCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func initLogger() {
	level := slog.LevelInfo
	if verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func dbFilePath() string {
	if v := viper.GetString("db"); v != "" {
		return v
	}
	return dbPath
}
