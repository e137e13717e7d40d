package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "closeboard",
	Short:         "Dependency-aware scheduling for closing task boards",
	Long:          "Closeboard schedules tasks on a closing board from their dependencies, guards column moves, and propagates actual completion dates downstream.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .closeboard.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("telemetry", "", "append JSONL change events to this file")
	rootCmd.PersistentFlags().Int("warning-days", 2, "days before the end date a task turns to warning")
	rootCmd.PersistentFlags().Bool("require-started", false, "only allow in-progress moves once every dependency has started")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("telemetry_path", rootCmd.PersistentFlags().Lookup("telemetry"))
	_ = viper.BindPFlag("warning_days", rootCmd.PersistentFlags().Lookup("warning-days"))
	_ = viper.BindPFlag("guard.require_started_dependencies", rootCmd.PersistentFlags().Lookup("require-started"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".closeboard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("CLOSEBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
