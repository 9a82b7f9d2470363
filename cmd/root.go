package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/rdapgw/internal/config"
	"github.com/zjrosen/rdapgw/internal/log"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race the input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfigPath = ".rdapgw/config.yaml"
	debugEnv        = "RDAPGW_DEBUG"
	debugLogPath    = "debug.log"
)

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	cfg        = config.Defaults()
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "rdapgw",
	Short: "Registrar RDAP gateway market share",
	Long: `rdapgw classifies ICANN-accredited registrars by the RDAP service that
answers for them and reports how the domain market splits between shared
gateways and self-hosted registrars.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/rdapgw/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log to "+debugLogPath+" (also "+debugEnv+"=1)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .rdapgw/config.yaml (current directory)
		// 2. ~/.config/rdapgw/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			if dir := config.DefaultConfigDir(); dir != "" {
				viper.AddConfigPath(dir)
			}
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// First run: write the commented default so users have
			// something to edit. Failing to write is not fatal.
			defaultPath := userConfigPath()
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	cfg = config.Defaults()
	_ = viper.Unmarshal(&cfg)
}

// setup validates configuration and starts debug logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv(debugEnv) != "" {
		cleanup, err := log.InitWithTeaLog(debugLogPath, "rdapgw")
		if err != nil {
			return fmt.Errorf("initializing debug log: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "rdapgw starting",
			"command", cmd.Name(),
			"version", version,
			"config", viper.ConfigFileUsed())
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", configFilePath(), err)
	}
	return nil
}

func userConfigPath() string {
	if dir := config.DefaultConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return localConfigPath
}

// configFilePath is the file that was loaded, or the one that would be
// created.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return userConfigPath()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
