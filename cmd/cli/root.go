// Package cli provides command-line interface commands for the netrecon
// network scanner. This package implements the Cobra-based CLI structure
// with commands for scanning and target resolution.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/netrecon/netrecon/internal/config"
	"github.com/netrecon/netrecon/internal/engine"
	"github.com/netrecon/netrecon/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "netrecon",
	Short: "Concurrent network reconnaissance",
	Long: `Netrecon scans hosts, IP ranges, and CIDR blocks for liveness and open
TCP ports, identifies likely services, and optionally captures short
service banners, all under bounded concurrency and strict timeouts.`,
	Version: getVersion(),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./netrecon.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("netrecon")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("NETRECON")

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	initLogging()
}

// setConfigDefaults sets default values for configuration.
func setConfigDefaults() {
	viper.SetDefault("scan.ports", "")
	viper.SetDefault("scan.port_timeout", engine.DefaultPortTimeout)
	viper.SetDefault("scan.ping_timeout", engine.DefaultPingTimeout)
	viper.SetDefault("scan.host_concurrency", engine.DefaultHostConcurrency)
	viper.SetDefault("scan.port_concurrency", engine.DefaultPortConcurrency)
	viper.SetDefault("scan.ping_first", true)
	viper.SetDefault("scan.skip_offline", false)
	viper.SetDefault("scan.grab_banners", false)
	viper.SetDefault("scan.rate_limit", 0)

	viper.SetDefault("resolver.server", "")
	viper.SetDefault("resolver.timeout", engine.DefaultResolveTimeout)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stderr")

	viper.SetDefault("metrics.enabled", true)
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	cfg, err := config.LoadOrDefault(viper.ConfigFileUsed())
	if err != nil {
		logging.SetDefault(logging.NewDefault())
		return
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	logConfig := logging.Config{
		Level:     logging.LogLevel(level),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		AddSource: level == "debug",
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	logging.SetDefault(logger)
}

// loadConfig builds the effective configuration from the config file (if
// any) with viper-managed defaults and environment overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(viper.ConfigFileUsed())
	if err != nil {
		return nil, err
	}

	// Viper merges defaults, config file, and NETRECON_* environment
	// variables; read the merged view back for the scan settings.
	cfg.Scan.Ports = viper.GetString("scan.ports")
	cfg.Scan.PortTimeout = viper.GetDuration("scan.port_timeout")
	cfg.Scan.PingTimeout = viper.GetDuration("scan.ping_timeout")
	cfg.Scan.HostConcurrency = viper.GetInt("scan.host_concurrency")
	cfg.Scan.PortConcurrency = viper.GetInt("scan.port_concurrency")
	cfg.Scan.PingFirst = viper.GetBool("scan.ping_first")
	cfg.Scan.SkipOffline = viper.GetBool("scan.skip_offline")
	cfg.Scan.GrabBanners = viper.GetBool("scan.grab_banners")
	cfg.Scan.RateLimit = viper.GetInt("scan.rate_limit")
	cfg.Resolver.Server = viper.GetString("resolver.server")
	cfg.Resolver.Timeout = viper.GetDuration("resolver.timeout")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
