package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "stockctl",
		Short: "Operate the stockwise forecasting service",
		Long: `stockctl triggers forecasting, snapshot, anomaly and maintenance cycles
through the pipeline API and works the resulting alerts through the operator API.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/stockctl/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "http://localhost:8080", "stockwise API base URL")
	rootCmd.PersistentFlags().String("api-key", "", "pipeline API key (X-API-Key)")
	rootCmd.PersistentFlags().String("token", "", "operator bearer token")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json)")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(anomaliesCmd())
	rootCmd.AddCommand(maintenanceCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(recommendationsCmd())
	rootCmd.AddCommand(handleCmd())
	rootCmd.AddCommand(accuracyCmd())
	rootCmd.AddCommand(tokenCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		viper.AddConfigPath(fmt.Sprintf("%s/.config/stockctl", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("stockctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("STOCKCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	switch viper.GetString("output") {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", viper.GetString("output"))
	}
}
