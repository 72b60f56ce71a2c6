package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fakhrymubarak/weather-lookup-api/internal/config"
	"github.com/fakhrymubarak/weather-lookup-api/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "weather-lookup-api",
		Short:         "Store weather lookups enriched with WeatherStack data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.GetWeatherstackAPIKey() == "" {
				config.GetLogger().Warnw("WEATHERSTACK_API_KEY is not set, create requests will fail")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, ":"+config.GetServerPort())
		},
	}
	cmd.Flags().String("port", "", "port to listen on (overrides server.port)")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		config.GetLogger().Errorw("Weather lookup server stopped", "error", err)
	}
	_ = config.GetLogger().Sync()
	if err != nil {
		os.Exit(1)
	}
}
