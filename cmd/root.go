package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/token-transfer/cmd/balance"
	"github/chapool/token-transfer/cmd/check"
	"github/chapool/token-transfer/cmd/env"
	"github/chapool/token-transfer/cmd/events"
	"github/chapool/token-transfer/cmd/gas"
	"github/chapool/token-transfer/cmd/info"
	"github/chapool/token-transfer/cmd/run"
	"github/chapool/token-transfer/cmd/transfer"
	"github/chapool/token-transfer/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Reads ERC-20 balances and submits token transfers on an Ethereum compatible network.
Requires configuration through ENV or a .env file.`, config.ModuleName),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		balance.New(),
		check.New(),
		env.New(),
		events.New(),
		gas.New(),
		info.New(),
		run.New(),
		transfer.New(),
	)

	// Ctrl+C stops a confirmation wait, which is unbounded by default.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
