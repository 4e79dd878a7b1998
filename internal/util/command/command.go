package command

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
	"github/chapool/token-transfer/internal/metrics"
	"github/chapool/token-transfer/internal/util"
	"github/chapool/token-transfer/internal/wallet/chain"
	"github/chapool/token-transfer/internal/wallet/signer"
	"github/chapool/token-transfer/internal/wallet/token"
	"github/chapool/token-transfer/internal/wallet/transfer"
)

const executorOp = "command.WithExecutor"

// Executor bundles what a subcommand needs to talk to the token contract.
type Executor struct {
	Config  config.App
	Client  *chain.RPCClient
	Signer  signer.Signer
	Service transfer.Service
	Metrics *metrics.Transfer
	// Recipient is RECIPIENT_ADDRESS, zero when unset.
	Recipient common.Address
}

// WithExecutor sets up logging, builds the transfer executor from config and runs f with it.
// Any failure before f runs is a transfer.KindConfiguration error.
func WithExecutor(ctx context.Context, cfg config.App, f func(ctx context.Context, e *Executor) error) error {
	util.SetupLogger(cfg.Logger.Level, cfg.Logger.PrettyPrintConsole)

	// every log line of one invocation carries the same run id
	log.Logger = log.With().Str("run_id", uuid.NewString()).Logger()

	e, err := newExecutor(ctx, cfg)
	if err != nil {
		return &transfer.Error{Kind: transfer.KindConfiguration, Op: executorOp, Err: err}
	}
	defer e.Client.Close()

	err = f(ctx, e)

	if werr := e.Metrics.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
		log.Warn().Err(werr).Msg("Failed to write metrics textfile")
	}

	return err
}

func newExecutor(ctx context.Context, cfg config.App) (*Executor, error) {
	tc := cfg.Transfer

	privateKey := tc.PrivateKey
	if privateKey == "" {
		var err error
		privateKey, err = PromptPrivateKey(os.Stdin, os.Stderr)
		if err != nil {
			return nil, errors.Wrap(err, "PRIVATE_KEY is not set")
		}
	}

	s, err := signer.NewKeySigner(privateKey)
	if err != nil {
		return nil, err
	}

	if !common.IsHexAddress(tc.TokenContractAddress) {
		return nil, errors.Errorf("TOKEN_CONTRACT_ADDRESS %q is not a hex address", tc.TokenContractAddress)
	}

	var recipient common.Address
	if tc.RecipientAddress != "" {
		if !common.IsHexAddress(tc.RecipientAddress) {
			return nil, errors.Errorf("RECIPIENT_ADDRESS %q is not a hex address", tc.RecipientAddress)
		}
		recipient = common.HexToAddress(tc.RecipientAddress)
	}

	var defaultGasPrice *big.Int
	if tc.GasPriceGwei != "" {
		defaultGasPrice, err = token.ParseGwei(tc.GasPriceGwei)
		if err != nil {
			return nil, errors.Wrap(err, "invalid GAS_PRICE_GWEI")
		}
	}

	client, err := chain.NewRPCClient(ctx, tc.RPCURLs, tc.DialTimeout)
	if err != nil {
		return nil, err
	}

	m := metrics.NewTransfer()
	svc, err := transfer.NewService(client, s, common.HexToAddress(tc.TokenContractAddress), transfer.Options{
		WatchAddress:     recipient,
		DefaultGasPrice:  defaultGasPrice,
		Confirmations:    tc.Confirmations,
		ConfirmTimeout:   tc.ConfirmTimeout,
		PollInterval:     tc.ReceiptPollInterval,
		EventsBlockChunk: tc.EventsBlockChunk,
		Metrics:          m,
	})
	if err != nil {
		client.Close()
		return nil, err
	}

	log.Debug().
		Str("signer", s.Address().Hex()).
		Str("token", tc.TokenContractAddress).
		Int("rpc_urls", len(tc.RPCURLs)).
		Msg("Transfer executor ready")

	return &Executor{
		Config:    cfg,
		Client:    client,
		Signer:    s,
		Service:   svc,
		Metrics:   m,
		Recipient: recipient,
	}, nil
}

func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <subcommand>", name),
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}
