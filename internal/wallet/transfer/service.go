package transfer

import (
	"cmp"
	"context"
	"math/big"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github/chapool/token-transfer/internal/metrics"
	"github/chapool/token-transfer/internal/wallet/chain"
	"github/chapool/token-transfer/internal/wallet/signer"
	"github/chapool/token-transfer/internal/wallet/token"
)

// Service is the transfer executor for one token contract and one signing identity.
type Service interface {
	// Address is the signing identity's address.
	Address() common.Address
	TokenAddress() common.Address

	// GetTokenInfo queries name, symbol and decimals. Nothing is cached.
	GetTokenInfo(ctx context.Context) (token.Metadata, error)

	// GetBalance is GetBalanceOf the signing identity.
	GetBalance(ctx context.Context) (*Balance, error)

	// GetBalanceOf returns the raw and formatted balance of account.
	GetBalanceOf(ctx context.Context, account common.Address) (*Balance, error)

	// EstimateTransfer runs every transfer step up to pricing and returns the plan without signing.
	EstimateTransfer(ctx context.Context, to common.Address, amount string) (*Plan, error)

	// TransferTokens plans, signs and broadcasts a transfer, then waits for the confirmations.
	TransferTokens(ctx context.Context, to common.Address, amount string) (*Receipt, error)

	// GetTransferEvents returns the transfers to the watch address from fromBlock to the head.
	GetTransferEvents(ctx context.Context, fromBlock uint64) ([]TransferEvent, error)

	// GetNetworkInfo is a snapshot of chain id, head and fees.
	GetNetworkInfo(ctx context.Context) (*NetworkInfo, error)
}

type service struct {
	backend    Backend
	caller     *token.Caller
	transactor *token.Transactor
	opts       Options
}

// NewService binds the token contract twice, read-only and signing, on the same backend.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(backend Backend, s signer.Signer, tokenAddress common.Address, opts Options) (Service, error) {
	const op = "transfer.NewService"

	if backend == nil {
		return nil, configurationFailure(op, errors.New("network endpoint is required"))
	}

	if s == nil {
		return nil, configurationFailure(op, errors.New("signing identity is required"))
	}

	if tokenAddress == (common.Address{}) {
		return nil, configurationFailure(op, errors.New("token contract address is required"))
	}

	if opts.Confirmations < MinConfirmations {
		opts.Confirmations = MinConfirmations
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	if opts.DefaultGasPrice == nil || opts.DefaultGasPrice.Sign() <= 0 {
		opts.DefaultGasPrice = DefaultGasPrice()
	}

	return &service{
		backend:    backend,
		caller:     token.NewCaller(tokenAddress, backend),
		transactor: token.NewTransactor(tokenAddress, backend, s),
		opts:       opts,
	}, nil
}

func (s *service) Address() common.Address {
	return s.transactor.From()
}

func (s *service) TokenAddress() common.Address {
	return s.caller.Address()
}

func (s *service) GetTokenInfo(ctx context.Context) (token.Metadata, error) {
	meta, err := s.caller.Metadata(ctx)
	s.opts.Metrics.ObserveQuery("token_info", err)
	if err != nil {
		return token.Metadata{}, queryFailure("GetTokenInfo", err)
	}

	return meta, nil
}

func (s *service) GetBalance(ctx context.Context) (*Balance, error) {
	return s.GetBalanceOf(ctx, s.Address())
}

func (s *service) GetBalanceOf(ctx context.Context, account common.Address) (*Balance, error) {
	balance, err := s.balanceOf(ctx, account)
	s.opts.Metrics.ObserveQuery("balance", err)
	if err != nil {
		return nil, queryFailure("GetBalance", err)
	}

	return balance, nil
}

func (s *service) balanceOf(ctx context.Context, account common.Address) (*Balance, error) {
	raw, err := s.caller.BalanceOf(ctx, account)
	if err != nil {
		return nil, err
	}

	meta, err := s.caller.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	return &Balance{
		Address:   account,
		Raw:       raw,
		Formatted: token.FromBaseUnits(raw, meta.Decimals),
		Token:     meta,
	}, nil
}

func (s *service) EstimateTransfer(ctx context.Context, to common.Address, amount string) (*Plan, error) {
	return s.plan(ctx, "EstimateTransfer", to, amount)
}

func (s *service) plan(ctx context.Context, op string, to common.Address, amount string) (*Plan, error) {
	if to == (common.Address{}) {
		return nil, invalidInput(op, errors.New("recipient must not be the zero address"))
	}

	requested, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil || !requested.IsPositive() {
		return nil, invalidInput(op, errors.Wrapf(token.ErrInvalidAmount, "%q must be a positive decimal number", amount))
	}

	// 1. base units
	meta, err := s.caller.Metadata(ctx)
	if err != nil {
		return nil, queryFailure(op, errors.Wrap(err, "failed to fetch token metadata"))
	}

	raw, err := token.ToBaseUnits(amount, meta.Decimals)
	if err != nil {
		return nil, invalidInput(op, err)
	}

	if raw.Sign() == 0 {
		return nil, invalidInput(op, errors.Wrapf(token.ErrInvalidAmount, "%q is below one base unit of %s", amount, meta.Symbol))
	}

	// 2. balance check
	from := s.Address()
	balance, err := s.caller.BalanceOf(ctx, from)
	if err != nil {
		return nil, queryFailure(op, errors.Wrap(err, "failed to fetch sender balance"))
	}

	if balance.Cmp(raw) < 0 {
		return nil, &Error{
			Kind: KindInsufficientBalance,
			Op:   op,
			Err: errors.Errorf("have %s %s, need %s %s",
				token.FromBaseUnits(balance, meta.Decimals), meta.Symbol,
				token.FromBaseUnits(raw, meta.Decimals), meta.Symbol),
		}
	}

	plan := &Plan{
		From:            from,
		To:              to,
		Token:           meta,
		Amount:          raw,
		AmountFormatted: token.FromBaseUnits(raw, meta.Decimals),
		Balance:         balance,
	}

	// 3. gas estimate, fallback when the node refuses
	plan.EstimatedGas, err = s.transactor.EstimateTransfer(ctx, to, raw)
	if err != nil {
		plan.EstimatedGas = FallbackGasEstimate
		plan.GasEstimateErr = &Error{Kind: KindGasEstimation, Op: op, Err: err}
		s.opts.Metrics.ObserveGasFallback()

		log.Warn().
			Err(err).
			Str("to", to.Hex()).
			Uint64("fallback_gas", FallbackGasEstimate).
			Msg("TransferService: gas estimation failed, using fallback estimate")
	}

	plan.GasLimit = BufferedGasLimit(plan.EstimatedGas)

	// 4. gas price
	fees, err := s.feeData(ctx)
	if err != nil {
		log.Warn().
			Err(err).
			Msg("TransferService: failed to fetch fee data, using default gas price")
	}

	plan.GasPrice, plan.GasPriceFallback = fees.ResolveGasPrice(s.opts.DefaultGasPrice)
	if plan.GasPriceFallback {
		s.opts.Metrics.ObserveGasPriceFallback()
	}

	plan.MaxFee = MaxFee(plan.GasLimit, plan.GasPrice)

	log.Debug().
		Str("from", from.Hex()).
		Str("to", to.Hex()).
		Str("amount", raw.String()).
		Uint64("gas_limit", plan.GasLimit).
		Str("gas_price_wei", plan.GasPrice.String()).
		Msg("TransferService: transfer planned")

	return plan, nil
}

func (s *service) TransferTokens(ctx context.Context, to common.Address, amount string) (*Receipt, error) {
	const op = "TransferTokens"

	receipt, err := s.transfer(ctx, op, to, amount)
	if err != nil {
		s.opts.Metrics.ObserveTransfer(resultOf(err))
		return nil, err
	}

	s.opts.Metrics.ObserveTransfer(metrics.ResultConfirmed)

	return receipt, nil
}

func (s *service) transfer(ctx context.Context, op string, to common.Address, amount string) (*Receipt, error) {
	plan, err := s.plan(ctx, op, to, amount)
	if err != nil {
		return nil, err
	}

	tx, err := s.transactor.Transfer(ctx, token.TransactOpts{
		GasLimit: plan.GasLimit,
		GasPrice: plan.GasPrice,
	}, to, plan.Amount)
	if err != nil {
		return nil, submissionFailure(op, tx, err)
	}

	log.Info().
		Str("from", plan.From.Hex()).
		Str("to", to.Hex()).
		Str("token", s.TokenAddress().Hex()).
		Str("amount", plan.AmountFormatted).
		Str("tx_hash", tx.Hash().Hex()).
		Uint64("nonce", tx.Nonce()).
		Uint64("gas_limit", plan.GasLimit).
		Msg("TransferService: transfer broadcast, waiting for confirmations")

	receipt, confirmations, err := s.waitForConfirmations(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("tx_hash", tx.Hash().Hex()).
		Uint64("block_number", receipt.BlockNumber.Uint64()).
		Uint64("gas_used", receipt.GasUsed).
		Uint64("confirmations", confirmations).
		Msg("TransferService: transfer confirmed")

	return &Receipt{
		TxHash:            tx.Hash(),
		BlockNumber:       receipt.BlockNumber.Uint64(),
		BlockHash:         receipt.BlockHash,
		GasUsed:           receipt.GasUsed,
		GasLimit:          tx.Gas(),
		EffectiveGasPrice: receipt.EffectiveGasPrice,
		Confirmations:     confirmations,
		Plan:              plan,
	}, nil
}

func (s *service) GetTransferEvents(ctx context.Context, fromBlock uint64) ([]TransferEvent, error) {
	events, err := s.transferEvents(ctx, fromBlock)
	s.opts.Metrics.ObserveQuery("transfer_events", err)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, queryFailure("GetTransferEvents", err)
	}

	return events, nil
}

func (s *service) transferEvents(ctx context.Context, fromBlock uint64) ([]TransferEvent, error) {
	watch := s.opts.WatchAddress
	if watch == (common.Address{}) {
		return nil, configurationFailure("GetTransferEvents", errors.New("no destination address of interest configured"))
	}

	head, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch block number")
	}

	events := []TransferEvent{}
	if fromBlock > head {
		return events, nil
	}

	meta, err := s.caller.Metadata(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch token metadata")
	}

	for start := fromBlock; start <= head; {
		end := head
		if chunk := s.opts.EventsBlockChunk; chunk > 0 && head-start >= chunk {
			end = start + chunk - 1
		}

		logs, err := s.caller.FilterTransfers(ctx, token.TransferFilter{
			FromBlock: start,
			ToBlock:   end,
			To:        []common.Address{watch},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "blocks %d-%d", start, end)
		}

		for _, l := range logs {
			if l.Removed || l.To != watch {
				continue
			}

			events = append(events, TransferEvent{
				From:        l.From,
				To:          l.To,
				Value:       l.Value,
				Formatted:   token.FromBaseUnits(l.Value, meta.Decimals),
				BlockNumber: l.BlockNumber,
				LogIndex:    l.Index,
				TxHash:      l.TxHash,
			})
		}

		if end == head {
			break
		}
		start = end + 1
	}

	slices.SortStableFunc(events, func(a, b TransferEvent) int {
		return cmp.Or(cmp.Compare(a.BlockNumber, b.BlockNumber), cmp.Compare(a.LogIndex, b.LogIndex))
	})

	return events, nil
}

func (s *service) GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	info, err := s.networkInfo(ctx)
	s.opts.Metrics.ObserveQuery("network_info", err)
	if err != nil {
		return nil, queryFailure("GetNetworkInfo", err)
	}

	return info, nil
}

func (s *service) networkInfo(ctx context.Context) (*NetworkInfo, error) {
	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch chain id")
	}

	head, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch block number")
	}

	fees, err := s.feeData(ctx)
	if err != nil {
		return nil, err
	}

	return &NetworkInfo{
		ChainID:     chainID,
		Name:        chain.NetworkName(chainID),
		BlockNumber: head,
		Fees:        fees,
	}, nil
}

// feeData always returns a usable FeeData, possibly empty, next to the first error it hit.
func (s *service) feeData(ctx context.Context) (FeeData, error) {
	var fees FeeData

	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return fees, errors.Wrap(err, "failed to fetch gas price")
	}
	fees.GasPrice = gasPrice

	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return fees, errors.Wrap(err, "failed to fetch latest header")
	}

	if head.BaseFee == nil {
		return fees, nil
	}

	fees.BaseFee = new(big.Int).Set(head.BaseFee)

	tip, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("TransferService: node does not suggest a priority fee")
		tip = nil
	}

	fees.MaxPriorityFeePerGas = tip
	fees.MaxFeePerGas = maxFeePerGas(fees.BaseFee, tip)

	return fees, nil
}

func resultOf(err error) string {
	switch KindOf(err) {
	case KindInsufficientBalance:
		return metrics.ResultInsufficientBalance
	case KindInvalidInput, KindConfiguration:
		return metrics.ResultInvalidInput
	case KindSubmission:
		return metrics.ResultSubmissionFailed
	case KindReverted:
		return metrics.ResultReverted
	case KindConfirmation:
		return metrics.ResultUnconfirmed
	case KindQuery, KindGasEstimation, KindUnknown:
	}

	return metrics.ResultQueryFailed
}
