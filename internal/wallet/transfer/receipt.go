package transfer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errNotConfirmed = errors.New("transaction not confirmed yet")

type confirmation struct {
	receipt *types.Receipt
	depth   uint64
}

// waitForConfirmations polls until the transaction is opts.Confirmations blocks deep. Without
// ConfirmTimeout it only stops when ctx is done. The receipt status is checked once the depth
// is reached.
func (s *service) waitForConfirmations(ctx context.Context, txHash common.Hash) (*types.Receipt, uint64, error) {
	const op = "TransferTokens"

	waitCtx := ctx
	if s.opts.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.opts.ConfirmTimeout)
		defer cancel()
	}

	operation := func() (confirmation, error) {
		receipt, err := s.backend.TransactionReceipt(waitCtx, txHash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return confirmation{}, errNotConfirmed
			}
			return confirmation{}, errors.Wrap(err, "failed to fetch receipt")
		}

		head, err := s.backend.BlockNumber(waitCtx)
		if err != nil {
			return confirmation{}, errors.Wrap(err, "failed to fetch block number")
		}

		c := confirmation{receipt: receipt}
		if mined := receipt.BlockNumber.Uint64(); head >= mined {
			c.depth = head - mined + 1
		}

		if c.depth < s.opts.Confirmations {
			return c, errNotConfirmed
		}

		return c, nil
	}

	notify := func(err error, next time.Duration) {
		if errors.Is(err, errNotConfirmed) {
			log.Debug().
				Str("tx_hash", txHash.Hex()).
				Dur("next_poll", next).
				Msg("TransferService: waiting for confirmations")
			return
		}

		log.Warn().
			Err(err).
			Str("tx_hash", txHash.Hex()).
			Msg("TransferService: receipt poll failed, retrying")
	}

	started := time.Now()
	c, err := backoff.Retry(waitCtx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.opts.PollInterval)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify))
	s.opts.Metrics.ObserveConfirmationWait(time.Since(started))

	if err != nil {
		return nil, c.depth, &Error{
			Kind:   KindConfirmation,
			Op:     op,
			TxHash: txHash,
			Err:    errors.Wrapf(err, "gave up waiting for %d confirmations", s.opts.Confirmations),
		}
	}

	if c.receipt.Status != types.ReceiptStatusSuccessful {
		return nil, c.depth, &Error{
			Kind:   KindReverted,
			Op:     op,
			TxHash: txHash,
			Err:    errors.Errorf("receipt status %d in block %d", c.receipt.Status, c.receipt.BlockNumber.Uint64()),
		}
	}

	return c.receipt, c.depth, nil
}
