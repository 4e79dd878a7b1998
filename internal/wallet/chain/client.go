package chain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const defaultDialTimeout = 10 * time.Second

// RPCClient wraps one or more ethclient connections to the same network and fails over
// between them on transport errors. Errors returned by a node are never retried elsewhere.
type RPCClient struct {
	urls        []string
	clients     []*ethclient.Client
	mu          sync.RWMutex
	current     int
	dialTimeout time.Duration
}

// NewRPCClient dials every URL. Nodes that cannot be reached are re-dialed on use; at least
// one connection has to succeed.
func NewRPCClient(ctx context.Context, urls []string, dialTimeout time.Duration) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	c := &RPCClient{
		urls:        urls,
		clients:     make([]*ethclient.Client, len(urls)),
		dialTimeout: dialTimeout,
	}

	var lastErr error
	connected := 0
	for i, url := range urls {
		client, err := c.dial(ctx, url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			lastErr = err
			continue
		}
		c.clients[i] = client
		connected++
	}

	if connected == 0 {
		return nil, errors.Wrap(lastErr, "failed to connect to any RPC node")
	}

	return c, nil
}

func (c *RPCClient) dial(ctx context.Context, url string) (*ethclient.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", url)
	}

	return client, nil
}

// Close closes all client connections.
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, client := range c.clients {
		if client != nil {
			client.Close()
			c.clients[i] = nil
		}
	}
}

// ChainID returns the chain id reported by the node.
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	var chainID *big.Int
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		chainID, err = client.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	return chainID, nil
}

// BlockNumber returns the latest known block number.
func (c *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	var blockNumber uint64
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		blockNumber, err = client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get latest block number")
	}

	return blockNumber, nil
}

// HeaderByNumber returns a block header, nil number means latest.
func (c *RPCClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	var header *types.Header
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		header, err = client.HeaderByNumber(ctx, number)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get block header")
	}

	return header, nil
}

// SuggestGasPrice returns the node's legacy gas price.
func (c *RPCClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		price, err = client.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest gas price")
	}

	return price, nil
}

// SuggestGasTipCap returns the node's EIP-1559 priority fee suggestion.
func (c *RPCClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var tipCap *big.Int
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		tipCap, err = client.SuggestGasTipCap(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest gas tip cap")
	}

	return tipCap, nil
}

// CallContract executes a read-only message call, nil block number means latest.
func (c *RPCClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		out, err = client.CallContract(ctx, msg, blockNumber)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to call contract")
	}

	return out, nil
}

// EstimateGas simulates msg and returns the gas it used.
func (c *RPCClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		gas, err = client.EstimateGas(ctx, msg)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to estimate gas")
	}

	return gas, nil
}

// PendingNonceAt returns the pending nonce for the given address.
func (c *RPCClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var nonce uint64
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		nonce, err = client.PendingNonceAt(ctx, account)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pending nonce")
	}

	return nonce, nil
}

// SendTransaction broadcasts a signed transaction through the current node only. A node that
// timed out may still have accepted it, so it is never re-sent elsewhere.
func (c *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.RLock()
	idx := c.current
	c.mu.RUnlock()

	client, err := c.clientAt(ctx, idx)
	if err != nil {
		return errors.Wrap(err, "failed to send transaction")
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return errors.Wrap(err, "failed to send transaction")
	}

	return nil
}

// TransactionReceipt returns ethereum.NotFound (wrapped) while the transaction is pending.
func (c *RPCClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		receipt, err = client.TransactionReceipt(ctx, txHash)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction receipt")
	}

	return receipt, nil
}

// FilterLogs returns the logs matching query.
func (c *RPCClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.call(ctx, func(client *ethclient.Client) (err error) {
		logs, err = client.FilterLogs(ctx, query)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to filter logs")
	}

	return logs, nil
}

// call runs fn against the current client and moves on to the next one while the failure
// looks like a transport problem.
func (c *RPCClient) call(ctx context.Context, fn func(client *ethclient.Client) error) error {
	c.mu.RLock()
	start := c.current
	count := len(c.clients)
	c.mu.RUnlock()

	lastErr := errors.New("all RPC clients are unavailable")
	for i := 0; i < count; i++ {
		idx := (start + i) % count

		client, err := c.clientAt(ctx, idx)
		if err != nil {
			lastErr = err
			continue
		}

		err = fn(client)
		if err == nil || !isTransportError(ctx, err) {
			c.setCurrent(idx)
			return err
		}

		log.Warn().
			Str("url", c.urls[idx]).
			Err(err).
			Msg("RPC node unreachable, trying next node")
		lastErr = err
	}

	return lastErr
}

func (c *RPCClient) clientAt(ctx context.Context, idx int) (*ethclient.Client, error) {
	c.mu.RLock()
	client := c.clients[idx]
	c.mu.RUnlock()

	if client != nil {
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clients[idx] != nil {
		return c.clients[idx], nil
	}

	client, err := c.dial(ctx, c.urls[idx])
	if err != nil {
		return nil, err
	}
	c.clients[idx] = client

	return client, nil
}

func (c *RPCClient) setCurrent(idx int) {
	c.mu.Lock()
	c.current = idx
	c.mu.Unlock()
}

// isTransportError is false for anything the node itself answered with, and for our own
// context ending.
func isTransportError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	if errors.Is(err, ethereum.NotFound) {
		return false
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}

	return true
}
