package client

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sisu-network/lib/log"
)

const (
	RETRY_TIME = 10 * time.Second
)

var (
	ErrTrackerNotConnected = errors.New("tracker daemon is not connected")
)

// TrackerClient connects to the JSON-RPC server of a running tracker daemon.
type TrackerClient interface {
	TryDial(ctx context.Context) error
	Close()
	GetVersion(ctx context.Context) (string, error)
	Watch(ctx context.Context, hash common.Hash) error
	Unwatch(ctx context.Context, hash common.Hash) (bool, error)
	Pending(ctx context.Context) ([]common.Hash, error)
	Completed(ctx context.Context) ([]common.Hash, error)
	State(ctx context.Context) (string, error)
}

type DefaultTrackerClient struct {
	client *rpc.Client
	url    string
	retry  time.Duration
}

func NewTrackerClient(url string) TrackerClient {
	return &DefaultTrackerClient{
		url:   url,
		retry: RETRY_TIME,
	}
}

// TryDial blocks until the daemon answers a version call or ctx is done.
func (c *DefaultTrackerClient) TryDial(ctx context.Context) error {
	log.Info("Trying to dial tracker daemon")

	for {
		log.Info("Dialing...", c.url)
		client, err := rpc.DialContext(ctx, c.url)
		if err == nil {
			c.client = client
			if _, err = c.GetVersion(ctx); err == nil {
				break
			}
			client.Close()
			c.client = nil
			log.Error("Cannot get tracker version err = ", err)
		} else {
			log.Error("Cannot connect to tracker daemon err = ", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retry):
		}
	}

	log.Info("Tracker daemon is connected")
	return nil
}

func (c *DefaultTrackerClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *DefaultTrackerClient) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if c.client == nil {
		return ErrTrackerNotConnected
	}

	return c.client.CallContext(ctx, result, method, args...)
}

func (c *DefaultTrackerClient) GetVersion(ctx context.Context) (string, error) {
	var version string
	err := c.call(ctx, &version, "cargo_version")
	return version, err
}

func (c *DefaultTrackerClient) Watch(ctx context.Context, hash common.Hash) error {
	log.Verbose("Watching tx ", hash.Hex())

	var ok bool
	err := c.call(ctx, &ok, "cargo_watch", hash)
	if err != nil {
		log.Error("Cannot watch tx ", hash.Hex(), ", err = ", err)
	}

	return err
}

func (c *DefaultTrackerClient) Unwatch(ctx context.Context, hash common.Hash) (bool, error) {
	var removed bool
	err := c.call(ctx, &removed, "cargo_unwatch", hash)
	return removed, err
}

func (c *DefaultTrackerClient) Pending(ctx context.Context) ([]common.Hash, error) {
	var hashes []common.Hash
	err := c.call(ctx, &hashes, "cargo_pending")
	return hashes, err
}

func (c *DefaultTrackerClient) Completed(ctx context.Context) ([]common.Hash, error) {
	var hashes []common.Hash
	err := c.call(ctx, &hashes, "cargo_completed")
	return hashes, err
}

func (c *DefaultTrackerClient) State(ctx context.Context) (string, error) {
	var state string
	err := c.call(ctx, &state, "cargo_state")
	return state, err
}
