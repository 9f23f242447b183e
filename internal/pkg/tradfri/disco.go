package tradfri

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// discoHandle is the running colour loop of a client.
type discoHandle struct {
	ids    []int
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *discoHandle) stop() {
	h.cancel()
	<-h.done
}

// DiscoRunning reports whether the colour loop is active.
func (c *Client) DiscoRunning() bool {
	c.discoMu.Lock()
	defer c.discoMu.Unlock()
	return c.disco != nil
}

// Disco starts or stops the colour loop. Starting switches the devices on and
// changes them to a random colour every interval. Stopping waits for the last
// colour change to settle and switches the devices off. Both directions are no-ops
// when the loop already is in the requested state.
func (c *Client) Disco(ctx context.Context, ids []int, on bool, interval, transition time.Duration) error {
	c.discoMu.Lock()
	defer c.discoMu.Unlock()

	if on {
		return c.startDisco(ctx, ids, interval, transition)
	}
	return c.stopDisco(ctx, ids)
}

func (c *Client) startDisco(ctx context.Context, ids []int, interval, transition time.Duration) error {
	if c.disco != nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultDiscoInterval
	}
	if err := c.setStates(ctx, ids, 1); err != nil {
		return err
	}

	// the loop outlives the request that started it.
	loopCtx, cancel := context.WithCancel(context.Background())
	handle := &discoHandle{
		ids:    slices.Clone(ids),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.disco = handle
	go c.runDisco(loopCtx, handle, interval, TransitionFromDuration(transition))

	c.logger.Info("disco started", zap.Ints("deviceIds", ids), zap.Duration("interval", interval))
	return nil
}

func (c *Client) stopDisco(ctx context.Context, ids []int) error {
	handle := c.disco
	if handle == nil {
		return nil
	}
	handle.stop()
	c.disco = nil
	c.logger.Info("disco stopped", zap.Ints("deviceIds", handle.ids))

	if len(ids) == 0 {
		ids = handle.ids
	}
	if err := sleep(ctx, c.discoSettleDelay); err != nil {
		return err
	}
	return c.setStates(ctx, ids, 0)
}

func (c *Client) runDisco(ctx context.Context, handle *discoHandle, interval time.Duration, transition *Transition) {
	defer close(handle.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var eg errgroup.Group
			for _, id := range handle.ids {
				eg.Go(func() error {
					return c.SetDeviceColor(ctx, id, colorRandom, transition)
				})
			}
			if err := eg.Wait(); err != nil && ctx.Err() == nil {
				c.logger.Warn("disco color change failed", zap.Error(err))
			}
		}
	}
}
