package tradfri

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

const (
	pathDevices        = "15001"
	pathGroups         = "15004"
	pathNotifications  = "15006"
	pathSchedules      = "15010"
	pathGatewayDetails = "15011/15012"
	pathGatewayReboot  = "15011/9030"
)

const (
	defaultStateSettleDelay = 50 * time.Millisecond
	defaultDiscoSettleDelay = time.Second
	defaultDiscoInterval    = 2 * time.Second
)

// Client drives the lighting gateway. Every operation is an independent request.
type Client struct {
	transport Transport
	logger    *zap.Logger
	colors    *colorPicker

	stateSettleDelay time.Duration
	discoSettleDelay time.Duration

	discoMu sync.Mutex
	disco   *discoHandle
}

type Option func(*Client)

// WithRand sets the random source used for "random" colours.
func WithRand(rnd *rand.Rand) Option {
	return func(c *Client) {
		c.colors = newColorPicker(rnd)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStateSettleDelay sets the pause before the final state write of PutDevice.
func WithStateSettleDelay(d time.Duration) Option {
	return func(c *Client) {
		c.stateSettleDelay = d
	}
}

// WithDiscoSettleDelay sets the pause between stopping disco mode and switching the devices off.
func WithDiscoSettleDelay(d time.Duration) Option {
	return func(c *Client) {
		c.discoSettleDelay = d
	}
}

func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport:        transport,
		logger:           zap.L(), // returns the global logger.
		colors:           newColorPicker(nil),
		stateSettleDelay: defaultStateSettleDelay,
		discoSettleDelay: defaultDiscoSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close stops a running disco loop without touching the devices.
func (c *Client) Close() error {
	c.discoMu.Lock()
	defer c.discoMu.Unlock()
	if c.disco != nil {
		c.disco.stop()
		c.disco = nil
	}
	return nil
}

// *** gateway ***

func (c *Client) GatewayDetails(ctx context.Context) (model.GatewayDetails, error) {
	raw, err := c.object(ctx, pathGatewayDetails)
	if err != nil {
		return nil, err
	}
	return model.GatewayDetails(raw), nil
}

func (c *Client) RebootGateway(ctx context.Context) error {
	_, err := c.transport.Request(ctx, MethodPost, pathGatewayReboot, nil)
	if err != nil {
		return err
	}
	c.logger.Info("gateway reboot requested")
	return nil
}

// *** notifications ***

func (c *Client) Notifications(ctx context.Context, withRaw bool) ([]model.Notification, error) {
	payload, err := c.transport.Request(ctx, MethodGet, pathNotifications, nil)
	if err != nil {
		return nil, err
	}
	notifications := []model.Notification{}
	if isAck(payload) {
		return notifications, nil
	}
	var raws []map[string]any
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	for _, raw := range raws {
		notifications = append(notifications, SanitizeNotification(raw, withRaw))
	}
	return notifications, nil
}

// *** general ***

func isAck(payload json.RawMessage) bool {
	return bytes.Equal(payload, OK)
}

func resourcePath(collection string, id int) string {
	return collection + "/" + strconv.Itoa(id)
}

// ids fetches the id list of a collection. An acknowledgement without payload is an empty list.
func (c *Client) ids(ctx context.Context, collection string) ([]int, error) {
	payload, err := c.transport.Request(ctx, MethodGet, collection, nil)
	if err != nil {
		return nil, err
	}
	ids := []int{}
	if isAck(payload) {
		return ids, nil
	}
	if err := json.Unmarshal(payload, &ids); err != nil {
		return nil, fmt.Errorf("decode %s id list: %w", collection, err)
	}
	return ids, nil
}

// object fetches a single resource. A payload that is not a json object yields nil.
func (c *Client) object(ctx context.Context, path string) (map[string]any, error) {
	payload, err := c.transport.Request(ctx, MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	raw, _ := decoded.(map[string]any)
	return raw, nil
}

// resource is like object but treats a payload without an id as missing.
func (c *Client) resource(ctx context.Context, path string) (map[string]any, error) {
	raw, err := c.object(ctx, path)
	if err != nil || raw == nil {
		return nil, err
	}
	if _, ok := raw[keyID]; !ok {
		return nil, nil
	}
	return raw, nil
}

func (c *Client) put(ctx context.Context, path string, body []byte) error {
	_, err := c.transport.Request(ctx, MethodPut, path, body)
	return err
}

func (c *Client) putName(ctx context.Context, path, name string) error {
	body, err := json.Marshal(nameBody{Name: name})
	if err != nil {
		return err
	}
	return c.put(ctx, path, body)
}

// fetchAll issues one fetch per id concurrently and keeps the id order.
// The first failure fails the whole call, the remaining fetches still run to completion.
func fetchAll[T any](ctx context.Context, ids []int, fetch func(ctx context.Context, id int) (T, error)) ([]T, error) {
	results := make([]T, len(ids))
	var eg errgroup.Group
	for i, id := range ids {
		eg.Go(func() error {
			item, err := fetch(ctx, id)
			if err != nil {
				return err
			}
			results[i] = item
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
