package tradfri

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

// DeviceQuery narrows and orders the result of Devices. Zero values mean no filter and id-list order.
type DeviceQuery struct {
	Type    model.DeviceType
	SortBy  []string
	WithRaw bool
}

func (c *Client) DeviceIDs(ctx context.Context) ([]int, error) {
	return c.ids(ctx, pathDevices)
}

// Device fetches a single device. An id unknown to the gateway fails with ErrDeviceNotFound.
func (c *Client) Device(ctx context.Context, id int, withRaw bool) (model.Device, error) {
	raw, err := c.resource(ctx, resourcePath(pathDevices, id))
	if err != nil {
		return model.Device{}, err
	}
	if raw == nil {
		return model.Device{}, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}
	return SanitizeDevice(raw, withRaw), nil
}

func (c *Client) Devices(ctx context.Context, query DeviceQuery) ([]model.Device, error) {
	ids, err := c.DeviceIDs(ctx)
	if err != nil {
		return nil, err
	}
	devices, err := fetchAll(ctx, ids, func(ctx context.Context, id int) (model.Device, error) {
		return c.Device(ctx, id, query.WithRaw)
	})
	if err != nil {
		return nil, err
	}
	if query.Type != "" {
		devices = lo.Filter(devices, func(d model.Device, _ int) bool { return d.Type == query.Type })
	}
	if err := sortBy(devices, query.SortBy, deviceComparators); err != nil {
		return nil, err
	}
	return devices, nil
}

// DeviceState returns the on/off state of a device, devices without a state report 0.
func (c *Client) DeviceState(ctx context.Context, id int) (int, error) {
	device, err := c.Device(ctx, id, false)
	if err != nil {
		return 0, err
	}
	return lo.FromPtr(device.State), nil
}

func (c *Client) SetDeviceState(ctx context.Context, id, state int) error {
	body, err := newDeviceBody(stateSetting(state))
	if err != nil {
		return err
	}
	return c.put(ctx, resourcePath(pathDevices, id), body)
}

// ToggleDeviceState reads the state and writes its opposite. The read and the write are not atomic.
func (c *Client) ToggleDeviceState(ctx context.Context, id int) (int, error) {
	state, err := c.DeviceState(ctx, id)
	if err != nil {
		return 0, err
	}
	next := 1
	if state != 0 {
		next = 0
	}
	if err := c.SetDeviceState(ctx, id, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (c *Client) SetDeviceBrightness(ctx context.Context, id, brightness int, transition *Transition) error {
	setting, err := brightnessSetting(brightness, transition)
	if err != nil {
		return err
	}
	body, err := newDeviceBody(setting)
	if err != nil {
		return err
	}
	return c.put(ctx, resourcePath(pathDevices, id), body)
}

// SetDeviceColor sets a named colour. Temperatures are sent as hex, rgb colours as hue/saturation/xy.
func (c *Client) SetDeviceColor(ctx context.Context, id int, color string, transition *Transition) error {
	spec, err := c.colors.resolve(color)
	if err != nil {
		return err
	}
	setting, err := colorSetting(spec, transition)
	if err != nil {
		return err
	}
	body, err := newDeviceBody(setting)
	if err != nil {
		return err
	}
	return c.put(ctx, resourcePath(pathDevices, id), body)
}

func (c *Client) SetDeviceName(ctx context.Context, id int, name string) error {
	return c.putName(ctx, resourcePath(pathDevices, id), name)
}

// PutDevice applies a patch to a device. Colour and brightness go first, the state is
// written last after a short pause because a brightness change switches a bulb on.
func (c *Client) PutDevice(ctx context.Context, device model.Device, patch model.DevicePatch) error {
	if patch.Color != nil {
		if err := c.SetDeviceColor(ctx, device.ID, *patch.Color, nil); err != nil {
			return err
		}
	}
	if patch.Brightness != nil {
		if err := c.SetDeviceBrightness(ctx, device.ID, *patch.Brightness, nil); err != nil {
			return err
		}
	}
	if patch.Name != nil {
		if err := c.SetDeviceName(ctx, device.ID, *patch.Name); err != nil {
			return err
		}
	}

	state := device.State
	if patch.State != nil {
		state = patch.State
	}
	if state == nil {
		return nil
	}
	if err := sleep(ctx, c.stateSettleDelay); err != nil {
		return err
	}
	return c.SetDeviceState(ctx, device.ID, *state)
}

// PutBulbs applies the same patch to every bulb known to the gateway.
func (c *Client) PutBulbs(ctx context.Context, patch model.DevicePatch) ([]model.Device, error) {
	bulbs, err := c.Devices(ctx, DeviceQuery{Type: model.DeviceTypeBulb})
	if err != nil {
		return nil, err
	}
	var eg errgroup.Group
	for _, bulb := range bulbs {
		eg.Go(func() error {
			return c.PutDevice(ctx, bulb, patch)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	c.logger.Info("updated all bulbs", zap.Int("count", len(bulbs)))
	return bulbs, nil
}

// setStates writes the same state to all devices concurrently.
func (c *Client) setStates(ctx context.Context, ids []int, state int) error {
	var eg errgroup.Group
	for _, id := range ids {
		eg.Go(func() error {
			return c.SetDeviceState(ctx, id, state)
		})
	}
	return eg.Wait()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
