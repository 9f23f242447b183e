package tradfri

import (
	"context"
	"fmt"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

func (c *Client) ScheduleIDs(ctx context.Context) ([]int, error) {
	return c.ids(ctx, pathSchedules)
}

// Schedule returns the gateway timer unmodified.
func (c *Client) Schedule(ctx context.Context, id int) (model.Schedule, error) {
	raw, err := c.resource(ctx, resourcePath(pathSchedules, id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %d", ErrScheduleNotFound, id)
	}
	return model.Schedule(raw), nil
}

func (c *Client) Schedules(ctx context.Context) ([]model.Schedule, error) {
	ids, err := c.ScheduleIDs(ctx)
	if err != nil {
		return nil, err
	}
	return fetchAll(ctx, ids, c.Schedule)
}
