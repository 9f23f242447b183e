package tradfri

import (
	"context"
	"fmt"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

type GroupQuery struct {
	SortBy  []string
	WithRaw bool
}

func (c *Client) GroupIDs(ctx context.Context) ([]int, error) {
	return c.ids(ctx, pathGroups)
}

// Group fetches a single group. An id unknown to the gateway fails with ErrGroupNotFound.
func (c *Client) Group(ctx context.Context, id int, withRaw bool) (model.Group, error) {
	raw, err := c.resource(ctx, resourcePath(pathGroups, id))
	if err != nil {
		return model.Group{}, err
	}
	if raw == nil {
		return model.Group{}, fmt.Errorf("%w: %d", ErrGroupNotFound, id)
	}
	return SanitizeGroup(raw, withRaw), nil
}

func (c *Client) Groups(ctx context.Context, query GroupQuery) ([]model.Group, error) {
	ids, err := c.GroupIDs(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := fetchAll(ctx, ids, func(ctx context.Context, id int) (model.Group, error) {
		return c.Group(ctx, id, query.WithRaw)
	})
	if err != nil {
		return nil, err
	}
	if err := sortBy(groups, query.SortBy, groupComparators); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) SetGroupState(ctx context.Context, id, state int) error {
	body, err := newGroupBody(stateSetting(state))
	if err != nil {
		return err
	}
	return c.put(ctx, resourcePath(pathGroups, id), body)
}

func (c *Client) SetGroupBrightness(ctx context.Context, id, brightness int, transition *Transition) error {
	setting, err := brightnessSetting(brightness, transition)
	if err != nil {
		return err
	}
	body, err := newGroupBody(setting)
	if err != nil {
		return err
	}
	return c.put(ctx, resourcePath(pathGroups, id), body)
}

func (c *Client) SetGroupName(ctx context.Context, id int, name string) error {
	return c.putName(ctx, resourcePath(pathGroups, id), name)
}

// SetGroupColor always fails, the gateway ignores colour settings on groups.
func (c *Client) SetGroupColor(_ context.Context, id int, color string, _ *Transition) error {
	return fmt.Errorf("set color %q on group %d: %w", color, id, ErrUnsupportedOperation)
}
