package rf

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

// Outlets switches remote controlled power outlets and remembers the last state sent to each.
type Outlets struct {
	sender CodeSender
	logger *zap.Logger

	mu      sync.Mutex
	outlets []model.Outlet
}

func NewOutlets(sender CodeSender, outlets []model.Outlet) *Outlets {
	return &Outlets{
		sender:  sender,
		logger:  zap.L(),
		outlets: outlets,
	}
}

func (o *Outlets) List() []model.Outlet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return lo.Map(o.outlets, func(outlet model.Outlet, _ int) model.Outlet {
		if outlet.State != nil {
			outlet.State = lo.ToPtr(*outlet.State)
		}
		return outlet
	})
}

// Switch sends the on (state 1) or off (state 0) code of an outlet.
func (o *Outlets) Switch(ctx context.Context, id, state int) (model.Outlet, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.switchLocked(ctx, id, state)
}

// Toggle sends the opposite of the last state sent. Outlets never switched are turned on.
func (o *Outlets) Toggle(ctx context.Context, id int) (model.Outlet, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	outlet, _, ok := lo.FindIndexOf(o.outlets, func(outlet model.Outlet) bool { return outlet.ID == id })
	if !ok {
		return model.Outlet{}, fmt.Errorf("%w: %d", ErrOutletNotFound, id)
	}
	next := 1
	if lo.FromPtr(outlet.State) != 0 {
		next = 0
	}
	return o.switchLocked(ctx, id, next)
}

func (o *Outlets) switchLocked(ctx context.Context, id, state int) (model.Outlet, error) {
	_, idx, ok := lo.FindIndexOf(o.outlets, func(outlet model.Outlet) bool { return outlet.ID == id })
	if !ok {
		return model.Outlet{}, fmt.Errorf("%w: %d", ErrOutletNotFound, id)
	}
	if state != 0 {
		state = 1
	}
	outlet := &o.outlets[idx]
	code := outlet.Off
	if state == 1 {
		code = outlet.On
	}
	if err := o.sender.Send(ctx, code, outlet.Protocol, outlet.PulseLength); err != nil {
		return model.Outlet{}, err
	}
	outlet.State = lo.ToPtr(state)
	o.logger.Info("outlet switched", zap.Int("outlet_id", id), zap.String("name", outlet.Name), zap.Int("state", state))
	return *outlet, nil
}
