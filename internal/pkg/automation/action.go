package automation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/anicoll/home-bridge/internal/pkg/model"
	"github.com/anicoll/home-bridge/internal/pkg/tradfri"
)

var (
	ErrInvalidAction     = errors.New("invalid action")
	ErrTargetUnavailable = errors.New("action target not configured")
)

const defaultDiscoInterval = 2 * time.Second

type Lights interface {
	ToggleDeviceState(ctx context.Context, id int) (int, error)
	SetDeviceState(ctx context.Context, id, state int) error
	SetDeviceColor(ctx context.Context, id int, color string, transition *tradfri.Transition) error
	Disco(ctx context.Context, ids []int, on bool, interval, transition time.Duration) error
}

type Outlets interface {
	Switch(ctx context.Context, id, state int) (model.Outlet, error)
	Toggle(ctx context.Context, id int) (model.Outlet, error)
}

type Shutters interface {
	Up(ctx context.Context, id int, delay time.Duration) error
	Down(ctx context.Context, id int, delay time.Duration) error
}

// Targets are the devices actions operate on. A nil target makes its actions fail at run time.
type Targets struct {
	Lights   Lights
	Outlets  Outlets
	Shutters Shutters
}

// Action is a parsed action string such as "outlet.switch 1 0".
type Action struct {
	Raw string
	run func(ctx context.Context, t Targets) error
}

func (a Action) String() string {
	return a.Raw
}

func (a Action) Run(ctx context.Context, t Targets) error {
	return a.run(ctx, t)
}

type actionParser struct {
	args  int
	parse func(args []string) (func(ctx context.Context, t Targets) error, error)
}

var actionParsers = map[string]actionParser{
	"tradfri.toggle": {1, func(args []string) (func(context.Context, Targets) error, error) {
		id, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return withLights(func(ctx context.Context, l Lights) error {
			_, err := l.ToggleDeviceState(ctx, id)
			return err
		}), nil
	}},
	"tradfri.state": {2, func(args []string) (func(context.Context, Targets) error, error) {
		id, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		state, err := parseState(args[1])
		if err != nil {
			return nil, err
		}
		return withLights(func(ctx context.Context, l Lights) error {
			return l.SetDeviceState(ctx, id, state)
		}), nil
	}},
	"tradfri.color": {2, func(args []string) (func(context.Context, Targets) error, error) {
		id, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		color := args[1]
		if _, err := tradfri.LookupColor(color); err != nil && color != "random" && color != "zufall" {
			return nil, err
		}
		return withLights(func(ctx context.Context, l Lights) error {
			return l.SetDeviceColor(ctx, id, color, nil)
		}), nil
	}},
	"tradfri.disco": {2, func(args []string) (func(context.Context, Targets) error, error) {
		on, err := parseOnOff(args[0])
		if err != nil {
			return nil, err
		}
		ids, err := parseIDList(args[1])
		if err != nil {
			return nil, err
		}
		return withLights(func(ctx context.Context, l Lights) error {
			return l.Disco(ctx, ids, on, defaultDiscoInterval, 0)
		}), nil
	}},
	"outlet.toggle": {1, func(args []string) (func(context.Context, Targets) error, error) {
		id, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return withOutlets(func(ctx context.Context, o Outlets) error {
			_, err := o.Toggle(ctx, id)
			return err
		}), nil
	}},
	"outlet.switch": {2, func(args []string) (func(context.Context, Targets) error, error) {
		id, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		state, err := parseState(args[1])
		if err != nil {
			return nil, err
		}
		return withOutlets(func(ctx context.Context, o Outlets) error {
			_, err := o.Switch(ctx, id, state)
			return err
		}), nil
	}},
	"shutter.up": {1, func(args []string) (func(context.Context, Targets) error, error) {
		id, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return withShutters(func(ctx context.Context, s Shutters) error {
			return s.Up(ctx, id, 0)
		}), nil
	}},
	"shutter.down": {1, func(args []string) (func(context.Context, Targets) error, error) {
		id, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return withShutters(func(ctx context.Context, s Shutters) error {
			return s.Down(ctx, id, 0)
		}), nil
	}},
}

// ActionNames lists the supported action verbs.
func ActionNames() []string {
	names := lo.Keys(actionParsers)
	slices.Sort(names)
	return names
}

// ParseAction validates an action string. Fields are separated by whitespace.
func ParseAction(raw string) (Action, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("%w: empty", ErrInvalidAction)
	}
	parser, ok := actionParsers[fields[0]]
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown verb %q", ErrInvalidAction, fields[0])
	}
	args := fields[1:]
	if len(args) != parser.args {
		return Action{}, fmt.Errorf("%w: %q takes %d arguments, got %d", ErrInvalidAction, fields[0], parser.args, len(args))
	}
	run, err := parser.parse(args)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %q: %w", ErrInvalidAction, raw, err)
	}
	return Action{Raw: strings.Join(fields, " "), run: run}, nil
}

func withLights(fn func(ctx context.Context, l Lights) error) func(context.Context, Targets) error {
	return func(ctx context.Context, t Targets) error {
		if t.Lights == nil {
			return fmt.Errorf("%w: lights", ErrTargetUnavailable)
		}
		return fn(ctx, t.Lights)
	}
}

func withOutlets(fn func(ctx context.Context, o Outlets) error) func(context.Context, Targets) error {
	return func(ctx context.Context, t Targets) error {
		if t.Outlets == nil {
			return fmt.Errorf("%w: outlets", ErrTargetUnavailable)
		}
		return fn(ctx, t.Outlets)
	}
}

func withShutters(fn func(ctx context.Context, s Shutters) error) func(context.Context, Targets) error {
	return func(ctx context.Context, t Targets) error {
		if t.Shutters == nil {
			return fmt.Errorf("%w: shutters", ErrTargetUnavailable)
		}
		return fn(ctx, t.Shutters)
	}
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseState(s string) (int, error) {
	switch s {
	case "0", "off":
		return 0, nil
	case "1", "on":
		return 1, nil
	}
	return 0, fmt.Errorf("state must be 0 or 1, got %q", s)
}

func parseOnOff(s string) (bool, error) {
	state, err := parseState(s)
	return state == 1, err
}

func parseIDList(s string) ([]int, error) {
	ids := []int{}
	for _, part := range strings.Split(s, ",") {
		id, err := parseInt(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
