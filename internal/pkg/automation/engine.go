package automation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/config"
)

// cronParser accepts standard five field specs and an optional leading seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type trigger struct {
	name   string
	action Action
}

// Engine runs the configured actions when their trigger fires: a cron schedule,
// an RF code or a dash button press.
type Engine struct {
	targets Targets
	cron    *cron.Cron
	logger  *zap.Logger

	rf           map[int][]trigger
	dash         map[string]trigger
	rfDebounce   *debouncer
	dashDebounce *debouncer

	running sync.WaitGroup
}

// New parses every action of the inventory. Any invalid action or schedule fails the whole engine.
func New(cfg *config.Config, inv *config.Inventory, targets Targets) (*Engine, error) {
	e := &Engine{
		targets:      targets,
		cron:         cron.New(cron.WithParser(cronParser)),
		logger:       zap.L(),
		rf:           make(map[int][]trigger),
		dash:         make(map[string]trigger),
		rfDebounce:   newDebouncer(cfg.RFCfg.Debounce),
		dashDebounce: newDebouncer(cfg.DashCfg.Debounce),
	}

	var errs []error
	for _, job := range inv.CronJobs {
		errs = append(errs, e.addCronJob(cfg.CronSpec(job.Schedule), job))
	}
	for _, button := range inv.RFButtons {
		errs = append(errs, e.addRF(button.Code, button.Name, button.Action))
	}
	for _, sensor := range inv.WindowSensors {
		errs = append(errs, e.addRF(sensor.CodeOpened, sensor.Name+" opened", sensor.ActionOpened))
		errs = append(errs, e.addRF(sensor.CodeClosed, sensor.Name+" closed", sensor.ActionClosed))
	}
	for _, button := range inv.DashButtons {
		errs = append(errs, e.addDash(button))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) addCronJob(spec string, job config.CronJob) error {
	action, err := ParseAction(job.Action)
	if err != nil {
		return fmt.Errorf("cron job %q: %w", job.Name, err)
	}
	name := slug.Make(job.Name)
	if _, err := e.cron.AddFunc(spec, func() {
		e.execute(context.Background(), trigger{name: name, action: action})
	}); err != nil {
		return fmt.Errorf("cron job %q: %w", job.Name, err)
	}
	return nil
}

func (e *Engine) addRF(code int, name, raw string) error {
	if raw == "" {
		return nil
	}
	action, err := ParseAction(raw)
	if err != nil {
		return fmt.Errorf("rf trigger %q: %w", name, err)
	}
	e.rf[code] = append(e.rf[code], trigger{name: slug.Make(name), action: action})
	return nil
}

func (e *Engine) addDash(button config.DashButton) error {
	mac, err := net.ParseMAC(button.MacAddress)
	if err != nil {
		return fmt.Errorf("dash button %q: %w", button.Label, err)
	}
	action, err := ParseAction(button.Action)
	if err != nil {
		return fmt.Errorf("dash button %q: %w", button.Label, err)
	}
	e.dash[mac.String()] = trigger{name: slug.Make(button.Label), action: action}
	return nil
}

// Start runs the cron scheduler in the background.
func (e *Engine) Start() {
	e.cron.Start()
	e.logger.Info("automation started", zap.Int("cron_jobs", len(e.cron.Entries())), zap.Int("rf_codes", len(e.rf)), zap.Int("dash_buttons", len(e.dash)))
}

// Stop stops the scheduler and waits for running actions.
func (e *Engine) Stop() {
	<-e.cron.Stop().Done()
	e.running.Wait()
}

// HandleRFCode runs the actions bound to code unless the same code was seen within the debounce window.
func (e *Engine) HandleRFCode(ctx context.Context, code int) {
	triggers, ok := e.rf[code]
	if !ok {
		e.logger.Debug("no trigger for rf code", zap.Int("code", code))
		return
	}
	if !e.rfDebounce.allow(strconv.Itoa(code)) {
		return
	}
	for _, t := range triggers {
		e.dispatch(ctx, t)
	}
}

// HandleDashButton runs the action of the button with the given hardware address.
func (e *Engine) HandleDashButton(ctx context.Context, mac net.HardwareAddr) {
	key := strings.ToLower(mac.String())
	t, ok := e.dash[key]
	if !ok {
		return
	}
	if !e.dashDebounce.allow(key) {
		return
	}
	e.dispatch(ctx, t)
}

// dispatch runs the action without blocking the trigger source.
func (e *Engine) dispatch(ctx context.Context, t trigger) {
	e.running.Add(1)
	go func() {
		defer e.running.Done()
		e.execute(ctx, t)
	}()
}

func (e *Engine) execute(ctx context.Context, t trigger) {
	if err := t.action.Run(ctx, e.targets); err != nil {
		e.logger.Error("automation action failed", zap.String("trigger", t.name), zap.Stringer("action", t.action), zap.Error(err))
		return
	}
	e.logger.Info("automation action executed", zap.String("trigger", t.name), zap.Stringer("action", t.action))
}
