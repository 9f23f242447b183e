package rf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Shutters moves roller shutters. Delayed moves run in the background.
type Shutters struct {
	sender   CodeSender
	logger   *zap.Logger
	shutters []model.Shutter
	pending  sync.WaitGroup
}

func NewShutters(sender CodeSender, shutters []model.Shutter) *Shutters {
	return &Shutters{
		sender:   sender,
		logger:   zap.L(),
		shutters: shutters,
	}
}

func (s *Shutters) List() []model.Shutter {
	return s.shutters
}

func (s *Shutters) Up(ctx context.Context, id int, delay time.Duration) error {
	return s.Move(ctx, id, Up, delay)
}

func (s *Shutters) Down(ctx context.Context, id int, delay time.Duration) error {
	return s.Move(ctx, id, Down, delay)
}

// Move sends the code for direction. With a positive delay the code is sent later
// and Move only validates the shutter id.
func (s *Shutters) Move(ctx context.Context, id int, direction Direction, delay time.Duration) error {
	shutter, ok := lo.Find(s.shutters, func(sh model.Shutter) bool { return sh.ID == id })
	if !ok {
		return fmt.Errorf("%w: %d", ErrShutterNotFound, id)
	}
	code := shutter.CodeDown
	if direction == Up {
		code = shutter.CodeUp
	}
	if delay <= 0 {
		return s.send(ctx, shutter, direction, code)
	}

	s.pending.Add(1)
	time.AfterFunc(delay, func() {
		defer s.pending.Done()
		if err := s.send(context.Background(), shutter, direction, code); err != nil {
			s.logger.Error("delayed shutter move failed", zap.Int("shutter_id", id), zap.Error(err))
		}
	})
	return nil
}

func (s *Shutters) send(ctx context.Context, shutter model.Shutter, direction Direction, code int) error {
	if err := s.sender.Send(ctx, code, shutter.Protocol, 0); err != nil {
		return err
	}
	s.logger.Info("shutter moved", zap.Int("shutter_id", shutter.ID), zap.String("name", shutter.Name), zap.String("direction", string(direction)))
	return nil
}

// Wait blocks until all delayed moves were sent.
func (s *Shutters) Wait() {
	s.pending.Wait()
}
