package rf

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/command"
	"github.com/anicoll/home-bridge/internal/pkg/config"
)

// CodeSender transmits a 433MHz code.
type CodeSender interface {
	Send(ctx context.Context, code, protocol, pulseLength int) error
}

type codesend struct {
	binary string
	run    command.Runner
	logger *zap.Logger
}

// NewCodeSender returns a CodeSender running the 433Utils codesend binary.
func NewCodeSender(cfg *config.RFConfig) *codesend {
	return &codesend{
		binary: cfg.CodesendBinary,
		run:    command.Run,
		logger: zap.L(),
	}
}

func (c *codesend) Send(ctx context.Context, code, protocol, pulseLength int) error {
	args := []string{strconv.Itoa(code), strconv.Itoa(protocol)}
	if pulseLength > 0 {
		args = append(args, strconv.Itoa(pulseLength))
	}
	if _, err := c.run(ctx, c.binary, args...); err != nil {
		return &SendError{Code: code, Err: err}
	}
	c.logger.Debug("rf code sent", zap.Int("code", code), zap.Int("protocol", protocol))
	return nil
}
