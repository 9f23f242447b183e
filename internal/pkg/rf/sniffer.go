package rf

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/config"
)

const (
	receivedPrefix = "Received "
	restartDelay   = 5 * time.Second
)

// Sniffer runs the RFSniffer binary and reports every received code.
type Sniffer struct {
	binary string
	logger *zap.Logger
	start  func(ctx context.Context, binary string) (io.ReadCloser, func() error, error)
}

func NewSniffer(cfg *config.RFConfig) *Sniffer {
	return &Sniffer{
		binary: cfg.SnifferBinary,
		logger: zap.L(),
		start:  startProcess,
	}
}

func startProcess(ctx context.Context, binary string) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, binary)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	return stdout, cmd.Wait, nil
}

// Run keeps the sniffer process alive until ctx is done, restarting it when it exits.
func (s *Sniffer) Run(ctx context.Context, handle func(code int)) error {
	for {
		err := s.runOnce(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Error("rf sniffer exited, restarting", zap.Error(err), zap.Duration("delay", restartDelay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(restartDelay):
		}
	}
}

func (s *Sniffer) runOnce(ctx context.Context, handle func(code int)) error {
	stdout, wait, err := s.start(ctx, s.binary)
	if err != nil {
		return err
	}
	s.logger.Info("rf sniffer listening", zap.String("binary", s.binary))
	scanErr := s.consume(stdout, handle)
	waitErr := wait()
	if scanErr != nil {
		return scanErr
	}
	if waitErr != nil {
		return waitErr
	}
	return errors.New("rf sniffer stopped")
}

func (s *Sniffer) consume(r io.Reader, handle func(code int)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		code, ok := ParseReceived(line)
		if !ok {
			s.logger.Warn("rf sniffer sent unrecognized line", zap.String("line", line))
			continue
		}
		s.logger.Debug("rf code received", zap.Int("code", code))
		handle(code)
	}
	return scanner.Err()
}

// ParseReceived extracts the code from a "Received <code>" line.
func ParseReceived(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, receivedPrefix)
	if !ok {
		return 0, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return code, true
}
