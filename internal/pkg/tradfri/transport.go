package tradfri

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/command"
	"github.com/anicoll/home-bridge/internal/pkg/config"
)

type Method string

func (m Method) String() string {
	return string(m)
}

const (
	MethodGet  Method = "get"
	MethodPut  Method = "put"
	MethodPost Method = "post"
)

const coapPort = "5684"

// OK is the response of a request the gateway acknowledged without a payload.
var OK = json.RawMessage(`"OK"`)

// Transport performs exactly one request against the gateway.
type Transport interface {
	Request(ctx context.Context, method Method, path string, body []byte) (json.RawMessage, error)
}

type coapTransport struct {
	cfg    *config.TradfriConfig
	run    command.Runner
	logger *zap.Logger
}

// NewCoapTransport returns a Transport spawning the libcoap coap-client binary per request.
func NewCoapTransport(cfg *config.TradfriConfig) *coapTransport {
	return &coapTransport{
		cfg:    cfg,
		run:    command.Run,
		logger: zap.L(),
	}
}

func (t *coapTransport) args(method Method, path string, body []byte) []string {
	args := []string{
		"-B", strconv.Itoa(t.cfg.TimeoutSeconds),
		"-m", method.String(),
		"-u", t.cfg.User,
		"-k", t.cfg.PSK,
	}
	if len(body) > 0 {
		args = append(args, "-e", string(body))
	}
	return append(args, fmt.Sprintf("coaps://%s:%s/%s", t.cfg.Gateway, coapPort, path))
}

func (t *coapTransport) Request(ctx context.Context, method Method, path string, body []byte) (json.RawMessage, error) {
	t.logger.Debug("coap request", zap.String("method", method.String()), zap.String("path", path), zap.ByteString("body", body))

	out, err := t.run(ctx, t.cfg.Binary, t.args(method, path, body)...)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	payload, err := parseOutput(out)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	return payload, nil
}

// parseOutput returns the first line of the command output that holds a JSON
// object or array. Output without such a line is an acknowledgement.
func parseOutput(out []byte) (json.RawMessage, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "{") && !strings.HasPrefix(line, "[") {
			continue
		}
		if !json.Valid([]byte(line)) {
			return nil, fmt.Errorf("invalid json payload: %q", line)
		}
		return json.RawMessage(line), nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return OK, nil
}
