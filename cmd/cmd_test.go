package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anicoll/home-bridge/internal/pkg/config"
	"github.com/anicoll/home-bridge/internal/pkg/model"
)

// fakeCodeSource reports its codes once and blocks until ctx is done.
type fakeCodeSource struct {
	codes []int
	err   error
}

func (f *fakeCodeSource) Run(ctx context.Context, handle func(code int)) error {
	if f.err != nil {
		return f.err
	}
	for _, code := range f.codes {
		handle(code)
	}
	<-ctx.Done()
	return nil
}

type fakeBroker struct {
	connectErr error
	written    []model.TemperatureReadings
}

func (f *fakeBroker) Connect() error { return f.connectErr }
func (f *fakeBroker) Disconnect()    {}
func (f *fakeBroker) Write(_ context.Context, readings model.TemperatureReadings) error {
	f.written = append(f.written, readings)
	return nil
}

func (f *fakeBroker) RegisterSensor(context.Context, model.TemperatureSensor) error { return nil }

func replaceCodeSource(t *testing.T, src codeSource) {
	t.Helper()
	previous := newCodeSource
	newCodeSource = func(*config.RFConfig) codeSource { return src }
	t.Cleanup(func() { newCodeSource = previous })
}

func testConfig(t *testing.T, inventory string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(inventory), 0o600))
	return &config.Config{
		LogLevel:       "DEBUG",
		ListenAddr:     freeAddr(t),
		InventoryFile:  path,
		TradfriCfg:     &config.TradfriConfig{Binary: "coap-client", TimeoutSeconds: 10},
		MqttCfg:        &config.MqttConfig{},
		RFCfg:          &config.RFConfig{CodesendBinary: "true", Debounce: time.Second},
		TemperatureCfg: &config.TemperatureConfig{DevicesPath: t.TempDir(), RecordInterval: time.Minute, Retention: time.Hour},
		DashCfg:        &config.DashConfig{ListenAddr: "127.0.0.1:0", Debounce: time.Second},
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("DEBUG")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("LOUD")
	assert.Error(t, err)
}

func TestRun_InvalidAutomation(t *testing.T) {
	cfg := testConfig(t, `
rfButtons:
  - name: Door
    code: 5393
    action: outlet.explode 1
`)

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid automation")
}

func TestRun_BrokerUnavailable(t *testing.T) {
	previous := newBroker
	newBroker = func(*config.MqttConfig) broker { return &fakeBroker{connectErr: errors.New("connection refused")} }
	t.Cleanup(func() { newBroker = previous })

	cfg := testConfig(t, "")
	cfg.MqttCfg.Host = "tcp://127.0.0.1:1883"

	err := run(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "connect mqtt broker")
}

func TestRun_CodeSourceFailure(t *testing.T) {
	cause := errors.New("RFSniffer not found")
	replaceCodeSource(t, &fakeCodeSource{err: cause})
	cfg := testConfig(t, `
rfButtons:
  - name: Door
    code: 5393
    action: outlet.toggle 1
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.ErrorIs(t, run(ctx, cfg, zap.NewNop()), cause)
}

func TestRun_ServesAndAutomates(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true binary not available")
	}
	replaceCodeSource(t, &fakeCodeSource{codes: []int{5393}})
	cfg := testConfig(t, `
outlets:
  - id: 1
    name: Lamp
    on: 1361
    off: 1364
    protocol: 1
rfButtons:
  - name: Door
    code: 5393
    action: outlet.toggle 1
`)
	core, logs := observer.New(zapcore.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, zap.New(core))
	}()

	url := fmt.Sprintf("http://%s/rfoutlets/outlet", cfg.ListenAddr)
	var outlets []model.Outlet
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		outlets = nil
		if err := json.NewDecoder(resp.Body).Decode(&outlets); err != nil {
			return false
		}
		return len(outlets) == 1 && outlets[0].State != nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, 1, *outlets[0].State)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
	assert.Equal(t, 1, logs.FilterMessage("automation action executed").Len())
}
