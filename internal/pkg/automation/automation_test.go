package automation

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/home-bridge/internal/pkg/config"
	"github.com/anicoll/home-bridge/internal/pkg/model"
	"github.com/anicoll/home-bridge/internal/pkg/tradfri"
)

// recorder implements every target and records the calls as strings.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) ToggleDeviceState(_ context.Context, id int) (int, error) {
	r.add("light toggle %d", id)
	return 1, nil
}

func (r *recorder) SetDeviceState(_ context.Context, id, state int) error {
	r.add("light state %d %d", id, state)
	return nil
}

func (r *recorder) SetDeviceColor(_ context.Context, id int, color string, _ *tradfri.Transition) error {
	r.add("light color %d %s", id, color)
	return nil
}

func (r *recorder) Disco(_ context.Context, ids []int, on bool, interval, _ time.Duration) error {
	r.add("disco %v %v %s", ids, on, interval)
	return nil
}

func (r *recorder) Switch(_ context.Context, id, state int) (model.Outlet, error) {
	r.add("outlet switch %d %d", id, state)
	return model.Outlet{ID: id}, nil
}

func (r *recorder) Toggle(_ context.Context, id int) (model.Outlet, error) {
	r.add("outlet toggle %d", id)
	return model.Outlet{ID: id}, nil
}

func (r *recorder) Up(_ context.Context, id int, _ time.Duration) error {
	r.add("shutter up %d", id)
	return nil
}

func (r *recorder) Down(_ context.Context, id int, _ time.Duration) error {
	r.add("shutter down %d", id)
	return nil
}

func targets(r *recorder) Targets {
	return Targets{Lights: r, Outlets: r, Shutters: r}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"tradfri.toggle 65537", "light toggle 65537"},
		{"tradfri.state 65537 off", "light state 65537 0"},
		{"tradfri.color 65537 grün", "light color 65537 grün"},
		{"tradfri.color 65537 random", "light color 65537 random"},
		{"tradfri.disco on 1,2", "disco [1 2] true 2s"},
		{"outlet.toggle 3", "outlet toggle 3"},
		{"  outlet.switch   3 1 ", "outlet switch 3 1"},
		{"shutter.up 1", "shutter up 1"},
		{"shutter.down 1", "shutter down 1"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			action, err := ParseAction(tt.raw)
			require.NoError(t, err)

			r := &recorder{}
			require.NoError(t, action.Run(context.Background(), targets(r)))
			assert.Equal(t, []string{tt.want}, r.all())
		})
	}
}

func TestParseAction_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"lamp.on 1",
		"tradfri.toggle",
		"tradfri.toggle one",
		"tradfri.state 1 2",
		"tradfri.color 1 mauve",
		"tradfri.disco maybe 1,2",
		"tradfri.disco on 1,x",
		"outlet.switch 1",
	} {
		_, err := ParseAction(raw)
		assert.ErrorIs(t, err, ErrInvalidAction, raw)
	}
}

func TestAction_MissingTarget(t *testing.T) {
	action, err := ParseAction("shutter.up 1")
	require.NoError(t, err)
	assert.ErrorIs(t, action.Run(context.Background(), Targets{}), ErrTargetUnavailable)
}

func TestActionNames(t *testing.T) {
	assert.Contains(t, ActionNames(), "tradfri.disco")
	assert.Len(t, ActionNames(), 8)
}

func testConfig() *config.Config {
	return &config.Config{
		RFCfg:   &config.RFConfig{Debounce: time.Minute},
		DashCfg: &config.DashConfig{Debounce: time.Minute},
	}
}

func TestEngine_RF(t *testing.T) {
	r := &recorder{}
	inv := &config.Inventory{
		RFButtons: []config.RFButton{{Name: "Door", Code: 5393, Action: "outlet.toggle 1"}},
		WindowSensors: []config.WindowSensor{{
			Name: "Kitchen window", CodeOpened: 10, CodeClosed: 14,
			ActionOpened: "tradfri.state 65537 0", ActionClosed: "tradfri.state 65537 1",
		}},
	}
	e, err := New(testConfig(), inv, targets(r))
	require.NoError(t, err)
	e.logger = zaptest.NewLogger(t)
	ctx := context.Background()

	e.HandleRFCode(ctx, 5393)
	e.HandleRFCode(ctx, 5393) // debounced
	e.HandleRFCode(ctx, 10)
	e.HandleRFCode(ctx, 99) // unknown
	e.Stop()

	assert.ElementsMatch(t, []string{"outlet toggle 1", "light state 65537 0"}, r.all())
}

func TestEngine_DashButton(t *testing.T) {
	r := &recorder{}
	inv := &config.Inventory{
		DashButtons: []config.DashButton{{Label: "coffee", MacAddress: "AC:63:BE:00:11:22", Action: "outlet.switch 2 1"}},
	}
	e, err := New(testConfig(), inv, targets(r))
	require.NoError(t, err)
	e.logger = zaptest.NewLogger(t)

	mac, err := net.ParseMAC("ac:63:be:00:11:22")
	require.NoError(t, err)
	e.HandleDashButton(context.Background(), mac)
	e.HandleDashButton(context.Background(), mac)
	e.Stop()

	assert.Equal(t, []string{"outlet switch 2 1"}, r.all())
}

func TestEngine_Cron(t *testing.T) {
	r := &recorder{}
	inv := &config.Inventory{
		CronJobs: []config.CronJob{{Name: "Every second", Schedule: "* * * * * *", Action: "shutter.down 1"}},
	}
	e, err := New(testConfig(), inv, targets(r))
	require.NoError(t, err)
	e.logger = zaptest.NewLogger(t)

	e.Start()
	assert.Eventually(t, func() bool { return len(r.all()) > 0 }, 3*time.Second, 20*time.Millisecond)
	e.Stop()
	assert.Equal(t, "shutter down 1", r.all()[0])
}

func TestEngine_InvalidInventory(t *testing.T) {
	inv := &config.Inventory{
		CronJobs:    []config.CronJob{{Name: "broken", Schedule: "every day", Action: "shutter.up 1"}},
		RFButtons:   []config.RFButton{{Name: "Door", Code: 1, Action: "outlet.explode 1"}},
		DashButtons: []config.DashButton{{Label: "coffee", MacAddress: "not-a-mac", Action: "outlet.toggle 1"}},
	}
	_, err := New(testConfig(), inv, Targets{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cron job "broken"`)
	assert.Contains(t, err.Error(), `rf trigger "Door"`)
	assert.Contains(t, err.Error(), `dash button "coffee"`)
}

func TestDebouncer(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := newDebouncer(time.Second)
	d.now = func() time.Time { return now }

	assert.True(t, d.allow("a"))
	assert.False(t, d.allow("a"))
	assert.True(t, d.allow("b"))

	now = now.Add(time.Second)
	assert.True(t, d.allow("a"))
}

func dhcpPacket(op, msgType byte, mac []byte) []byte {
	packet := make([]byte, dhcpOptionsOffset)
	packet[0] = op
	packet[1] = dhcpHTypeEthernet
	packet[2] = byte(len(mac))
	copy(packet[dhcpChaddrOffset:], mac)
	copy(packet[dhcpCookieOffset:], dhcpMagicCookie)
	return append(packet, dhcpOptionPad, dhcpOptionMsgType, 1, msgType, dhcpOptionEnd)
}

func TestParseDHCPRequest(t *testing.T) {
	mac := []byte{0xac, 0x63, 0xbe, 0x00, 0x11, 0x22}

	got, ok := ParseDHCPRequest(dhcpPacket(dhcpOpRequest, dhcpRequest, mac))
	require.True(t, ok)
	assert.Equal(t, "ac:63:be:00:11:22", got.String())

	_, ok = ParseDHCPRequest(dhcpPacket(dhcpOpRequest, dhcpDiscover, mac))
	assert.True(t, ok)

	_, ok = ParseDHCPRequest(dhcpPacket(2, dhcpRequest, mac))
	assert.False(t, ok, "reply")
	_, ok = ParseDHCPRequest(dhcpPacket(dhcpOpRequest, 7, mac))
	assert.False(t, ok, "release")
	_, ok = ParseDHCPRequest(dhcpPacket(dhcpOpRequest, dhcpRequest, mac)[:100])
	assert.False(t, ok, "truncated")
}

func TestDHCPListener_Run(t *testing.T) {
	listener := NewDHCPListener("127.0.0.1:0")
	listener.logger = zaptest.NewLogger(t)

	var conn net.PacketConn
	ready := make(chan struct{})
	listener.listen = func(network, address string) (net.PacketConn, error) {
		c, err := net.ListenPacket(network, address)
		conn = c
		close(ready)
		return c, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	macs := make(chan net.HardwareAddr, 1)
	done := make(chan error, 1)
	go func() {
		done <- listener.Run(ctx, func(mac net.HardwareAddr) { macs <- mac })
	}()
	<-ready

	client, err := net.Dial("udp4", conn.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()
	_, err = client.Write(dhcpPacket(dhcpOpRequest, dhcpDiscover, []byte{1, 2, 3, 4, 5, 6}))
	require.NoError(t, err)

	select {
	case mac := <-macs:
		assert.Equal(t, "01:02:03:04:05:06", mac.String())
	case <-time.After(2 * time.Second):
		t.Fatal("no dhcp request received")
	}

	cancel()
	assert.NoError(t, <-done)
}
