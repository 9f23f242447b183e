package automation

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
)

// DHCP message layout, RFC 2131.
const (
	dhcpOpRequest     = 1
	dhcpHTypeEthernet = 1
	dhcpChaddrOffset  = 28
	dhcpCookieOffset  = 236
	dhcpOptionsOffset = 240
	dhcpOptionPad     = 0
	dhcpOptionEnd     = 255
	dhcpOptionMsgType = 53
	dhcpDiscover      = 1
	dhcpRequest       = 3
)

var dhcpMagicCookie = []byte{99, 130, 83, 99}

// DHCPListener watches DHCP broadcasts. Dash buttons send one every time they are pressed.
type DHCPListener struct {
	addr   string
	logger *zap.Logger
	listen func(network, address string) (net.PacketConn, error)
}

func NewDHCPListener(addr string) *DHCPListener {
	return &DHCPListener{
		addr:   addr,
		logger: zap.L(),
		listen: net.ListenPacket,
	}
}

// Run reports the client hardware address of every DHCP discover or request until ctx is done.
func (l *DHCPListener) Run(ctx context.Context, handle func(mac net.HardwareAddr)) error {
	conn, err := l.listen("udp4", l.addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	l.logger.Info("listening for dash buttons", zap.String("addr", l.addr))

	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if mac, ok := ParseDHCPRequest(buf[:n]); ok {
			handle(mac)
		}
	}
}

// ParseDHCPRequest returns the client hardware address of a DHCP discover or request message.
func ParseDHCPRequest(packet []byte) (net.HardwareAddr, bool) {
	if len(packet) < dhcpOptionsOffset || packet[0] != dhcpOpRequest || packet[1] != dhcpHTypeEthernet {
		return nil, false
	}
	hlen := int(packet[2])
	if hlen != 6 {
		return nil, false
	}
	if string(packet[dhcpCookieOffset:dhcpOptionsOffset]) != string(dhcpMagicCookie) {
		return nil, false
	}
	msgType, ok := dhcpMessageType(packet[dhcpOptionsOffset:])
	if !ok || (msgType != dhcpDiscover && msgType != dhcpRequest) {
		return nil, false
	}
	mac := make(net.HardwareAddr, hlen)
	copy(mac, packet[dhcpChaddrOffset:dhcpChaddrOffset+hlen])
	return mac, true
}

func dhcpMessageType(options []byte) (byte, bool) {
	for i := 0; i < len(options); {
		code := options[i]
		switch code {
		case dhcpOptionPad:
			i++
			continue
		case dhcpOptionEnd:
			return 0, false
		}
		if i+1 >= len(options) {
			return 0, false
		}
		length := int(options[i+1])
		if i+2+length > len(options) {
			return 0, false
		}
		if code == dhcpOptionMsgType && length == 1 {
			return options[i+2], true
		}
		i += 2 + length
	}
	return 0, false
}
