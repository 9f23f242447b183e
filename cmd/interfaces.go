package cmd

import (
	"context"
	"net"

	"github.com/anicoll/home-bridge/internal/pkg/automation"
	"github.com/anicoll/home-bridge/internal/pkg/config"
	"github.com/anicoll/home-bridge/internal/pkg/mqtt"
	"github.com/anicoll/home-bridge/internal/pkg/publisher"
	"github.com/anicoll/home-bridge/internal/pkg/rf"
)

// codeSource reports received RF codes until ctx is done.
type codeSource interface {
	Run(ctx context.Context, handle func(code int)) error
}

// presenceSource reports the hardware address of devices joining the network.
type presenceSource interface {
	Run(ctx context.Context, handle func(mac net.HardwareAddr)) error
}

type broker interface {
	publisher.Publisher
	Connect() error
	Disconnect()
}

// constructors of the external event sources, replaced in tests.
var (
	newCodeSource = func(cfg *config.RFConfig) codeSource {
		return rf.NewSniffer(cfg)
	}
	newPresenceSource = func(cfg *config.DashConfig) presenceSource {
		return automation.NewDHCPListener(cfg.ListenAddr)
	}
	newBroker = func(cfg *config.MqttConfig) broker {
		return mqtt.New(mqtt.NewClient(cfg))
	}
)
