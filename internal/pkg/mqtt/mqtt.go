package mqtt

import (
	"errors"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/config"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 10 * time.Second
	clientID       = "home-bridge"
)

type service struct {
	client paho_mqtt.Client
	logger *zap.Logger

	mu                sync.Mutex
	configuredSensors map[int]string // sensor id to topic slug
}

// NewClient builds a paho client for the configured broker.
func NewClient(cfg *config.MqttConfig) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	return paho_mqtt.NewClient(opts)
}

func New(client paho_mqtt.Client) *service {
	return &service{
		client:            client,
		logger:            zap.L(),
		configuredSensors: make(map[int]string),
	}
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(connectTimeout)
	if err := token.Error(); err != nil {
		return err
	}
	if res {
		return nil
	}
	return errors.New("unable to connect in time")
}

func (s *service) Disconnect() {
	s.client.Disconnect(250)
}
