package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes, every other method panics through the nil embedded interface.
type fakeClient struct {
	paho_mqtt.Client
	published []message
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload any) paho_mqtt.Token {
	c.published = append(c.published, message{topic, qos, retained, payload.([]byte)})
	return doneToken{}
}

func newTestService(t *testing.T) (*service, *fakeClient) {
	client := &fakeClient{}
	s := New(client)
	s.logger = zaptest.NewLogger(t)
	return s, client
}

func TestRegisterSensor(t *testing.T) {
	s, client := newTestService(t)
	sensor := model.TemperatureSensor{ID: 1, Name: "Outside", DeviceID: "28-0316a2799aff"}

	require.NoError(t, s.RegisterSensor(context.Background(), sensor))
	require.NoError(t, s.RegisterSensor(context.Background(), sensor))

	require.Len(t, client.published, 1)
	msg := client.published[0]
	assert.Equal(t, "homeassistant/sensor/temperature-1-outside/config", msg.topic)
	assert.True(t, msg.retained)

	var register model.RegisterMessage
	require.NoError(t, json.Unmarshal(msg.payload, &register))
	assert.Equal(t, "temperature", register.DeviceClass)
	assert.Equal(t, "°C", register.UnitOfMeasurement)
	assert.Equal(t, "~/state", register.StateTopic)
	assert.Equal(t, []string{"28-0316a2799aff"}, register.Device.Identifiers)
}

func TestWrite(t *testing.T) {
	s, client := newTestService(t)
	require.NoError(t, s.RegisterSensor(context.Background(), model.TemperatureSensor{ID: 1, Name: "Outside", DeviceID: "28-1"}))

	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Write(context.Background(), model.TemperatureReadings{
		{SensorID: 1, TimeStamp: ts, Value: -3.5},
		{SensorID: 2, TimeStamp: ts, Value: 20},
	}))

	require.Len(t, client.published, 2)
	state := client.published[1]
	assert.Equal(t, "homeassistant/sensor/temperature-1-outside/state", state.topic)
	assert.False(t, state.retained)
	assert.JSONEq(t, `{"value":"-3.50","timestamp":"2024-01-01T12:00:00Z"}`, string(state.payload))
}
