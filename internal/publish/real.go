package publish

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"heater_control/internal/models"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// MQTTPublisher publishes samples to a real broker.
type MQTTPublisher struct {
	client paho.Client
	topic  string
}

// NewMQTTPublisher connects to broker (e.g. tcp://localhost:1883).
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to broker %s: timeout", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", broker, err)
	}
	return &MQTTPublisher{client: client, topic: topic}, nil
}

// Publish sends the sample at QoS 0; a dropped sample is acceptable.
func (p *MQTTPublisher) Publish(sessionID string, sample models.TelemetrySample) error {
	payload, err := FormatPayload(sessionID, sample)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish: timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
