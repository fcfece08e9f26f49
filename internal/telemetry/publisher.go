// Package telemetry publishes completed session summaries over MQTT so
// clinic dashboards can pick them up. The publisher is optional; with no
// broker configured every call is a no-op.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nmehta/gonio/internal/store"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Config holds the MQTT connection settings.
type Config struct {
	BrokerURL   string // e.g. tcp://localhost:1883; empty disables telemetry
	TopicPrefix string // defaults to "gonio"
	ClientID    string // defaults to a timestamped id
}

// Publisher publishes session summaries to an MQTT broker.
type Publisher struct {
	config Config
	client mqtt.Client
}

// NewPublisher creates a Publisher. With an empty broker URL the publisher
// is disabled and Connect and PublishSummary do nothing.
func NewPublisher(config Config) *Publisher {
	if config.TopicPrefix == "" {
		config.TopicPrefix = "gonio"
	}
	if config.ClientID == "" {
		config.ClientID = fmt.Sprintf("gonio-%d", time.Now().Unix())
	}
	return &Publisher{config: config}
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p.config.BrokerURL != ""
}

// Connect dials the broker. Once the first connection succeeds the client
// keeps reconnecting in the background.
func (p *Publisher) Connect() error {
	if !p.Enabled() {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.config.BrokerURL)
	opts.SetClientID(p.config.ClientID)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Printf("[MQTT] Connected to %s", p.config.BrokerURL)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("[MQTT] Connection lost: %v (will auto-reconnect)", err)
	}

	client := mqtt.NewClient(opts)

	log.Printf("[MQTT] Connecting to %s as %s...", p.config.BrokerURL, p.config.ClientID)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect failed: %w", err)
	}

	p.client = client
	return nil
}

// PublishSummary publishes the completed session as JSON to
// <prefix>/sessions/<session id>.
func (p *Publisher) PublishSummary(sess *store.Session) error {
	if !p.Enabled() {
		return nil
	}
	if p.client == nil {
		return fmt.Errorf("mqtt client is not connected")
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	token := p.client.Publish(p.topic(sess.ID), 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish failed: %w", err)
	}
	return nil
}

// Close disconnects from the broker, letting in-flight messages drain.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(1000)
	}
	p.client = nil
}

func (p *Publisher) topic(sessionID string) string {
	return p.config.TopicPrefix + "/sessions/" + sessionID
}
