package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"sparesmart-backend/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesce     = 250 // milliseconds
)

// MQTTPublisher publishes events to "<prefix>/<entity>/<action>".
type MQTTPublisher struct {
	client pahomqtt.Client
	prefix string
	qos    byte
}

// Connect dials the broker and returns a publisher once the connection is up.
func Connect(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	opts := buildClientOptions(cfg)
	client := pahomqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	log.Info().Str("broker", brokerURL(cfg)).Msg("connected to MQTT broker")
	return newMQTTPublisher(client, cfg.TopicPrefix, byte(cfg.QoS)), nil
}

func newMQTTPublisher(client pahomqtt.Client, prefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(prefix, "/"), qos: qos}
}

func brokerURL(cfg config.MQTTConfig) string {
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)
}

func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(brokerURL(cfg))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(60 * time.Second)
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost, reconnecting")
	})
	return opts
}

// Topic returns the topic an event is published on.
func (p *MQTTPublisher) Topic(ev Event) string {
	return p.prefix + "/" + ev.Entity + "/" + ev.Action
}

// Publish sends the event and waits for the broker acknowledgement, the
// publish timeout or the context, whichever comes first.
func (p *MQTTPublisher) Publish(ctx context.Context, ev Event) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: encode event: %w", ErrPublishFailed, err)
	}

	token := p.client.Publish(p.Topic(ev), p.qos, false, payload)

	timer := time.NewTimer(defaultPublishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiesce)
	}
	return nil
}
