// Package publish pushes completed fleet reports to an MQTT topic so
// dashboards and downstream consumers can follow wash decisions live.
// Publication is best-effort and never affects the evaluation itself.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/pollenops/pollenguard/core/history"
	"github.com/pollenops/pollenguard/core/logger"
)

// Config defines the connection parameters for the report publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
	Retain   bool   `json:"retain"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = fmt.Sprintf("pollenguard-%s", uuid.NewString()[:8])
	}
	if c.Topic == "" {
		c.Topic = "pollenguard/reports"
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("broker is required when the publisher is enabled")
	}
	return nil
}

// Publisher sends report records over MQTT.
type Publisher struct {
	cli paho.Client
	cfg Config
	log logger.Logger
}

// NewPublisher connects to the broker and returns a Publisher.
func NewPublisher(cfg Config, log logger.Logger) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{cli: cli, cfg: cfg, log: log}, nil
}

// Publish sends one report record as JSON.
func (p *Publisher) Publish(rec history.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	token := p.cli.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return fmt.Errorf("publish report: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.cli.Disconnect(250)
}
