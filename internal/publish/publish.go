// Package publish sends each stored reading to an MQTT broker as JSON
// telemetry. The connection is lazy: the first publish dials, a failed
// publish drops the link and the next one redials.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luki/envmon/internal/sensor"
)

const keepAliveSeconds = 30

// Publisher is an MQTT v5 telemetry publisher.
type Publisher struct {
	broker string // host:port
	topic  string
	log    *zap.Logger

	mu        sync.Mutex
	client    *paho.Client
	connected bool
}

// New creates a publisher. No connection is made until the first
// Publish call.
func New(broker, topic string, log *zap.Logger) *Publisher {
	return &Publisher{broker: broker, topic: topic, log: log}
}

// clientID returns a fresh MQTT client ID. MQTT caps client IDs at 23
// bytes, so only a fragment of the uuid is used.
func clientID() string {
	frag := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "envmond-" + frag[:12]
}

// connect dials the broker and performs the MQTT connect handshake.
// Callers hold p.mu.
func (p *Publisher) connect(ctx context.Context) error {
	conn, err := net.Dial("tcp", p.broker)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	c := paho.NewClient(paho.ClientConfig{Conn: conn})
	ca, err := c.Connect(ctx, &paho.Connect{
		ClientID:   clientID(),
		KeepAlive:  keepAliveSeconds,
		CleanStart: true,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("mqtt connect: %w", err)
	}
	if ca.ReasonCode != 0 {
		conn.Close()
		return fmt.Errorf("broker refused connection: reason code %d", ca.ReasonCode)
	}

	p.client = c
	p.connected = true
	p.log.Info("mqtt connected", zap.String("broker", p.broker), zap.String("topic", p.topic))
	return nil
}

// Publish sends one reading as JSON with QoS 0. Telemetry is
// best-effort: a lost message is just a gap in the remote series.
func (p *Publisher) Publish(ctx context.Context, r sensor.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		if err := p.connect(ctx); err != nil {
			p.connected = false
			return err
		}
	}

	_, err = p.client.Publish(ctx, &paho.Publish{
		Topic:   p.topic,
		QoS:     0,
		Payload: payload,
	})
	if err != nil {
		p.dropLocked()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Connected reports whether the last broker interaction succeeded.
func (p *Publisher) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Publisher) dropLocked() {
	p.connected = false
	if p.client != nil {
		_ = p.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
		p.client = nil
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropLocked()
}
