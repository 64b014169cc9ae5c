package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pwa-weather/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Handler receives the payload of a message on a subscribed topic.
type Handler func(topic string, payload []byte)

type Client struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	// subscribed is set once Connect has subscribed; reconnects resubscribe after that.
	subscribed bool

	stopCh   chan struct{}
	stopOnce sync.Once

	handlersMu sync.RWMutex
	handlers   map[string]Handler
}

func NewClient(cfg config.Config, clientID string, logger *slog.Logger) *Client {
	c := &Client{
		cfg:      cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
		handlers: make(map[string]Handler),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(clientID)

	// Session settings
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	// Keepalive / timeouts
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort, "client_id", clientID)

		c.mu.RLock()
		resubscribe := c.subscribed
		c.mu.RUnlock()
		if resubscribe {
			if err := c.subscribeAll(); err != nil {
				logger.Error("mqtt resubscribe failed", "error", err)
			}
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// Handle registers h for topic. Call it before Connect; topics added later are
// only subscribed on the next (re)connect.
func (c *Client) Handle(topic string, h Handler) {
	c.handlersMu.Lock()
	c.handlers[topic] = h
	c.handlersMu.Unlock()
}

// Connect establishes the broker connection and subscribes every handled topic.
func (c *Client) Connect(ctx context.Context) error {
	// Fail fast if already stopped.
	select {
	case <-c.stopCh:
		return fmt.Errorf("client stopped")
	default:
	}

	// Fast path.
	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	// Wait in a ctx/stop-aware loop.
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			// OnConnectHandler sets connected=true.
			break
		}

		select {
		case <-ctx.Done():
			c.client.Disconnect(0)
			return ctx.Err()
		case <-c.stopCh:
			c.client.Disconnect(0)
			return fmt.Errorf("client stopped")
		default:
		}
	}

	if err := c.subscribeAll(); err != nil {
		c.client.Disconnect(0)
		return fmt.Errorf("subscribe: %w", err)
	}
	c.mu.Lock()
	c.subscribed = true
	c.mu.Unlock()

	return nil
}

func (c *Client) subscribeAll() error {
	c.handlersMu.RLock()
	topics := make([]string, 0, len(c.handlers))
	for topic := range c.handlers {
		topics = append(topics, topic)
	}
	c.handlersMu.RUnlock()

	for _, topic := range topics {
		if err := c.subscribe(topic); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) subscribe(topic string) error {
	qos := byte(1) // At least once delivery

	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		c.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}

	c.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (c *Client) handleMessage(topic string, payload []byte) {
	c.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	c.handlersMu.RLock()
	h, ok := c.handlers[topic]
	c.handlersMu.RUnlock()
	if !ok {
		c.logger.Warn("no handler for mqtt topic", "topic", topic)
		return
	}
	h(topic, payload)
}

// Publish sends payload on topic with QoS 1.
func (c *Client) Publish(topic string, payload []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if token.Error() != nil {
		c.logger.Error("failed to publish", "topic", topic, "error", token.Error())
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}

	c.logger.Debug("published mqtt message", "topic", topic, "size", len(payload))
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (c *Client) Disconnect() {
	// Signal shutdown once (unblocks any Connect loops).
	c.stopOnce.Do(func() { close(c.stopCh) })

	if c.client != nil && c.IsConnected() {
		c.handlersMu.RLock()
		topics := make([]string, 0, len(c.handlers))
		for topic := range c.handlers {
			topics = append(topics, topic)
		}
		c.handlersMu.RUnlock()
		if len(topics) > 0 {
			token := c.client.Unsubscribe(topics...)
			token.WaitTimeout(2 * time.Second)
		}
	}

	// Disconnect without holding c.mu to avoid lock contention/deadlocks.
	if c.client != nil {
		c.client.Disconnect(250)
	}

	c.setConnected(false)
	c.logger.Info("mqtt client disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
