// Package broker is the mesh network's only external collaborator: a thin
// MQTT subscriber that hands raw ServiceEnvelope bytes off a topic to a
// callback. Everything it produces is opaque to it; parsing and decryption
// live in meshpb and meshtastic.
package broker

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Handler receives the raw payload of one message published to the
// subscribed topic.
type Handler func(payload []byte)

// Client wraps a connected MQTT subscription. The zero value is not usable;
// construct one with Connect.
type Client struct {
	mq mqtt.Client
}

// Connect dials brokerURL and subscribes to topic at QoS 0 (at-most-once,
// matching the original host's fire-and-forget telemetry stream), invoking
// handler for every message received. It blocks until the connection
// either succeeds or fails.
func Connect(brokerURL, topic string, handler Handler) (*Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("meshtastic-compression-test-%d", time.Now().UnixNano())).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("broker: connect to %s: %w", brokerURL, token.Error())
	}

	messageHandler := func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	}
	if token := client.Subscribe(topic, 0, messageHandler); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("broker: subscribe to %s: %w", topic, token.Error())
	}

	return &Client{mq: client}, nil
}

// Close disconnects from the broker without an explicit unsubscribe,
// waiting up to 250ms for in-flight work to drain.
func (c *Client) Close() {
	c.mq.Disconnect(250)
}
