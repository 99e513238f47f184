package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/dmweir/meshlink-core/internal/node"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "meshlink/nodes/node-7f3a/config")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Retained messages are appropriate for state topics (node config, system
// status) where new subscribers should immediately see the current value.
// Commands and events should not be retained.
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message with the configured default QoS.
//
// Use for state updates where new subscribers should receive the current state.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// PublishNodeConfig publishes a node's configuration to its retained
// config topic. Gateways pick this up to push the new settings over LoRa.
//
// Parameters:
//   - cfg: The node configuration to publish (marshalled as JSON)
//
// Returns:
//   - error: If marshalling or publishing fails
func (c *Client) PublishNodeConfig(cfg *node.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil node config", ErrPublishFailed)
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: marshalling node config: %w", ErrPublishFailed, err)
	}

	return c.PublishRetained(Topics{}.NodeConfig(cfg.ID), payload)
}
