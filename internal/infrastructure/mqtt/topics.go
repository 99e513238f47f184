package mqtt

import "fmt"

// Topic prefixes for the MeshLink MQTT namespace.
//
// Node topics follow the scheme: meshlink/nodes/{node_id}/{channel}
// where channel is one of config, status, telemetry or command.
const (
	// TopicPrefix is the base for all MeshLink topics.
	TopicPrefix = "meshlink"

	// TopicPrefixNodes is the base for per-node topics.
	TopicPrefixNodes = "meshlink/nodes"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "meshlink/system"
)

// Topics provides builders for MeshLink MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	cfgTopic := topics.NodeConfig("node-7f3a")
//	// Returns: "meshlink/nodes/node-7f3a/config"
type Topics struct{}

// NodeConfig returns the topic carrying a node's current configuration.
// Published retained after every successful configuration mutation so
// gateways and dashboards always see the latest settings.
//
// Example: meshlink/nodes/node-7f3a/config
func (Topics) NodeConfig(nodeID string) string {
	return fmt.Sprintf("%s/%s/config", TopicPrefixNodes, nodeID)
}

// NodeStatus returns the topic for a node's online/offline status.
//
// Example: meshlink/nodes/node-7f3a/status
func (Topics) NodeStatus(nodeID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixNodes, nodeID)
}

// NodeTelemetry returns the topic a node reports telemetry on
// (battery voltage, RSSI, SNR).
//
// Example: meshlink/nodes/node-7f3a/telemetry
func (Topics) NodeTelemetry(nodeID string) string {
	return fmt.Sprintf("%s/%s/telemetry", TopicPrefixNodes, nodeID)
}

// NodeCommand returns the topic for commands addressed to a node.
//
// Example: meshlink/nodes/node-7f3a/command
func (Topics) NodeCommand(nodeID string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefixNodes, nodeID)
}

// NodeEvent returns the topic for service-level node events
// (created, config-updated, deleted).
//
// Example: meshlink/events/node_config_updated
func (Topics) NodeEvent(eventType string) string {
	return fmt.Sprintf("%s/events/%s", TopicPrefix, eventType)
}

// SystemStatus returns the service status topic. The LWT message and
// graceful shutdown notices are published here, retained.
//
// Example: meshlink/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllNodeTelemetry returns a pattern matching telemetry from every node.
//
// Pattern: meshlink/nodes/+/telemetry
func (Topics) AllNodeTelemetry() string {
	return fmt.Sprintf("%s/+/telemetry", TopicPrefixNodes)
}

// AllNodeStatus returns a pattern matching status updates from every node.
//
// Pattern: meshlink/nodes/+/status
func (Topics) AllNodeStatus() string {
	return fmt.Sprintf("%s/+/status", TopicPrefixNodes)
}

// AllTopics returns a pattern matching all MeshLink topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: meshlink/#
func (Topics) AllTopics() string {
	return "meshlink/#"
}

// NodeIDFromTopic extracts the node ID from a per-node topic.
// Returns "" if the topic does not match the meshlink/nodes/{id}/... scheme.
func NodeIDFromTopic(topic string) string {
	prefix := TopicPrefixNodes + "/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return ""
	}
	rest := topic[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i]
		}
	}
	return ""
}
