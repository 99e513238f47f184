package mqtt

import "testing"

func TestTopics_Builders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"node config", topics.NodeConfig("node-7f3a"), "meshlink/nodes/node-7f3a/config"},
		{"node status", topics.NodeStatus("node-7f3a"), "meshlink/nodes/node-7f3a/status"},
		{"node telemetry", topics.NodeTelemetry("node-7f3a"), "meshlink/nodes/node-7f3a/telemetry"},
		{"node command", topics.NodeCommand("node-7f3a"), "meshlink/nodes/node-7f3a/command"},
		{"node event", topics.NodeEvent("node_config_updated"), "meshlink/events/node_config_updated"},
		{"system status", topics.SystemStatus(), "meshlink/system/status"},
		{"all telemetry", topics.AllNodeTelemetry(), "meshlink/nodes/+/telemetry"},
		{"all status", topics.AllNodeStatus(), "meshlink/nodes/+/status"},
		{"wildcard", topics.AllTopics(), "meshlink/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNodeIDFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"meshlink/nodes/node-7f3a/telemetry", "node-7f3a"},
		{"meshlink/nodes/abc/config", "abc"},
		{"meshlink/nodes/node-7f3a", ""},
		{"meshlink/system/status", ""},
		{"meshlink/nodes/", ""},
		{"other/nodes/x/telemetry", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NodeIDFromTopic(tt.topic); got != tt.want {
			t.Errorf("NodeIDFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
