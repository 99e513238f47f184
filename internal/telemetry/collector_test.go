package telemetry

import (
	"testing"

	"github.com/dmweir/meshlink-core/internal/debuglog"
	"github.com/dmweir/meshlink-core/internal/infrastructure/mqtt"
)

// mockSubscriber records subscriptions and captures the handler.
type mockSubscriber struct {
	topic       string
	qos         byte
	handler     mqtt.MessageHandler
	subscribeErr error
	unsubscribed []string
}

func (m *mockSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.topic = topic
	m.qos = qos
	m.handler = handler
	return nil
}

func (m *mockSubscriber) Unsubscribe(topic string) error {
	m.unsubscribed = append(m.unsubscribed, topic)
	return nil
}

// mockWriter records telemetry writes.
type mockWriter struct {
	nodeIDs  []string
	voltages []float64
	rssis    []float64
	snrs     []float64
}

func (m *mockWriter) WriteNodeTelemetry(nodeID string, batteryVoltage, rssi, snr float64) {
	m.nodeIDs = append(m.nodeIDs, nodeID)
	m.voltages = append(m.voltages, batteryVoltage)
	m.rssis = append(m.rssis, rssi)
	m.snrs = append(m.snrs, snr)
}

func testLogger() *debuglog.Logger {
	return debuglog.New(nil, "telemetry", "collector")
}

func TestCollector_StartSubscribesToAllNodes(t *testing.T) {
	sub := &mockSubscriber{}
	c := New(sub, &mockWriter{}, testLogger(), 1)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if sub.topic != "meshlink/nodes/+/telemetry" {
		t.Errorf("subscribed to %q, want meshlink/nodes/+/telemetry", sub.topic)
	}
	if sub.qos != 1 {
		t.Errorf("qos = %d, want 1", sub.qos)
	}
}

func TestCollector_RecordsValidReport(t *testing.T) {
	sub := &mockSubscriber{}
	writer := &mockWriter{}
	c := New(sub, writer, testLogger(), 0)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	payload := []byte(`{"battery_voltage": 3.82, "rssi": -97.5, "snr": 6.25}`)
	if err := sub.handler("meshlink/nodes/node-7f3a/telemetry", payload); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(writer.nodeIDs) != 1 || writer.nodeIDs[0] != "node-7f3a" {
		t.Fatalf("writes = %v, want one for node-7f3a", writer.nodeIDs)
	}
	if writer.voltages[0] != 3.82 || writer.rssis[0] != -97.5 || writer.snrs[0] != 6.25 {
		t.Errorf("recorded %v/%v/%v, values lost",
			writer.voltages[0], writer.rssis[0], writer.snrs[0])
	}
}

func TestCollector_DropsMalformedPayload(t *testing.T) {
	sub := &mockSubscriber{}
	writer := &mockWriter{}
	c := New(sub, writer, testLogger(), 0)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Handler errors would trigger MQTT-side warnings; malformed
	// payloads are dropped instead.
	if err := sub.handler("meshlink/nodes/node-1/telemetry", []byte("{garbage")); err != nil {
		t.Errorf("malformed payload returned error: %v", err)
	}
	if len(writer.nodeIDs) != 0 {
		t.Errorf("malformed payload was recorded: %v", writer.nodeIDs)
	}
}

func TestCollector_IgnoresUnexpectedTopic(t *testing.T) {
	sub := &mockSubscriber{}
	writer := &mockWriter{}
	c := New(sub, writer, testLogger(), 0)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := sub.handler("meshlink/system/status", []byte(`{"battery_voltage": 3.8}`)); err != nil {
		t.Errorf("unexpected topic returned error: %v", err)
	}
	if len(writer.nodeIDs) != 0 {
		t.Errorf("report from unexpected topic was recorded: %v", writer.nodeIDs)
	}
}

func TestCollector_NilWriterStillValidates(t *testing.T) {
	sub := &mockSubscriber{}
	c := New(sub, nil, testLogger(), 0)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Must not panic with recording disabled.
	payload := []byte(`{"battery_voltage": 3.82}`)
	if err := sub.handler("meshlink/nodes/node-1/telemetry", payload); err != nil {
		t.Errorf("handler: %v", err)
	}
}

func TestCollector_Stop(t *testing.T) {
	sub := &mockSubscriber{}
	c := New(sub, &mockWriter{}, testLogger(), 0)

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(sub.unsubscribed) != 1 || sub.unsubscribed[0] != "meshlink/nodes/+/telemetry" {
		t.Errorf("unsubscribed = %v", sub.unsubscribed)
	}
}
