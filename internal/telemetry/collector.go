package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/dmweir/meshlink-core/internal/debuglog"
	"github.com/dmweir/meshlink-core/internal/infrastructure/mqtt"
)

// Subscriber is the subset of the MQTT client used by the collector.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Writer records parsed telemetry. Satisfied by influxdb.Client.
type Writer interface {
	WriteNodeTelemetry(nodeID string, batteryVoltage, rssi, snr float64)
}

// Report is the JSON payload nodes publish on their telemetry topic.
//
// Gateways forward these verbatim from the radio, so fields may be
// missing on older firmware. Missing values are recorded as zero.
type Report struct {
	BatteryVoltage float64 `json:"battery_voltage"`
	RSSI           float64 `json:"rssi"`
	SNR            float64 `json:"snr"`
}

// Collector subscribes to node telemetry topics and records reports
// into time-series storage.
//
// The collector is passive once started; all work happens inside the
// MQTT handler goroutines. Malformed payloads are logged and dropped,
// never propagated as handler errors.
type Collector struct {
	sub    Subscriber
	writer Writer
	log    *debuglog.Logger
	qos    byte
}

// New creates a collector wired to the given MQTT subscriber and
// telemetry writer.
//
// Parameters:
//   - sub: MQTT client to subscribe with
//   - writer: Telemetry sink (nil disables recording, reports are still validated)
//   - log: Logger for malformed payloads and subscription lifecycle
//   - qos: QoS level for the telemetry subscription
func New(sub Subscriber, writer Writer, log *debuglog.Logger, qos byte) *Collector {
	return &Collector{
		sub:    sub,
		writer: writer,
		log:    log,
		qos:    qos,
	}
}

// Start subscribes to telemetry from every node.
//
// Returns:
//   - error: If the subscription fails
func (c *Collector) Start() error {
	topic := mqtt.Topics{}.AllNodeTelemetry()
	if err := c.sub.Subscribe(topic, c.qos, c.handleReport); err != nil {
		return fmt.Errorf("subscribing to node telemetry: %w", err)
	}

	c.log.Info("telemetry collector started", "topic", topic)
	return nil
}

// Stop removes the telemetry subscription.
func (c *Collector) Stop() error {
	if err := c.sub.Unsubscribe(mqtt.Topics{}.AllNodeTelemetry()); err != nil {
		return fmt.Errorf("unsubscribing from node telemetry: %w", err)
	}
	return nil
}

// handleReport parses and records a single telemetry message.
func (c *Collector) handleReport(topic string, payload []byte) error {
	nodeID := mqtt.NodeIDFromTopic(topic)
	if nodeID == "" {
		c.log.Warning("telemetry on unexpected topic", "topic", topic)
		return nil
	}

	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		c.log.Warning("malformed telemetry payload",
			"node_id", nodeID,
			"error", err,
		)
		return nil
	}

	if c.writer != nil {
		c.writer.WriteNodeTelemetry(nodeID, report.BatteryVoltage, report.RSSI, report.SNR)
	}

	c.log.Debug("telemetry recorded",
		"node_id", nodeID,
		"battery_voltage", report.BatteryVoltage,
		"rssi", report.RSSI,
		"snr", report.SNR,
	)
	return nil
}
