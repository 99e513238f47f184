package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteNodeTelemetry writes a telemetry report from a mesh node.
//
// This is the primary method for recording node radio and power data.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - nodeID: Unique identifier for the node (e.g., "node-7f3a")
//   - batteryVoltage: Battery voltage in volts
//   - rssi: Received signal strength in dBm
//   - snr: Signal to noise ratio in dB
//
// Example:
//
//	client.WriteNodeTelemetry("node-7f3a", 3.82, -97.0, 6.5)
func (c *Client) WriteNodeTelemetry(nodeID string, batteryVoltage, rssi, snr float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"node_telemetry",
		map[string]string{
			"node_id": nodeID,
		},
		map[string]interface{}{
			"battery_voltage": batteryVoltage,
			"rssi":            rssi,
			"snr":             snr,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteNodeMetric writes a single named measurement for a node.
//
// Use for values outside the standard telemetry triple, such as
// airtime or hop counts.
//
// Parameters:
//   - nodeID: Node identifier
//   - metricName: The metric name (e.g., "airtime_ms", "hop_count")
//   - value: The numeric value to record
func (c *Client) WriteNodeMetric(nodeID string, metricName string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"node_metrics",
		map[string]string{
			"node_id": nodeID,
			"metric":  metricName,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteLogEvent records a debug log event counter.
//
// Called by the durable log buffer as events are flushed, so dashboards
// can chart warning and error rates per subsystem without querying SQLite.
//
// Parameters:
//   - subsystem: The emitting subsystem (e.g., "node", "api")
//   - category: Free-form category within the subsystem
//   - level: Severity name (debug, info, notice, warning, error, fault)
func (c *Client) WriteLogEvent(subsystem, category, level string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"log_events",
		map[string]string{
			"subsystem": subsystem,
			"category":  category,
			"level":     level,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "meshlink-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
