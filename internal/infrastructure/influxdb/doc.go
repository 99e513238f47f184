// Package influxdb provides time-series storage for MeshLink Core.
//
// This package manages:
//   - Connection to InfluxDB v2 with token authentication
//   - Non-blocking, batched telemetry writes
//   - Debug log event counters for rate dashboards
//   - Health monitoring
//
// Node telemetry (battery voltage, RSSI, SNR) arrives over MQTT and is
// recorded here by the telemetry collector. Writes never block the
// caller; the underlying write API batches points and reports failures
// through an asynchronous error callback.
//
// InfluxDB is optional. When disabled in config, Connect returns
// ErrDisabled and callers run without time-series storage.
package influxdb
