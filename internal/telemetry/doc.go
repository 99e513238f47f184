// Package telemetry collects node telemetry reports from MQTT and
// records them into time-series storage.
//
// Nodes report battery voltage, RSSI and SNR on
// meshlink/nodes/{id}/telemetry. The collector subscribes with a
// single wildcard, parses each JSON payload and hands it to the
// InfluxDB writer. Malformed payloads are logged through the debug
// log and dropped.
package telemetry
