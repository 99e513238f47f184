// Package mqtt provides MQTT client connectivity for MeshLink Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MeshLink uses MQTT as the bus between the Core service and the LoRa
// gateways that bridge radio traffic onto IP. Gateways publish node
// telemetry and status; Core publishes node configuration (retained)
// which gateways push to the radio when a node checks in.
//
//	MeshLink Core ↔ MQTT Broker ↔ LoRa Gateways ↔ Mesh Nodes
//
// # Topic Scheme
//
//	meshlink/nodes/{node_id}/config     retained node configuration (Core → gateway)
//	meshlink/nodes/{node_id}/telemetry  battery/RSSI/SNR reports (gateway → Core)
//	meshlink/nodes/{node_id}/status     online/offline (gateway → Core)
//	meshlink/nodes/{node_id}/command    one-shot commands (Core → gateway)
//	meshlink/system/status              service status + LWT, retained
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllNodeTelemetry(), 1,
//	    func(topic string, payload []byte) error {
//	        // parse and record
//	        return nil
//	    })
package mqtt
