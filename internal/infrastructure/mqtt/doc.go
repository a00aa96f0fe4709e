// Package mqtt provides MQTT client connectivity for daikinthing.
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
// daikinthing uses MQTT as the property-hosting surface: mirrored
// appliance state is published retained on per-property topics, and
// consumer write intents arrive on the matching /set topics.
//
//	Daikin appliances ↔ daikinthing ↔ MQTT Broker ↔ Consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all property writes
//	err = client.Subscribe(mqtt.Topics{}.AllPropertySets(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a property value
//	topic := mqtt.Topics{}.PropertyValue("office", "room_temperature")
//	client.PublishRetained(topic, []byte("21.5"))
package mqtt
