// Package mqtt provides the MQTT publisher behind the dbhandler statement
// journal.
//
// This package manages:
//   - Connection to a broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topics
//
//	dbhandler/system/status        retained online/offline status
//	dbhandler/journal/<database>   one message per executed statement
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) for any broker off the local host
//   - Journal messages contain raw SQL text, including literal values
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Journal("app.db")
//	client.Publish(topic, []byte(`{"statement":"SELECT 1"}`), 1, false)
package mqtt
