// Package sink publishes synchronized things over MQTT.
//
// It implements the thing.Sink contract: retained metadata and value
// topics per thing, a shared subscription on the /set topic pattern for
// consumer writes, and per-request error reports with correlation IDs
// on the /error topics. See internal/infrastructure/mqtt for the topic
// scheme.
package sink
