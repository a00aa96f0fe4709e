package sink

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/KaiRo-at/daikinthing/internal/infrastructure/mqtt"
	"github.com/KaiRo-at/daikinthing/internal/thing"
)

// Broker is the slice of the MQTT client the sink needs. The concrete
// infrastructure client satisfies it; tests substitute a recorder.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger matches the infrastructure logger surface used here.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MQTTSink exposes things over MQTT.
//
// Each thing gets a retained metadata document and one retained topic
// per property; consumers mutate writable properties by publishing a
// bare JSON scalar to the matching /set topic. Failed writes are
// answered on the /error topic with a correlation ID so a consumer can
// tie the failure back to its request.
//
// The sink deduplicates no-op updates: a value equal to the last one
// published for that property is dropped without touching the broker.
type MQTTSink struct {
	broker Broker
	qos    byte
	logger Logger
	topics mqtt.Topics

	mu     sync.RWMutex
	things map[string]thing.Definition
	last   map[string]thing.Value

	stopped    atomic.Bool
	subscribed bool
}

// New builds a sink over a connected broker.
func New(broker Broker, qos byte, logger Logger) *MQTTSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTSink{
		broker: broker,
		qos:    qos,
		logger: logger,
		things: make(map[string]thing.Definition),
		last:   make(map[string]thing.Value),
	}
}

// metaProperty is the wire shape of one property in the metadata
// document.
type metaProperty struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Unit     string   `json:"unit,omitempty"`
	ReadOnly bool     `json:"readOnly,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

type metaDocument struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Properties []metaProperty `json:"properties"`
}

// Register announces a thing: stores its definition for write
// dispatch and publishes its retained metadata document. The first
// registration also subscribes to the shared write topic pattern.
func (s *MQTTSink) Register(def thing.Definition) error {
	if s.stopped.Load() {
		return ErrStopped
	}

	s.mu.Lock()
	if _, exists := s.things[def.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateThing, def.ID)
	}
	s.things[def.ID] = def
	needSubscribe := !s.subscribed
	s.subscribed = true
	s.mu.Unlock()

	if needSubscribe {
		if err := s.broker.Subscribe(s.topics.AllPropertySets(), s.qos, s.handleSet); err != nil {
			return fmt.Errorf("subscribe property writes: %w", err)
		}
	}

	doc := metaDocument{ID: def.ID, Title: def.Title}
	for _, p := range def.Properties {
		doc.Properties = append(doc.Properties, metaProperty{
			Name:     p.Name,
			Title:    p.Title,
			Type:     p.Type.String(),
			Unit:     p.Unit,
			ReadOnly: p.ReadOnly,
			Enum:     p.Enum,
		})
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", def.ID, err)
	}
	if err := s.broker.PublishRetained(s.topics.ThingMeta(def.ID), payload); err != nil {
		return fmt.Errorf("publish metadata for %s: %w", def.ID, err)
	}

	s.logger.Info("thing registered", "thing_id", def.ID, "properties", len(def.Properties))
	return nil
}

// NotifyExternalUpdate publishes a property value, retained. Values
// equal to the last published one are dropped; notifications after
// Stop are dropped silently, matching the sink contract.
func (s *MQTTSink) NotifyExternalUpdate(thingID, property string, value thing.Value) {
	if s.stopped.Load() {
		return
	}

	key := thingID + "/" + property
	s.mu.Lock()
	if prev, ok := s.last[key]; ok && prev.Equal(value) {
		s.mu.Unlock()
		return
	}
	s.last[key] = value
	s.mu.Unlock()

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("marshal property value", "thing_id", thingID, "property", property, "error", err)
		return
	}
	if err := s.broker.PublishRetained(s.topics.PropertyValue(thingID, property), payload); err != nil {
		s.logger.Warn("publish property value",
			"thing_id", thingID,
			"property", property,
			"error", err)
		return
	}
	s.logger.Debug("property updated", "thing_id", thingID, "property", property, "value", value.String())
}

// Stop makes the sink inert: later notifications and writes are
// dropped. The broker connection itself is owned by the caller and
// stays up for the shutdown status message.
func (s *MQTTSink) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		s.logger.Info("property sink stopped")
	}
}

// handleSet dispatches one consumer write. Runs on the MQTT client's
// handler goroutine; the device write inside Apply is synchronous, so
// slow appliances slow their own write path, not the poll loops.
func (s *MQTTSink) handleSet(topic string, payload []byte) error {
	if s.stopped.Load() {
		return nil
	}

	thingID, property, ok := s.topics.ParsePropertySet(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}

	s.mu.RLock()
	def, exists := s.things[thingID]
	s.mu.RUnlock()
	if !exists {
		return s.publishError(thingID, property, fmt.Errorf("%w: %s", ErrUnknownThing, thingID))
	}

	prop, exists := def.Property(property)
	if !exists {
		return s.publishError(thingID, property, fmt.Errorf("%w: %s", ErrUnknownProperty, property))
	}
	if prop.ReadOnly || prop.Command == thing.CommandNone {
		return s.publishError(thingID, property, fmt.Errorf("%w: %s", ErrReadOnly, property))
	}

	value, err := decodeValue(prop.Type, payload)
	if err != nil {
		return s.publishError(thingID, property, err)
	}

	if err := def.Applier.Apply(prop.Command, value); err != nil {
		return s.publishError(thingID, property, err)
	}

	s.logger.Info("property write applied",
		"thing_id", thingID,
		"property", property,
		"value", value.String())
	return nil
}

// writeError is the wire shape published on a property's /error topic.
type writeError struct {
	ID        string `json:"id"`
	Property  string `json:"property"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func (s *MQTTSink) publishError(thingID, property string, cause error) error {
	we := writeError{
		ID:        uuid.New().String(),
		Property:  property,
		Error:     cause.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(we)
	if err != nil {
		return err
	}

	s.logger.Warn("property write rejected",
		"thing_id", thingID,
		"property", property,
		"correlation_id", we.ID,
		"error", cause)

	// Not retained: a write error describes one request, not state.
	return s.broker.Publish(s.topics.PropertyError(thingID, property), payload, s.qos, false)
}

// decodeValue parses a consumer payload against the property's
// declared type. Payloads are bare JSON scalars.
func decodeValue(kind thing.ValueKind, payload []byte) (thing.Value, error) {
	switch kind {
	case thing.KindNumber:
		var f float64
		if err := json.Unmarshal(payload, &f); err != nil {
			return thing.Value{}, fmt.Errorf("%w: want a number, got %q", ErrBadPayload, payload)
		}
		return thing.NumberValue(f), nil
	case thing.KindBoolean:
		var b bool
		if err := json.Unmarshal(payload, &b); err != nil {
			return thing.Value{}, fmt.Errorf("%w: want a boolean, got %q", ErrBadPayload, payload)
		}
		return thing.BooleanValue(b), nil
	case thing.KindString:
		var str string
		if err := json.Unmarshal(payload, &str); err != nil {
			// Tolerate unquoted strings; humans poke these
			// topics with mosquitto_pub.
			str = string(payload)
		}
		return thing.StringValue(str), nil
	default:
		return thing.Value{}, fmt.Errorf("%w: unsupported property type", ErrBadPayload)
	}
}
