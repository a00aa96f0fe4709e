package sink

import "errors"

var (
	// ErrStopped is returned when registering against a stopped sink.
	ErrStopped = errors.New("sink stopped")

	// ErrDuplicateThing is returned when a thing ID is registered twice.
	ErrDuplicateThing = errors.New("thing already registered")

	// ErrUnknownThing is published when a write names an unregistered thing.
	ErrUnknownThing = errors.New("unknown thing")

	// ErrUnknownProperty is published when a write names a property the
	// thing does not expose.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrReadOnly is published when a write targets a read-only property.
	ErrReadOnly = errors.New("property is read-only")

	// ErrBadTopic is returned for malformed write topics.
	ErrBadTopic = errors.New("malformed set topic")

	// ErrBadPayload is published when a write payload does not parse as
	// the property's declared type.
	ErrBadPayload = errors.New("bad payload")
)
