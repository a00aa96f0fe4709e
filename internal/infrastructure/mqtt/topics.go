package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the daikinthing property hierarchy.
//
// Properties use the scheme: daikinthing/things/{thing_id}/properties/{property}
// with /set and /error suffixes for the write path.
const (
	// TopicPrefixThings is the base for all per-thing topics.
	TopicPrefixThings = "daikinthing/things"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "daikinthing/system"
)

// Topics provides builders for daikinthing MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	valueTopic := topics.PropertyValue("office", "room_temperature")
//	// Returns: "daikinthing/things/office/properties/room_temperature"
type Topics struct{}

// ThingMeta returns the topic for a thing's property metadata document.
//
// Example: daikinthing/things/office/meta
func (Topics) ThingMeta(thingID string) string {
	return fmt.Sprintf("%s/%s/meta", TopicPrefixThings, thingID)
}

// PropertyValue returns the topic for a property's current value.
//
// Example: daikinthing/things/office/properties/room_temperature
func (Topics) PropertyValue(thingID, property string) string {
	return fmt.Sprintf("%s/%s/properties/%s", TopicPrefixThings, thingID, property)
}

// PropertySet returns the topic consumers publish to for property writes.
//
// Example: daikinthing/things/office/properties/mode/set
func (Topics) PropertySet(thingID, property string) string {
	return fmt.Sprintf("%s/%s/properties/%s/set", TopicPrefixThings, thingID, property)
}

// PropertyError returns the topic for failed property writes.
//
// Example: daikinthing/things/office/properties/mode/error
func (Topics) PropertyError(thingID, property string) string {
	return fmt.Sprintf("%s/%s/properties/%s/error", TopicPrefixThings, thingID, property)
}

// SystemStatus returns the system status topic.
//
// Example: daikinthing/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllPropertySets returns a pattern matching all property write topics.
//
// Pattern: daikinthing/things/+/properties/+/set
func (Topics) AllPropertySets() string {
	return fmt.Sprintf("%s/+/properties/+/set", TopicPrefixThings)
}

// ParsePropertySet extracts the thing ID and property name from a
// property write topic. Returns false for anything that is not a
// well-formed set topic.
func (Topics) ParsePropertySet(topic string) (thingID, property string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefixThings+"/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 4 || parts[1] != "properties" || parts[3] != "set" {
		return "", "", false
	}
	if parts[0] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[0], parts[2], true
}

// AllPropertyValues returns a pattern matching all property value topics.
//
// Pattern: daikinthing/things/+/properties/+
func (Topics) AllPropertyValues() string {
	return fmt.Sprintf("%s/+/properties/+", TopicPrefixThings)
}
