package daikin

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Fields is a parsed appliance response.
//
// The WiFi adapter answers every endpoint with a flat comma-separated
// field list:
//
//	ret=OK,pow=1,mode=3,stemp=25.0,shum=0
//
// Values are kept as raw strings; the adapter reports temperatures as
// numeric-looking strings and uses sentinels like "-" or "--" when a
// reading is unavailable.
type Fields map[string]string

// parseFields parses a raw response body into a field map.
//
// The ret field must be present and "OK"; anything else is reported as
// ErrBadResponse with the appliance's own code preserved.
func parseFields(body string) (Fields, error) {
	fields := make(Fields)
	for _, pair := range strings.Split(strings.TrimSpace(body), ",") {
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		fields[key] = value
	}

	ret, ok := fields["ret"]
	if !ok {
		return nil, fmt.Errorf("%w: missing ret field", ErrBadResponse)
	}
	if ret != "OK" {
		return nil, fmt.Errorf("%w: ret=%s", ErrBadResponse, ret)
	}

	return fields, nil
}

// Get returns the raw string value for a key. Missing keys return "".
func (f Fields) Get(key string) string {
	return f[key]
}

// rawValue converts a reported reading to its natural shape: a float64
// when the appliance sent a number, the untouched string otherwise
// (sentinels like "-", "--" and "M").
func rawValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Int returns the value for a key parsed as a decimal integer.
func (f Fields) Int(key string) (int, error) {
	raw, ok := f[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrBadResponse, key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q=%q is not an integer", ErrBadResponse, key, raw)
	}
	return n, nil
}

// Name returns the percent-decoded unit name.
//
// The adapter percent-encodes the user-assigned name in basic_info
// (e.g. "%4f%66%66%69%63%65" for "Office"). Decoding failures fall
// back to the raw value rather than failing the identity lookup.
func (f Fields) Name() string {
	raw := f["name"]
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
