package daikin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Appliance API endpoints (Daikin BRP069 WiFi adapter, HTTP on port 80).
const (
	pathBasicInfo      = "/common/basic_info"
	pathControlInfo    = "/aircon/get_control_info"
	pathSensorInfo     = "/aircon/get_sensor_info"
	pathSetControlInfo = "/aircon/set_control_info"
)

// requestTimeout bounds every exchange with the appliance. The sync
// loops impose no timeout of their own; this is the client's concern.
const requestTimeout = 10 * time.Second

// Client performs request/response exchanges against one Daikin
// appliance's WiFi adapter.
//
// The client is stateless between calls: every operation is an
// independent HTTP exchange, matching the adapter's own model. Callers
// construct a fresh client per operation cycle via NewClient; the
// zero-cost construction makes that cheap.
type Client struct {
	address    string
	httpClient *http.Client
}

// NewClient creates a client for the appliance at the given address
// (IP or hostname, no scheme).
func NewClient(address string) *Client {
	return &Client{
		address: address,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Identity reads the appliance's self-reported family and display name.
//
// Returns:
//   - kind: The appliance family string (basic_info "type", e.g. "aircon")
//   - label: The percent-decoded user-assigned unit name
//   - error: Wrapped ErrRead if the appliance cannot be reached
func (c *Client) Identity(ctx context.Context) (kind, label string, err error) {
	fields, err := c.get(ctx, pathBasicInfo, nil)
	if err != nil {
		return "", "", fmt.Errorf("identity: %w", err)
	}
	return fields.Get("type"), fields.Name(), nil
}

// InsideTemperature reads the current room temperature.
//
// A working sensor yields a float64. When the adapter reports a
// sentinel ("-", "--", "M") the raw string is returned instead of an
// error; callers decide whether the value is usable.
func (c *Client) InsideTemperature(ctx context.Context) (any, error) {
	fields, err := c.get(ctx, pathSensorInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("inside temperature: %w", err)
	}
	return rawValue(fields.Get("htemp")), nil
}

// OutsideTemperature reads the outside temperature as measured at the
// condenser unit. Same raw-value shape as InsideTemperature.
func (c *Client) OutsideTemperature(ctx context.Context) (any, error) {
	fields, err := c.get(ctx, pathSensorInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("outside temperature: %w", err)
	}
	return rawValue(fields.Get("otemp")), nil
}

// TargetTemperature reads the current temperature setpoint.
//
// In fan and dehumidify modes the appliance has no setpoint and reports
// a sentinel; the raw string comes back unchanged, same as the
// temperature sensors.
func (c *Client) TargetTemperature(ctx context.Context) (any, error) {
	fields, err := c.get(ctx, pathControlInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("target temperature: %w", err)
	}
	return rawValue(fields.Get("stemp")), nil
}

// Power reads the power flag: 0 (off) or 1 (on).
func (c *Client) Power(ctx context.Context) (int, error) {
	fields, err := c.get(ctx, pathControlInfo, nil)
	if err != nil {
		return 0, fmt.Errorf("power: %w", err)
	}
	pow, err := fields.Int("pow")
	if err != nil {
		return 0, fmt.Errorf("%w: power: %w", ErrRead, err)
	}
	return pow, nil
}

// ModeCode reads the appliance's raw operating mode code.
func (c *Client) ModeCode(ctx context.Context) (int, error) {
	fields, err := c.get(ctx, pathControlInfo, nil)
	if err != nil {
		return 0, fmt.Errorf("mode code: %w", err)
	}
	mode, err := fields.Int("mode")
	if err != nil {
		return 0, fmt.Errorf("%w: mode code: %w", ErrRead, err)
	}
	return mode, nil
}

// SetTargetTemperature writes a new temperature setpoint.
func (c *Client) SetTargetTemperature(ctx context.Context, celsius float64) error {
	return c.setControl(ctx, map[string]string{
		"stemp": strconv.FormatFloat(celsius, 'f', 1, 64),
	})
}

// SetPower writes the power flag (0 or 1).
func (c *Client) SetPower(ctx context.Context, power int) error {
	return c.setControl(ctx, map[string]string{
		"pow": strconv.Itoa(power),
	})
}

// SetModeCode writes the raw operating mode code.
func (c *Client) SetModeCode(ctx context.Context, code int) error {
	return c.setControl(ctx, map[string]string{
		"mode": strconv.Itoa(code),
	})
}

// setControl writes control fields to the appliance.
//
// The set_control_info endpoint rejects partial updates: pow, mode,
// stemp, and shum must all be present on every call. The current
// control info is read first and the patch merged over it, so a single
// changed field round-trips the rest untouched.
func (c *Client) setControl(ctx context.Context, patch map[string]string) error {
	current, err := c.get(ctx, pathControlInfo, nil)
	if err != nil {
		return fmt.Errorf("%w: reading control info before write: %w", ErrWrite, err)
	}

	params := url.Values{}
	for _, key := range []string{"pow", "mode", "stemp", "shum"} {
		params.Set(key, current.Get(key))
	}
	for key, value := range patch {
		params.Set(key, value)
	}

	if _, err := c.get(ctx, pathSetControlInfo, params); err != nil {
		return fmt.Errorf("%w: set control info: %w", ErrWrite, err)
	}

	return nil
}

// get performs one HTTP exchange and parses the field-list response.
// Transport and protocol failures are both reported as ErrRead; the
// write path re-wraps them as ErrWrite.
func (c *Client) get(ctx context.Context, path string, params url.Values) (Fields, error) {
	endpoint := "http://" + c.address + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrRead, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %w", ErrRead, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrRead, path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: request %s: status %d", ErrRead, path, resp.StatusCode)
	}

	fields, err := parseFields(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	return fields, nil
}
