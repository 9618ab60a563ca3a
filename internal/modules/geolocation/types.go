package geolocation

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/webinterop/internal/interop"
)

// PositionOptions tunes a position request. Nil fields are left to the
// browser default and are never sent.
type PositionOptions struct {
	EnableHighAccuracy *bool
	Timeout            *time.Duration
	MaximumAge         *time.Duration
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Duration returns a pointer to d.
func Duration(d time.Duration) *time.Duration { return &d }

// WireValue encodes the options with durations in milliseconds, omitting
// unset fields.
func (o *PositionOptions) WireValue() any {
	if o == nil {
		return nil
	}
	w := WireOptions{EnableHighAccuracy: o.EnableHighAccuracy}
	if o.Timeout != nil {
		ms := o.Timeout.Milliseconds()
		w.Timeout = &ms
	}
	if o.MaximumAge != nil {
		ms := o.MaximumAge.Milliseconds()
		w.MaximumAge = &ms
	}
	return w
}

// WireOptions is PositionOptions as it travels.
type WireOptions struct {
	EnableHighAccuracy *bool  `json:"enableHighAccuracy,omitempty"`
	Timeout            *int64 `json:"timeout,omitempty"`
	MaximumAge         *int64 `json:"maximumAge,omitempty"`
}

// Options converts back to PositionOptions, keeping only the values a
// browser acts on: high accuracy when requested and positive durations.
func (w *WireOptions) Options() *PositionOptions {
	if w == nil {
		return nil
	}
	o := &PositionOptions{}
	if w.EnableHighAccuracy != nil && *w.EnableHighAccuracy {
		o.EnableHighAccuracy = Bool(true)
	}
	if w.Timeout != nil && *w.Timeout > 0 {
		o.Timeout = Duration(time.Duration(*w.Timeout) * time.Millisecond)
	}
	if w.MaximumAge != nil && *w.MaximumAge > 0 {
		o.MaximumAge = Duration(time.Duration(*w.MaximumAge) * time.Millisecond)
	}
	return o
}

// Coordinates is the location part of a Position. Optional values are nil
// when the device does not report them.
type Coordinates struct {
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Accuracy         float64  `json:"accuracy"`
	Altitude         *float64 `json:"altitude,omitempty"`
	AltitudeAccuracy *float64 `json:"altitudeAccuracy,omitempty"`
	Heading          *float64 `json:"heading,omitempty"`
	Speed            *float64 `json:"speed,omitempty"`
}

// Position is a located device.
type Position struct {
	Coords Coordinates `json:"coords"`
	// Timestamp is in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// Time returns the acquisition time.
func (p Position) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g ±%gm)", p.Coords.Latitude, p.Coords.Longitude, p.Coords.Accuracy)
}

// ErrorCode classifies a PositionError.
type ErrorCode int

const (
	CodeUnsupported         ErrorCode = 0
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
)

func (c ErrorCode) String() string {
	switch c {
	case CodeUnsupported:
		return "Unsupported"
	case CodePermissionDenied:
		return "PermissionDenied"
	case CodePositionUnavailable:
		return "PositionUnavailable"
	case CodeTimeout:
		return "Timeout"
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// UnsupportedMessage is reported when the device has no geolocation.
const UnsupportedMessage = "This device does not support geolocation."

// PositionError describes a failed position request.
type PositionError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *PositionError) Error() string { return e.Message }

// Unsupported returns the error reported on devices without geolocation.
func Unsupported() *PositionError {
	return &PositionError{Code: CodeUnsupported, Message: UnsupportedMessage}
}

// Result holds either a Position or a PositionError.
type Result struct {
	Position *Position     `json:"position"`
	Error    *PositionError `json:"error"`
}

// IsSuccess reports whether a position was obtained.
func (r Result) IsSuccess() bool { return r.Position != nil }

func (r Result) String() string {
	if r.IsSuccess() {
		return fmt.Sprintf("Success:true Position:%s", r.Position)
	}
	msg := ""
	if r.Error != nil {
		msg = r.Error.Message
	}
	return fmt.Sprintf("Success:false Error:%s", msg)
}

// EventReason tells why a watch event fired.
type EventReason int

const (
	ReasonNone EventReason = iota
	ReasonWatchSuccess
	ReasonWatchError
)

var reasons = interop.NewEnumTable(map[EventReason]string{
	ReasonWatchSuccess: "WatchSuccess",
	ReasonWatchError:   "WatchError",
})

func (r EventReason) String() string {
	switch r {
	case ReasonWatchSuccess:
		return "WatchSuccess"
	case ReasonWatchError:
		return "WatchError"
	}
	return "None"
}

// MarshalText encodes the reason as "watch-success" or "watch-error".
func (r EventReason) MarshalText() ([]byte, error) {
	s, _ := reasons.Wire(r)
	return []byte(s), nil
}

// UnmarshalText accepts any casing of the wire names; unknown values decode
// to ReasonNone.
func (r *EventReason) UnmarshalText(text []byte) error {
	*r = reasons.Parse(string(text))
	return nil
}

// Event is a watch notification.
type Event struct {
	Key    string      `json:"key"`
	Reason EventReason `json:"reason"`
	Result *Result     `json:"result"`
}

// IsSuccess reports whether the event carries a position.
func (e Event) IsSuccess() bool {
	return e.Result != nil && e.Result.IsSuccess()
}

// WatchID identifies a browser position watch.
type WatchID int64
