package interop

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument reports bad caller input such as an inverted log
	// level range or a blank required string.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDisposed is returned by proxies used after Dispose.
	ErrDisposed = errors.New("interop proxy disposed")

	// ErrObjectDisposed is reported to the browser when it calls back into
	// an object reference that was released.
	ErrObjectDisposed = errors.New("object reference disposed")

	// ErrUnknownMethod is reported when a callback names a method the
	// object reference does not handle.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrNotConnected is returned when the browser context went away.
	ErrNotConnected = errors.New("browser context not connected")

	// ErrUnknownIdentifier is reported by the browser for an identifier no
	// module exports.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// RemoteError is a failure raised on the other side of the boundary.
type RemoteError struct {
	Identifier string
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Identifier, e.Message)
}

// Is matches the sentinel errors whose text the remote side reported.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrUnknownIdentifier, ErrObjectDisposed, ErrUnknownMethod, ErrInvalidArgument:
		return strings.HasPrefix(e.Message, target.Error())
	}
	return false
}

// InvalidArgument builds an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// RequireNotBlank fails with ErrInvalidArgument when value is empty or only
// whitespace.
func RequireNotBlank(name, value string) error {
	for _, r := range value {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return nil
		}
	}
	return InvalidArgument("%s must not be blank", name)
}
