package wallet

// ErrorKind describes the category of failure a call against the wallet
// server ran into.  Every error returned by this package wraps exactly one
// kind, assigned at the point the fault was detected, so callers can tell a
// broken network apart from a call the wallet itself rejected.
type ErrorKind int

const (
	// ErrInvalidMethod indicates a request was built with an empty method
	// name.  It is detected before any network I/O takes place.
	ErrInvalidMethod ErrorKind = iota

	// ErrConnectionFailed indicates the HTTP exchange with the wallet
	// server could not be established or completed.  This includes
	// timeouts and protocol violations that occur before a response is
	// received.
	ErrConnectionFailed

	// ErrServerExecution indicates the wallet server answered with an
	// internal server error status.  The request was understood but
	// failed while the server was executing it.
	ErrServerExecution

	// ErrUnknownTransport indicates a non-success HTTP status other than
	// internal server error, or an unexpected fault while reading the
	// response stream.
	ErrUnknownTransport

	// ErrDeserialization indicates the response body was not valid JSON
	// or was not shaped like a response envelope.
	ErrDeserialization

	// ErrRPC indicates the wallet server returned a well-formed response
	// whose error field was set.  The underlying *btcjson.RPCError holds
	// the code and message reported by the server.
	ErrRPC
)

// Map of ErrorKind values back to their constant names for pretty printing.
var errorKindStrings = map[ErrorKind]string{
	ErrInvalidMethod:    "ErrInvalidMethod",
	ErrConnectionFailed: "ErrConnectionFailed",
	ErrServerExecution:  "ErrServerExecution",
	ErrUnknownTransport: "ErrUnknownTransport",
	ErrDeserialization:  "ErrDeserialization",
	ErrRPC:              "ErrRPC",
}

// String returns the ErrorKind as a human-readable string.
func (k ErrorKind) String() string {
	if s, ok := errorKindStrings[k]; ok {
		return s
	}
	return "Unknown ErrorKind"
}

// Error implements the error interface so an ErrorKind can be used as a
// target for errors.Is.
func (k ErrorKind) Error() string {
	return k.String()
}

// Error is a classified failure produced by a call against the wallet
// server.  It pairs the kind of fault with a description and the underlying
// cause, which is never discarded.
type Error struct {
	Kind        ErrorKind
	Description string
	Err         error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying cause so callers can reach it with
// errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches this error's kind.  It allows
// errors.Is(err, ErrConnectionFailed) style checks against classified
// failures.
func (e *Error) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && e.Kind == kind
}

// makeError creates a classified Error with the passed kind, description
// and cause.  The cause may be nil for failures detected before any
// external operation took place.
func makeError(kind ErrorKind, desc string, err error) *Error {
	return &Error{Kind: kind, Description: desc, Err: err}
}
