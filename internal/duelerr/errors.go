// Package duelerr provides the structured error value returned by every game
// operation: a machine-readable kind plus contextual metadata, so callers can
// branch on the kind instead of parsing messages.
package duelerr

import (
	"errors"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain identifies these errors in gRPC error details.
const Domain = "duelhall.game"

// Error is the domain error type.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error with a kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithMetadata creates an error carrying context such as lengths or identities.
func WithMetadata(kind Kind, message string, metadata map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Metadata: metadata}
}

// TooLong builds a length violation error carrying the offending byte length.
func TooLong(kind Kind, message string, length, limit int) *Error {
	return WithMetadata(kind, message, map[string]string{
		"length": strconv.Itoa(length),
		"limit":  strconv.Itoa(limit),
	})
}

// KindOf extracts the kind from err, or KindUnknown when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ToGRPCStatus converts the error to a gRPC status carrying an ErrorInfo
// detail with the kind as reason and the metadata attached.
func (e *Error) ToGRPCStatus() error {
	st := status.New(e.Kind.GRPCCode(), e.Error())
	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Kind),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// ToGRPC converts any error into a gRPC status error. Non-domain errors map
// to codes.Unknown.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de.ToGRPCStatus()
	}
	return status.New(KindUnknown.GRPCCode(), err.Error()).Err()
}
