// Package protocol implements the Kafka wire protocol: flexible-version
// primitives, record batches, request headers, and the four supported API
// bodies (ApiVersions, DescribeTopicPartitions, Fetch, Produce).
package protocol

import (
	"errors"
	"fmt"
)

// Framing and codec errors. These terminate a connection when they surface
// out of the framer, and abort a metadata-log scan when they surface out of
// the record-batch codec (except where noted).
var (
	// ErrUnexpectedEndOfInput is returned when a read comes up short of the
	// bytes a length prefix promised. A metadata-log scan treats it as a
	// clean end of the log rather than aborting.
	ErrUnexpectedEndOfInput = errors.New("protocol: unexpected end of input")

	// ErrMalformedVarint is returned when a (u)varint runs past 5 bytes
	// without terminating. A stream that ends mid-varint yields
	// ErrUnexpectedEndOfInput instead.
	ErrMalformedVarint = errors.New("protocol: malformed varint")

	// ErrMalformedFrame is returned when a structure's framing bytes
	// (lengths, tag counts, magic bytes) are internally inconsistent.
	ErrMalformedFrame = errors.New("protocol: malformed frame")
)

// ApiKeyError describes why a request header's api_key could not be
// dispatched. It is never fatal to the connection: the dispatcher always
// emits a best-effort response that echoes correlation_id.
type ApiKeyError struct {
	ApiKey      int16
	Unsupported bool // true: reserved key 0..=75 with no handler. false: out of range entirely.
}

func (e *ApiKeyError) Error() string {
	if e.Unsupported {
		return fmt.Sprintf("protocol: unimplemented api key %d", e.ApiKey)
	}
	return fmt.Sprintf("protocol: invalid api key %d", e.ApiKey)
}

// ErrUnsupportedApiKey reports apiKey as an ApiKeyError with Unsupported set.
func ErrUnsupportedApiKey(apiKey int16) error {
	return &ApiKeyError{ApiKey: apiKey, Unsupported: true}
}

// ErrInvalidApiKey reports apiKey as an ApiKeyError with Unsupported unset.
func ErrInvalidApiKey(apiKey int16) error {
	return &ApiKeyError{ApiKey: apiKey}
}
