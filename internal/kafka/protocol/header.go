package protocol

import "io"

// RequestHeader is the common header decoded ahead of every request body,
// per spec.md §3's RequestHeader entity.
type RequestHeader struct {
	ApiKey        int16
	ApiVersion    int16
	CorrelationID int32
	ClientID      *string // nullable
}

// ReadRequestHeader decodes the request header from r: api_key, api_version,
// correlation_id, a nullable client_id, then a tag buffer.
//
// The header itself is always encoded with the legacy nullable-STRING form
// for client_id followed by a flexible TAG_BUFFER (Kafka headers became
// flexible independently of whether the body did), matching every request
// this broker accepts. An unknown api_key does not prevent the rest of the
// header from being parsed: the caller still needs CorrelationID to answer
// with an error response.
func ReadRequestHeader(r io.Reader) (*RequestHeader, error) {
	apiKey, err := ReadInt16(r)
	if err != nil {
		return nil, err
	}
	apiVersion, err := ReadInt16(r)
	if err != nil {
		return nil, err
	}
	correlationID, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	clientID, err := ReadNullableString(r)
	if err != nil {
		return nil, err
	}
	if err := ReadTagBuffer(r); err != nil {
		return nil, err
	}
	return &RequestHeader{
		ApiKey:        apiKey,
		ApiVersion:    apiVersion,
		CorrelationID: correlationID,
		ClientID:      clientID,
	}, nil
}

// Validate classifies h.ApiKey per spec.md §3/§4.E: known keys are nil
// here (the dispatcher still checks version support per-API); reserved but
// unimplemented keys (0..=75) report ErrUnsupportedApiKey; everything else
// reports ErrInvalidApiKey.
func (h *RequestHeader) Validate() error {
	if IsKnownApiKey(h.ApiKey) {
		return nil
	}
	if h.ApiKey >= 0 && h.ApiKey <= MaxReservedApiKey {
		return ErrUnsupportedApiKey(h.ApiKey)
	}
	return ErrInvalidApiKey(h.ApiKey)
}
