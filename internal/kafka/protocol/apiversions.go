package protocol

import "io"

// ApiVersionsRequest is the decoded ApiVersions request body (spec.md
// §4.F.1). Its contents are accepted but not otherwise used by the
// handler — Kafka clients send their own name/version for diagnostics.
type ApiVersionsRequest struct {
	ClientSoftwareName    string
	ClientSoftwareVersion string
}

// DecodeApiVersionsRequest decodes the flexible-version ApiVersions body.
func DecodeApiVersionsRequest(r io.Reader) (*ApiVersionsRequest, error) {
	name, err := ReadCompactString(r)
	if err != nil {
		return nil, err
	}
	version, err := ReadCompactString(r)
	if err != nil {
		return nil, err
	}
	if err := ReadTagBuffer(r); err != nil {
		return nil, err
	}
	return &ApiVersionsRequest{ClientSoftwareName: name, ClientSoftwareVersion: version}, nil
}

// SupportedApiKey is one entry of the ApiVersions response's advertised
// api_keys array.
type SupportedApiKey struct {
	ApiKey     int16
	MinVersion int16
	MaxVersion int16
}

// SupportedApiKeys is the set this broker advertises, per spec.md §4.F.1.
func SupportedApiKeys() []SupportedApiKey {
	return []SupportedApiKey{
		{ApiKeyApiVersions, ApiVersionsMinVersion, ApiVersionsMaxVersion},
		{ApiKeyDescribeTopicPartitions, DescribeTopicPartitionsMinVersion, DescribeTopicPartitionsMaxVersion},
		{ApiKeyFetch, FetchMinVersion, FetchMaxVersion},
		{ApiKeyProduce, ProduceMinVersion, ProduceMaxVersion},
	}
}

// EncodeApiVersionsResponse appends the ApiVersions response body (after
// the common correlation_id + tag buffer the dispatcher already wrote):
// error_code, the compact api_keys array, throttle_time_ms, and a final
// tag buffer.
func EncodeApiVersionsResponse(w *Writer, errorCode int16, apiKeys []SupportedApiKey) {
	w.WriteInt16(errorCode)
	w.WriteCompactArrayLen(len(apiKeys))
	for _, k := range apiKeys {
		w.WriteInt16(k.ApiKey)
		w.WriteInt16(k.MinVersion)
		w.WriteInt16(k.MaxVersion)
		w.WriteEmptyTagBuffer()
	}
	w.WriteInt32(0) // throttle_time_ms
	w.WriteEmptyTagBuffer()
}
