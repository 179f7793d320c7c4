package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedHeader(apiKey, apiVersion int16, correlationID int32, clientID *string) []byte {
	var w Writer
	w.WriteInt16(apiKey)
	w.WriteInt16(apiVersion)
	w.WriteInt32(correlationID)
	if clientID == nil {
		w.WriteInt16(-1)
	} else {
		w.WriteInt16(int16(len(*clientID)))
		w.WriteRaw([]byte(*clientID))
	}
	w.WriteEmptyTagBuffer()
	return w.Bytes()
}

func TestReadRequestHeaderWithClientID(t *testing.T) {
	client := "adminclient-1"
	raw := encodedHeader(ApiKeyApiVersions, 4, 7, &client)

	h, err := ReadRequestHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, ApiKeyApiVersions, h.ApiKey)
	assert.Equal(t, int16(4), h.ApiVersion)
	assert.Equal(t, int32(7), h.CorrelationID)
	require.NotNil(t, h.ClientID)
	assert.Equal(t, client, *h.ClientID)
}

func TestReadRequestHeaderNullClientID(t *testing.T) {
	raw := encodedHeader(ApiKeyFetch, 16, 1, nil)

	h, err := ReadRequestHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Nil(t, h.ClientID)
}

func TestValidateKnownApiKey(t *testing.T) {
	h := &RequestHeader{ApiKey: ApiKeyProduce}
	assert.NoError(t, h.Validate())
}

func TestValidateReservedUnimplementedApiKey(t *testing.T) {
	h := &RequestHeader{ApiKey: 3} // Metadata: reserved, no handler
	err := h.Validate()
	require.Error(t, err)
	var apiErr *ApiKeyError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Unsupported)
}

func TestValidateOutOfRangeApiKey(t *testing.T) {
	h := &RequestHeader{ApiKey: 9999}
	err := h.Validate()
	require.Error(t, err)
	var apiErr *ApiKeyError
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, apiErr.Unsupported)
}

func TestIsFlexibleVersionBoundaries(t *testing.T) {
	assert.False(t, IsFlexibleVersion(ApiKeyApiVersions, 2))
	assert.True(t, IsFlexibleVersion(ApiKeyApiVersions, 3))
	assert.True(t, IsFlexibleVersion(ApiKeyDescribeTopicPartitions, 0))
	assert.False(t, IsFlexibleVersion(ApiKeyFetch, 11))
	assert.True(t, IsFlexibleVersion(ApiKeyFetch, 12))
	assert.False(t, IsFlexibleVersion(ApiKeyProduce, 8))
	assert.True(t, IsFlexibleVersion(ApiKeyProduce, 9))
}
