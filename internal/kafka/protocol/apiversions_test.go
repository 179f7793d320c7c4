package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeApiVersionsRequest(t *testing.T) {
	var w Writer
	w.WriteCompactString("kafka-cli")
	w.WriteCompactString("3.7.0")
	w.WriteEmptyTagBuffer()

	req, err := DecodeApiVersionsRequest(bytes.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "kafka-cli", req.ClientSoftwareName)
	assert.Equal(t, "3.7.0", req.ClientSoftwareVersion)
}

func TestEncodeApiVersionsResponseAdvertisesAllFourApis(t *testing.T) {
	var w Writer
	EncodeApiVersionsResponse(&w, ErrorNone, SupportedApiKeys())

	r := bytes.NewReader(w.Bytes())
	errorCode, err := ReadInt16(r)
	require.NoError(t, err)
	assert.Equal(t, ErrorNone, errorCode)

	n, err := CompactArrayLen(r)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	seen := make(map[int16][2]int16)
	for i := 0; i < n; i++ {
		key, err := ReadInt16(r)
		require.NoError(t, err)
		min, err := ReadInt16(r)
		require.NoError(t, err)
		max, err := ReadInt16(r)
		require.NoError(t, err)
		require.NoError(t, ReadTagBuffer(r))
		seen[key] = [2]int16{min, max}
	}

	assert.Equal(t, [2]int16{FetchMinVersion, FetchMaxVersion}, seen[ApiKeyFetch])
	assert.Equal(t, [2]int16{ProduceMinVersion, ProduceMaxVersion}, seen[ApiKeyProduce])
	assert.Equal(t, [2]int16{ApiVersionsMinVersion, ApiVersionsMaxVersion}, seen[ApiKeyApiVersions])
	assert.Equal(t, [2]int16{DescribeTopicPartitionsMinVersion, DescribeTopicPartitionsMaxVersion}, seen[ApiKeyDescribeTopicPartitions])

	throttle, err := ReadInt32(r)
	require.NoError(t, err)
	assert.Equal(t, int32(0), throttle)
}
