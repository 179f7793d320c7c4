package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProduceRequest(t *testing.T) {
	var w Writer
	w.WriteCompactNullableString(nil) // transactional_id
	w.WriteInt16(-1)                  // acks
	w.WriteInt32(1500)                // timeout_ms

	w.WriteCompactArrayLen(1)
	w.WriteCompactString("a-topic")
	w.WriteCompactArrayLen(1)
	w.WriteInt32(0)
	w.WriteCompactBytes([]byte{1, 2, 3})
	w.WriteEmptyTagBuffer()
	w.WriteEmptyTagBuffer()

	w.WriteEmptyTagBuffer()

	req, err := DecodeProduceRequest(bytes.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, req.TransactionalID)
	assert.Equal(t, int16(-1), req.Acks)
	require.Len(t, req.Topics, 1)
	assert.Equal(t, "a-topic", req.Topics[0].Name)
	require.Len(t, req.Topics[0].Partitions, 1)
	assert.Equal(t, []byte{1, 2, 3}, req.Topics[0].Partitions[0].Records)
}

func TestEncodeProduceResponseUnknownTopicOrPartition(t *testing.T) {
	resp := &ProduceResponse{
		ThrottleTimeMs: 0,
		Responses: []ProduceResponseTopic{
			{
				Name: "a-topic",
				Partitions: []ProduceResponsePartition{
					{
						PartitionIndex:  0,
						ErrorCode:       ErrorUnknownTopicOrPart,
						BaseOffset:      -1,
						LogAppendTimeMs: -1,
						LogStartOffset:  -1,
					},
				},
			},
		},
	}

	var w Writer
	EncodeProduceResponse(&w, resp)

	r := bytes.NewReader(w.Bytes())
	n, err := CompactArrayLen(r)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	name, err := ReadCompactString(r)
	require.NoError(t, err)
	assert.Equal(t, "a-topic", name)

	np, err := CompactArrayLen(r)
	require.NoError(t, err)
	require.Equal(t, 1, np)

	idx, err := ReadInt32(r)
	require.NoError(t, err)
	assert.Equal(t, int32(0), idx)
	errorCode, err := ReadInt16(r)
	require.NoError(t, err)
	assert.Equal(t, ErrorUnknownTopicOrPart, errorCode)
	offset, err := ReadInt64(r)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), offset)
}
