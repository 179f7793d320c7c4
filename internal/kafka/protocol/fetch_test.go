package protocol

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedFetchRequest(topicID uuid.UUID, partition int32) []byte {
	var w Writer
	w.WriteInt32(500) // max_wait_ms
	w.WriteInt32(1)   // min_bytes
	w.WriteInt32(1 << 20)
	w.WriteInt8(0) // isolation_level
	w.WriteInt32(0)
	w.WriteInt32(0)

	w.WriteCompactArrayLen(1)
	w.WriteUUID(topicID)
	w.WriteCompactArrayLen(1)
	w.WriteInt32(partition)
	w.WriteInt32(-1)
	w.WriteInt64(0)
	w.WriteInt32(-1)
	w.WriteInt64(0)
	w.WriteInt32(1 << 20)
	w.WriteEmptyTagBuffer()
	w.WriteEmptyTagBuffer()

	w.WriteCompactArrayLen(0) // forgotten_topics
	w.WriteCompactString("")  // rack_id
	w.WriteEmptyTagBuffer()
	return w.Bytes()
}

func TestDecodeFetchRequest(t *testing.T) {
	topicID := uuid.New()
	raw := encodedFetchRequest(topicID, 0)

	req, err := DecodeFetchRequest(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, int32(500), req.MaxWaitMs)
	require.Len(t, req.Topics, 1)
	assert.Equal(t, topicID, req.Topics[0].TopicID)
	require.Len(t, req.Topics[0].Partitions, 1)
	assert.Equal(t, int32(0), req.Topics[0].Partitions[0].Partition)
	assert.Empty(t, req.ForgottenTopics)
}

func TestEncodeFetchResponseUnknownTopicEmptyRecords(t *testing.T) {
	topicID := uuid.New()
	resp := &FetchResponse{
		ThrottleTimeMs: 0,
		ErrorCode:      ErrorNone,
		SessionID:      0,
		Responses: []FetchResponseTopic{
			{
				TopicID: topicID,
				Partitions: []FetchResponsePartition{
					{
						PartitionIndex:      0,
						ErrorCode:           ErrorUnknownTopicID,
						AbortedTransactions: []FetchAbortedTransaction{},
						Records:             []byte{},
					},
				},
			},
		},
	}

	var w Writer
	EncodeFetchResponse(&w, resp)

	r := bytes.NewReader(w.Bytes())
	_, err := ReadInt32(r) // throttle_time_ms
	require.NoError(t, err)
	errorCode, err := ReadInt16(r)
	require.NoError(t, err)
	assert.Equal(t, ErrorNone, errorCode)
	_, err = ReadInt32(r) // session_id
	require.NoError(t, err)

	n, err := CompactArrayLen(r)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	gotID, err := ReadUUID(r)
	require.NoError(t, err)
	assert.Equal(t, topicID, gotID)

	np, err := CompactArrayLen(r)
	require.NoError(t, err)
	require.Equal(t, 1, np)

	partIdx, err := ReadInt32(r)
	require.NoError(t, err)
	assert.Equal(t, int32(0), partIdx)
	partErr, err := ReadInt16(r)
	require.NoError(t, err)
	assert.Equal(t, ErrorUnknownTopicID, partErr)
}
