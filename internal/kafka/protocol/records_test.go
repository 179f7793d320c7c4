package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func sampleTopicBatch(topicName string, topicID uuid.UUID) *RecordsBatch {
	return &RecordsBatch{
		BaseOffset:           0,
		PartitionLeaderEpoch: 1,
		Magic:                2,
		Attributes:           0,
		LastOffsetDelta:      0,
		BaseTimestamp:        1000,
		MaxTimestamp:         1000,
		ProducerID:           -1,
		ProducerEpoch:        -1,
		BaseSequence:         -1,
		Records: []Record{
			{
				Attributes:     0,
				TimestampDelta: 0,
				OffsetDelta:    0,
				Key:            nil,
				Value: RecordValue{
					Kind:         RecordValueTopic,
					FrameVersion: 1,
					FrameType:    FrameTypeTopic,
					TypeVersion:  0,
					Topic:        &TopicRecord{Name: topicName, TopicUUID: topicID},
				},
				Headers: nil,
			},
		},
	}
}

func TestRecordsBatchEncodeDecodeRoundTrip(t *testing.T) {
	id := uuid.New()
	want := sampleTopicBatch("my-topic", id)

	var w Writer
	EncodeRecordsBatch(&w, want)

	got, err := DecodeRecordsBatch(bytes.NewReader(w.Bytes()))
	require.NoError(t, err)

	require.Len(t, got.Records, 1)
	require.Equal(t, RecordValueTopic, got.Records[0].Value.Kind)
	require.Equal(t, "my-topic", got.Records[0].Value.Topic.Name)
	require.Equal(t, id, got.Records[0].Value.Topic.TopicUUID)
	require.Equal(t, want.BaseTimestamp, got.BaseTimestamp)
	require.Equal(t, want.PartitionLeaderEpoch, got.PartitionLeaderEpoch)
}

func TestRecordsBatchZeroLengthIsEndOfLog(t *testing.T) {
	var w Writer
	w.WriteUint64(0)
	w.WriteInt32(0) // batch_length = 0

	_, err := DecodeRecordsBatch(bytes.NewReader(w.Bytes()))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEndOfLog))
}

func TestRecordsBatchTruncatedMidBatchIsUnexpectedEndOfInput(t *testing.T) {
	id := uuid.New()
	var w Writer
	EncodeRecordsBatch(&w, sampleTopicBatch("t", id))

	truncated := w.Bytes()[:len(w.Bytes())-5]
	_, err := DecodeRecordsBatch(bytes.NewReader(truncated))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnexpectedEndOfInput))
}

func TestRecordsBatchCorruptedCRCIsDetected(t *testing.T) {
	id := uuid.New()
	var w Writer
	EncodeRecordsBatch(&w, sampleTopicBatch("t", id))

	raw := w.Bytes()
	// CRC sits at offset base_offset(8) + batch_length(4) + partition_leader_epoch(4) + magic(1) = 17.
	raw[17] ^= 0xFF

	_, err := DecodeRecordsBatch(bytes.NewReader(raw))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCRCMismatch))
}

func TestRecordsBatchBadMagicByteIsMalformedFrame(t *testing.T) {
	id := uuid.New()
	var w Writer
	EncodeRecordsBatch(&w, sampleTopicBatch("t", id))

	raw := w.Bytes()
	raw[16] = 1 // magic byte offset: base_offset(8) + batch_length(4) + partition_leader_epoch(4)

	_, err := DecodeRecordsBatch(bytes.NewReader(raw))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestPartitionRecordValueRoundTrip(t *testing.T) {
	topicID := uuid.New()
	dir := uuid.New()
	batch := &RecordsBatch{
		PartitionLeaderEpoch: 1,
		Magic:                2,
		ProducerID:           -1,
		ProducerEpoch:        -1,
		BaseSequence:         -1,
		Records: []Record{
			{
				Value: RecordValue{
					Kind:         RecordValuePartition,
					FrameVersion: 1,
					FrameType:    FrameTypePartition,
					TypeVersion:  1,
					Partition: &PartitionRecord{
						PartitionID:    0,
						TopicUUID:      topicID,
						Replicas:       []int32{1},
						ISR:            []int32{1},
						Leader:         1,
						LeaderEpoch:    0,
						PartitionEpoch: 0,
						Directories:    []uuid.UUID{dir},
					},
				},
			},
		},
	}

	var w Writer
	EncodeRecordsBatch(&w, batch)

	got, err := DecodeRecordsBatch(bytes.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	p := got.Records[0].Value.Partition
	require.NotNil(t, p)
	require.Equal(t, topicID, p.TopicUUID)
	require.Equal(t, []int32{1}, p.Replicas)
	require.Equal(t, []uuid.UUID{dir}, p.Directories)
}

func TestUnknownControlRecordFrameTypeAborts(t *testing.T) {
	batch := sampleTopicBatch("x", uuid.New())

	var w Writer
	EncodeRecordsBatch(&w, batch)

	// decodeRecordValue checks frame_type before the batch's CRC is
	// verified, so corrupting frame_type alone is enough to exercise it.
	// The search starts past the 61-byte batch header, whose
	// partition_leader_epoch (1) and magic (2) bytes also read 01 02.
	const batchHeaderLen = 61
	raw := w.Bytes()
	idx := bytes.Index(raw[batchHeaderLen:], []byte{1, FrameTypeTopic})
	require.GreaterOrEqual(t, idx, 0)
	raw[batchHeaderLen+idx+1] = 99

	_, err := DecodeRecordsBatch(bytes.NewReader(raw))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedFrame))
}
