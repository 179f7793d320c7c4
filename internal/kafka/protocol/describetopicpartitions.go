package protocol

import (
	"io"

	"github.com/google/uuid"
)

// DescribeTopicPartitionsRequestTopic is one requested topic name, per
// spec.md §4.F.2.
type DescribeTopicPartitionsRequestTopic struct {
	Name string
}

// DescribeTopicPartitionsCursor is the pagination cursor carried by both
// the request and the response (spec.md §4.F.2).
type DescribeTopicPartitionsCursor struct {
	TopicName      string
	PartitionIndex int32
}

// DescribeTopicPartitionsRequest is the decoded request body.
type DescribeTopicPartitionsRequest struct {
	Topics                 []DescribeTopicPartitionsRequestTopic
	ResponsePartitionLimit int32
	Cursor                 *DescribeTopicPartitionsCursor
}

// DecodeDescribeTopicPartitionsRequest decodes the DescribeTopicPartitions
// request body: a compact array of {name, tag buffer}, a partition limit,
// a nullable cursor (leading 0xFF byte means null), then a tag buffer.
func DecodeDescribeTopicPartitionsRequest(r io.Reader) (*DescribeTopicPartitionsRequest, error) {
	n, err := CompactArrayLen(r)
	if err != nil {
		return nil, err
	}
	topics := make([]DescribeTopicPartitionsRequestTopic, n)
	for i := 0; i < n; i++ {
		name, err := ReadCompactString(r)
		if err != nil {
			return nil, err
		}
		if err := ReadTagBuffer(r); err != nil {
			return nil, err
		}
		topics[i] = DescribeTopicPartitionsRequestTopic{Name: name}
	}

	limit, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}

	cursor, err := decodeCursor(r)
	if err != nil {
		return nil, err
	}

	if err := ReadTagBuffer(r); err != nil {
		return nil, err
	}

	return &DescribeTopicPartitionsRequest{
		Topics:                 topics,
		ResponsePartitionLimit: limit,
		Cursor:                 cursor,
	}, nil
}

// decodeCursor reads the nullable cursor: a leading 0xFF byte denotes null,
// anything else is the first byte of a compact-string topic_name.
func decodeCursor(r io.Reader) (*DescribeTopicPartitionsCursor, error) {
	tag, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}
	if tag == 0xFF {
		return nil, nil
	}
	// tag is the already-consumed first byte of the cursor's compact-string
	// length prefix; re-decode the rest of the uvarint length from it.
	length, err := continueUvarint(r, tag)
	if err != nil {
		return nil, err
	}
	var name string
	if length > 0 {
		n := length - 1
		buf := make([]byte, n)
		if n > 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, wrapShortRead(err)
			}
		}
		name = string(buf)
	}
	partitionIndex, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if err := ReadTagBuffer(r); err != nil {
		return nil, err
	}
	return &DescribeTopicPartitionsCursor{TopicName: name, PartitionIndex: partitionIndex}, nil
}

// continueUvarint finishes decoding a base-128 uvarint whose first byte has
// already been read as first.
func continueUvarint(r io.Reader, first byte) (uint64, error) {
	if first&0x80 == 0 {
		return uint64(first), nil
	}
	result := uint64(first & 0x7f)
	shift := uint(7)
	for {
		b, err := ReadUint8(r)
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, ErrMalformedVarint
		}
	}
}

// DescribeTopicPartitionsPartition is one partition entry in a topic's
// response (spec.md §4.F.2); every field beyond error_code and
// partition_index is a fixed default since this broker leads nothing.
type DescribeTopicPartitionsPartition struct {
	ErrorCode              int16
	PartitionIndex         int32
	LeaderID               int32
	LeaderEpoch            int32
	Replicas               []int32
	ISR                    []int32
	EligibleLeaderReplicas []int32
	LastKnownELR           []int32
	OfflineReplicas        []int32
}

// DescribeTopicPartitionsTopic is one topic entry in the response.
type DescribeTopicPartitionsTopic struct {
	ErrorCode                 int16
	Name                      *string
	TopicID                   uuid.UUID
	IsInternal                bool
	Partitions                []DescribeTopicPartitionsPartition
	TopicAuthorizedOperations int32
}

// DescribeTopicPartitionsResponse is the full decoded response body.
type DescribeTopicPartitionsResponse struct {
	ThrottleTimeMs int32
	Topics         []DescribeTopicPartitionsTopic
	NextCursor     *DescribeTopicPartitionsCursor
}

// EncodeDescribeTopicPartitionsResponse appends the response body (after
// the dispatcher's correlation_id + tag buffer): throttle_time_ms, the
// compact topics array, the next_cursor, and a final tag buffer.
func EncodeDescribeTopicPartitionsResponse(w *Writer, resp *DescribeTopicPartitionsResponse) {
	w.WriteInt32(resp.ThrottleTimeMs)
	w.WriteCompactArrayLen(len(resp.Topics))
	for _, t := range resp.Topics {
		w.WriteInt16(t.ErrorCode)
		w.WriteCompactNullableString(t.Name)
		w.WriteUUID(t.TopicID)
		w.WriteBool(t.IsInternal)
		w.WriteCompactArrayLen(len(t.Partitions))
		for _, p := range t.Partitions {
			w.WriteInt16(p.ErrorCode)
			w.WriteInt32(p.PartitionIndex)
			w.WriteInt32(p.LeaderID)
			w.WriteInt32(p.LeaderEpoch)
			w.WriteCompactInt32Array(p.Replicas)
			w.WriteCompactInt32Array(p.ISR)
			w.WriteCompactInt32Array(p.EligibleLeaderReplicas)
			w.WriteCompactInt32Array(p.LastKnownELR)
			w.WriteCompactInt32Array(p.OfflineReplicas)
			w.WriteEmptyTagBuffer()
		}
		w.WriteInt32(t.TopicAuthorizedOperations)
		w.WriteEmptyTagBuffer()
	}
	if resp.NextCursor == nil {
		w.WriteUint8(0xFF)
	} else {
		w.WriteCompactString(resp.NextCursor.TopicName)
		w.WriteInt32(resp.NextCursor.PartitionIndex)
		w.WriteEmptyTagBuffer()
	}
	w.WriteEmptyTagBuffer()
}
