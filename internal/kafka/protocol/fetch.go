package protocol

import (
	"io"

	"github.com/google/uuid"
)

// FetchRequestPartition is one requested partition within a FetchRequestTopic.
type FetchRequestPartition struct {
	Partition          int32
	CurrentLeaderEpoch int32
	FetchOffset        int64
	LastFetchedEpoch   int32
	LogStartOffset     int64
	PartitionMaxBytes  int32
}

// FetchRequestTopic is one requested topic within a FetchRequest.
type FetchRequestTopic struct {
	TopicID    uuid.UUID
	Partitions []FetchRequestPartition
}

// FetchForgottenTopic is one entry of the forgotten_topics array.
type FetchForgottenTopic struct {
	TopicID    uuid.UUID
	Partitions []int32
}

// FetchRequest is the decoded Fetch (v16) request body, per spec.md §4.F.3.
type FetchRequest struct {
	MaxWaitMs       int32
	MinBytes        int32
	MaxBytes        int32
	IsolationLevel  int8
	SessionID       int32
	SessionEpoch    int32
	Topics          []FetchRequestTopic
	ForgottenTopics []FetchForgottenTopic
	RackID          string
}

// DecodeFetchRequest decodes the Fetch v16 request body.
func DecodeFetchRequest(r io.Reader) (*FetchRequest, error) {
	req := &FetchRequest{}
	var err error
	if req.MaxWaitMs, err = ReadInt32(r); err != nil {
		return nil, err
	}
	if req.MinBytes, err = ReadInt32(r); err != nil {
		return nil, err
	}
	if req.MaxBytes, err = ReadInt32(r); err != nil {
		return nil, err
	}
	if req.IsolationLevel, err = ReadInt8(r); err != nil {
		return nil, err
	}
	if req.SessionID, err = ReadInt32(r); err != nil {
		return nil, err
	}
	if req.SessionEpoch, err = ReadInt32(r); err != nil {
		return nil, err
	}

	topicCount, err := CompactArrayLen(r)
	if err != nil {
		return nil, err
	}
	req.Topics = make([]FetchRequestTopic, topicCount)
	for i := 0; i < topicCount; i++ {
		id, err := ReadUUID(r)
		if err != nil {
			return nil, err
		}
		partCount, err := CompactArrayLen(r)
		if err != nil {
			return nil, err
		}
		parts := make([]FetchRequestPartition, partCount)
		for j := 0; j < partCount; j++ {
			p := FetchRequestPartition{}
			if p.Partition, err = ReadInt32(r); err != nil {
				return nil, err
			}
			if p.CurrentLeaderEpoch, err = ReadInt32(r); err != nil {
				return nil, err
			}
			if p.FetchOffset, err = ReadInt64(r); err != nil {
				return nil, err
			}
			if p.LastFetchedEpoch, err = ReadInt32(r); err != nil {
				return nil, err
			}
			if p.LogStartOffset, err = ReadInt64(r); err != nil {
				return nil, err
			}
			if p.PartitionMaxBytes, err = ReadInt32(r); err != nil {
				return nil, err
			}
			if err := ReadTagBuffer(r); err != nil {
				return nil, err
			}
			parts[j] = p
		}
		if err := ReadTagBuffer(r); err != nil {
			return nil, err
		}
		req.Topics[i] = FetchRequestTopic{TopicID: id, Partitions: parts}
	}

	forgottenCount, err := CompactArrayLen(r)
	if err != nil {
		return nil, err
	}
	req.ForgottenTopics = make([]FetchForgottenTopic, forgottenCount)
	for i := 0; i < forgottenCount; i++ {
		id, err := ReadUUID(r)
		if err != nil {
			return nil, err
		}
		parts, err := ReadCompactInt32Array(r)
		if err != nil {
			return nil, err
		}
		if err := ReadTagBuffer(r); err != nil {
			return nil, err
		}
		req.ForgottenTopics[i] = FetchForgottenTopic{TopicID: id, Partitions: parts}
	}

	rackID, err := ReadCompactString(r)
	if err != nil {
		return nil, err
	}
	req.RackID = rackID

	if err := ReadTagBuffer(r); err != nil {
		return nil, err
	}
	return req, nil
}

// FetchAbortedTransaction is one entry of a partition response's
// aborted_transactions array (always empty in this broker).
type FetchAbortedTransaction struct {
	ProducerID  int64
	FirstOffset int64
}

// FetchResponsePartition is one partition's response within FetchResponseTopic.
type FetchResponsePartition struct {
	PartitionIndex       int32
	ErrorCode            int16
	HighWatermark        int64
	LastStableOffset     int64
	LogStartOffset       int64
	AbortedTransactions  []FetchAbortedTransaction
	PreferredReadReplica int32
	Records              []byte
}

// FetchResponseTopic is one topic's response within FetchResponse.
type FetchResponseTopic struct {
	TopicID    uuid.UUID
	Partitions []FetchResponsePartition
}

// FetchResponse is the full decoded Fetch response body, per spec.md §4.F.3.
type FetchResponse struct {
	ThrottleTimeMs int32
	ErrorCode      int16
	SessionID      int32
	Responses      []FetchResponseTopic
}

// EncodeFetchResponse appends the Fetch response body (after the
// dispatcher's correlation_id + tag buffer).
func EncodeFetchResponse(w *Writer, resp *FetchResponse) {
	w.WriteInt32(resp.ThrottleTimeMs)
	w.WriteInt16(resp.ErrorCode)
	w.WriteInt32(resp.SessionID)
	w.WriteCompactArrayLen(len(resp.Responses))
	for _, t := range resp.Responses {
		w.WriteUUID(t.TopicID)
		w.WriteCompactArrayLen(len(t.Partitions))
		for _, p := range t.Partitions {
			w.WriteInt32(p.PartitionIndex)
			w.WriteInt16(p.ErrorCode)
			w.WriteInt64(p.HighWatermark)
			w.WriteInt64(p.LastStableOffset)
			w.WriteInt64(p.LogStartOffset)
			w.WriteCompactArrayLen(len(p.AbortedTransactions))
			for _, a := range p.AbortedTransactions {
				w.WriteInt64(a.ProducerID)
				w.WriteInt64(a.FirstOffset)
				w.WriteEmptyTagBuffer()
			}
			w.WriteInt32(p.PreferredReadReplica)
			w.WriteCompactBytes(p.Records)
			w.WriteEmptyTagBuffer()
		}
		w.WriteEmptyTagBuffer()
	}
	w.WriteEmptyTagBuffer()
}
