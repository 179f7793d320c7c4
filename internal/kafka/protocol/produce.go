package protocol

import "io"

// ProduceRequestPartition is one partition's data within a ProduceRequestTopic.
// Records carries the raw nullable compact-bytes RECORDS payload verbatim;
// this broker never decodes it since every partition is answered
// "unknown topic or partition" regardless of content (spec.md §1).
type ProduceRequestPartition struct {
	PartitionIndex int32
	Records        []byte
}

// ProduceRequestTopic is one topic's data within a ProduceRequest.
type ProduceRequestTopic struct {
	Name       string
	Partitions []ProduceRequestPartition
}

// ProduceRequest is the decoded Produce request body, per spec.md §4.F.4.
type ProduceRequest struct {
	TransactionalID *string
	Acks            int16
	TimeoutMs       int32
	Topics          []ProduceRequestTopic
}

// DecodeProduceRequest decodes the Produce request body.
func DecodeProduceRequest(r io.Reader) (*ProduceRequest, error) {
	req := &ProduceRequest{}
	var err error
	if req.TransactionalID, err = ReadCompactNullableString(r); err != nil {
		return nil, err
	}
	if req.Acks, err = ReadInt16(r); err != nil {
		return nil, err
	}
	if req.TimeoutMs, err = ReadInt32(r); err != nil {
		return nil, err
	}

	topicCount, err := CompactArrayLen(r)
	if err != nil {
		return nil, err
	}
	req.Topics = make([]ProduceRequestTopic, topicCount)
	for i := 0; i < topicCount; i++ {
		name, err := ReadCompactString(r)
		if err != nil {
			return nil, err
		}
		partCount, err := CompactArrayLen(r)
		if err != nil {
			return nil, err
		}
		parts := make([]ProduceRequestPartition, partCount)
		for j := 0; j < partCount; j++ {
			idx, err := ReadInt32(r)
			if err != nil {
				return nil, err
			}
			records, err := ReadCompactBytes(r)
			if err != nil {
				return nil, err
			}
			parts[j] = ProduceRequestPartition{PartitionIndex: idx, Records: records}
		}
		if err := ReadTagBuffer(r); err != nil {
			return nil, err
		}
		req.Topics[i] = ProduceRequestTopic{Name: name, Partitions: parts}
	}

	if err := ReadTagBuffer(r); err != nil {
		return nil, err
	}
	return req, nil
}

// ProduceResponsePartition is one partition's result within ProduceResponseTopic.
type ProduceResponsePartition struct {
	PartitionIndex  int32
	ErrorCode       int16
	BaseOffset      int64
	LogAppendTimeMs int64
	LogStartOffset  int64
	ErrorMessage    *string
}

// ProduceResponseTopic is one topic's result within ProduceResponse.
type ProduceResponseTopic struct {
	Name       string
	Partitions []ProduceResponsePartition
}

// ProduceResponse is the full Produce response body, per spec.md §4.F.4.
type ProduceResponse struct {
	Responses      []ProduceResponseTopic
	ThrottleTimeMs int32
}

// EncodeProduceResponse appends the Produce response body (after the
// dispatcher's correlation_id + tag buffer).
func EncodeProduceResponse(w *Writer, resp *ProduceResponse) {
	w.WriteCompactArrayLen(len(resp.Responses))
	for _, t := range resp.Responses {
		w.WriteCompactString(t.Name)
		w.WriteCompactArrayLen(len(t.Partitions))
		for _, p := range t.Partitions {
			w.WriteInt32(p.PartitionIndex)
			w.WriteInt16(p.ErrorCode)
			w.WriteInt64(p.BaseOffset)
			w.WriteInt64(p.LogAppendTimeMs)
			w.WriteInt64(p.LogStartOffset)
			w.WriteCompactArrayLen(0) // record_errors, always empty
			w.WriteCompactNullableString(p.ErrorMessage)
			w.WriteEmptyTagBuffer()
		}
		w.WriteEmptyTagBuffer()
	}
	w.WriteInt32(resp.ThrottleTimeMs)
	w.WriteEmptyTagBuffer()
}
