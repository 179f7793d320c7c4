package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/google/uuid"
)

// ErrEndOfLog is returned by DecodeRecordsBatch when batch_length is 0,
// the KRaft log's own end-of-segment marker. Combined with
// ErrUnexpectedEndOfInput (truncation), it tells the metadata catalog's
// scan loop to stop cleanly and keep whatever batches were already decoded.
var ErrEndOfLog = errors.New("protocol: clean end of record log")

// crcTable is the Castagnoli polynomial table Kafka uses for record batch
// integrity, grounded in the corpus's own lightkafka decoder.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

// ErrCRCMismatch is returned when a decoded batch's computed CRC does not
// match the CRC recorded in its header.
var ErrCRCMismatch = errors.New("protocol: record batch crc mismatch")

// RecordsBatch is a single Kafka v2 record batch, as read from (or written
// to) the KRaft cluster-metadata log. Field names and order follow
// spec.md §3.
type RecordsBatch struct {
	BaseOffset           uint64
	BatchLength          int32
	PartitionLeaderEpoch int32
	Magic                int8
	CRC                  uint32
	Attributes           int16
	LastOffsetDelta      int32
	BaseTimestamp        int64
	MaxTimestamp         int64
	ProducerID           int64
	ProducerEpoch        int16
	BaseSequence         int32
	Records              []Record
}

// Record is a single record within a RecordsBatch, per spec.md §3.
type Record struct {
	Attributes     int8
	TimestampDelta int64
	OffsetDelta    int64
	Key            []byte // nil when absent (key_length == -1)
	Value          RecordValue
	Headers        []RecordHeader
}

// RecordHeader is a single (key, value) pair attached to a Record.
type RecordHeader struct {
	Key   string
	Value []byte
}

// RecordValueKind tags which control-record schema a RecordValue holds.
type RecordValueKind int

const (
	RecordValueUnknown RecordValueKind = iota
	RecordValueFeatureLevel
	RecordValueTopic
	RecordValuePartition
)

// Control-record frame types (spec.md §3's RecordValue variants).
const (
	FrameTypeTopic        int8 = 2
	FrameTypePartition    int8 = 3
	FrameTypeFeatureLevel int8 = 12
)

// RecordValue is the tagged variant of KRaft control-record values decoded
// while loading __cluster_metadata: FeatureLevel, Topic, or Partition.
type RecordValue struct {
	Kind         RecordValueKind
	FrameVersion int8
	FrameType    int8
	TypeVersion  int8

	FeatureLevel *FeatureLevelRecord
	Topic        *TopicRecord
	Partition    *PartitionRecord
}

// FeatureLevelRecord is control-record frame type 12.
type FeatureLevelRecord struct {
	Name         string
	FeatureLevel int16
}

// TopicRecord is control-record frame type 2.
type TopicRecord struct {
	Name      string
	TopicUUID uuid.UUID
}

// PartitionRecord is control-record frame type 3.
type PartitionRecord struct {
	PartitionID      int32
	TopicUUID        uuid.UUID
	Replicas         []int32
	ISR              []int32
	RemovingReplicas []int32
	AddingReplicas   []int32
	Leader           int32
	LeaderEpoch      int32
	PartitionEpoch   int32
	Directories      []uuid.UUID
}

// DecodeRecordsBatch reads exactly one batch from r. It reads base_offset
// and batch_length first, then bounds the remaining read to exactly
// batch_length bytes so that a malformed record can never desynchronize
// the stream beyond its own batch (spec.md §4.B, §9 "stream bounding").
//
// Two sentinels signal a clean stop rather than a real failure:
// ErrEndOfLog (batch_length == 0) and ErrUnexpectedEndOfInput (the stream
// ended before base_offset, or anywhere within a batch's declared bound —
// Kafka's own decoders treat any truncation identically to end-of-stream).
// Any other error aborts the scan.
func DecodeRecordsBatch(r io.Reader) (*RecordsBatch, error) {
	baseOffset, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	batchLength, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if batchLength == 0 {
		return nil, ErrEndOfLog
	}
	if batchLength < 0 {
		return nil, fmt.Errorf("%w: negative batch_length %d", ErrMalformedFrame, batchLength)
	}

	body := io.LimitReader(r, int64(batchLength))

	partitionLeaderEpoch, err := ReadInt32(body)
	if err != nil {
		return nil, err
	}
	magic, err := ReadInt8(body)
	if err != nil {
		return nil, err
	}
	if magic != 2 {
		return nil, fmt.Errorf("%w: unexpected magic byte %d", ErrMalformedFrame, magic)
	}
	crc, err := ReadUint32(body)
	if err != nil {
		return nil, err
	}

	var crcBuf bytes.Buffer
	tee := io.TeeReader(body, &crcBuf)

	attributes, err := ReadInt16(tee)
	if err != nil {
		return nil, err
	}
	lastOffsetDelta, err := ReadInt32(tee)
	if err != nil {
		return nil, err
	}
	baseTimestamp, err := ReadInt64(tee)
	if err != nil {
		return nil, err
	}
	maxTimestamp, err := ReadInt64(tee)
	if err != nil {
		return nil, err
	}
	producerID, err := ReadInt64(tee)
	if err != nil {
		return nil, err
	}
	producerEpoch, err := ReadInt16(tee)
	if err != nil {
		return nil, err
	}
	baseSequence, err := ReadInt32(tee)
	if err != nil {
		return nil, err
	}
	recordCount, err := ReadInt32(tee)
	if err != nil {
		return nil, err
	}
	if recordCount < 0 {
		return nil, fmt.Errorf("%w: negative record_count %d", ErrMalformedFrame, recordCount)
	}

	records := make([]Record, 0, recordCount)
	for i := int32(0); i < recordCount; i++ {
		rec, err := decodeRecord(tee)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	// Consume whatever the records left of batch_length so the next batch
	// starts exactly where this one ends.
	if rest := body.(*io.LimitedReader).N; rest > 0 {
		if _, err := io.CopyN(io.Discard, tee, rest); err != nil {
			return nil, wrapShortRead(err)
		}
	}

	calc := crc32.Checksum(crcBuf.Bytes(), crcTable)
	if calc != crc {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrCRCMismatch, crc, calc)
	}

	return &RecordsBatch{
		BaseOffset:           baseOffset,
		BatchLength:          batchLength,
		PartitionLeaderEpoch: partitionLeaderEpoch,
		Magic:                magic,
		CRC:                  crc,
		Attributes:           attributes,
		LastOffsetDelta:      lastOffsetDelta,
		BaseTimestamp:        baseTimestamp,
		MaxTimestamp:         maxTimestamp,
		ProducerID:           producerID,
		ProducerEpoch:        producerEpoch,
		BaseSequence:         baseSequence,
		Records:              records,
	}, nil
}

func decodeRecord(r io.Reader) (*Record, error) {
	length, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative record length %d", ErrMalformedFrame, length)
	}
	rr := io.LimitReader(r, length)

	attributes, err := ReadInt8(rr)
	if err != nil {
		return nil, err
	}
	timestampDelta, err := ReadVarint(rr)
	if err != nil {
		return nil, err
	}
	offsetDelta, err := ReadVarint(rr)
	if err != nil {
		return nil, err
	}

	key, err := readVarintBytes(rr)
	if err != nil {
		return nil, err
	}
	rawValue, err := readVarintBytes(rr)
	if err != nil {
		return nil, err
	}
	value, err := decodeRecordValue(rawValue)
	if err != nil {
		return nil, err
	}

	headerCount, err := ReadVarint(rr)
	if err != nil {
		return nil, err
	}
	if headerCount < 0 {
		return nil, fmt.Errorf("%w: negative header_count %d", ErrMalformedFrame, headerCount)
	}
	headers := make([]RecordHeader, 0, headerCount)
	for i := int64(0); i < headerCount; i++ {
		k, err := ReadCompactString(rr)
		if err != nil {
			return nil, err
		}
		v, err := ReadCompactBytes(rr)
		if err != nil {
			return nil, err
		}
		headers = append(headers, RecordHeader{Key: k, Value: v})
	}

	// Consume whatever the fields left of the record's declared length.
	if rest := rr.(*io.LimitedReader).N; rest > 0 {
		if _, err := io.CopyN(io.Discard, rr, rest); err != nil {
			return nil, wrapShortRead(err)
		}
	}

	return &Record{
		Attributes:     attributes,
		TimestampDelta: timestampDelta,
		OffsetDelta:    offsetDelta,
		Key:            key,
		Value:          value,
		Headers:        headers,
	}, nil
}

// readVarintBytes reads a VARINT length (-1 = absent) followed by that many
// raw bytes, the shape used by both a record's key and value.
func readVarintBytes(r io.Reader) ([]byte, error) {
	n, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, wrapShortRead(err)
		}
	}
	return buf, nil
}

// decodeRecordValue dispatches a control record's value on frame_type. An
// absent value (raw == nil) decodes to the zero RecordValue. Unknown frame
// types are fatal to the batch, per spec.md §4.B.
func decodeRecordValue(raw []byte) (RecordValue, error) {
	if raw == nil {
		return RecordValue{}, nil
	}
	r := bytes.NewReader(raw)
	frameVersion, err := ReadInt8(r)
	if err != nil {
		return RecordValue{}, err
	}
	frameType, err := ReadInt8(r)
	if err != nil {
		return RecordValue{}, err
	}
	typeVersion, err := ReadInt8(r)
	if err != nil {
		return RecordValue{}, err
	}

	rv := RecordValue{FrameVersion: frameVersion, FrameType: frameType, TypeVersion: typeVersion}

	switch frameType {
	case FrameTypeTopic:
		name, err := ReadCompactString(r)
		if err != nil {
			return RecordValue{}, err
		}
		id, err := ReadUUID(r)
		if err != nil {
			return RecordValue{}, err
		}
		if err := ReadTagBuffer(r); err != nil {
			return RecordValue{}, err
		}
		rv.Kind = RecordValueTopic
		rv.Topic = &TopicRecord{Name: name, TopicUUID: id}

	case FrameTypePartition:
		p := &PartitionRecord{}
		if p.PartitionID, err = ReadInt32(r); err != nil {
			return RecordValue{}, err
		}
		if p.TopicUUID, err = ReadUUID(r); err != nil {
			return RecordValue{}, err
		}
		if p.Replicas, err = ReadCompactInt32Array(r); err != nil {
			return RecordValue{}, err
		}
		if p.ISR, err = ReadCompactInt32Array(r); err != nil {
			return RecordValue{}, err
		}
		if p.RemovingReplicas, err = ReadCompactInt32Array(r); err != nil {
			return RecordValue{}, err
		}
		if p.AddingReplicas, err = ReadCompactInt32Array(r); err != nil {
			return RecordValue{}, err
		}
		if p.Leader, err = ReadInt32(r); err != nil {
			return RecordValue{}, err
		}
		if p.LeaderEpoch, err = ReadInt32(r); err != nil {
			return RecordValue{}, err
		}
		if p.PartitionEpoch, err = ReadInt32(r); err != nil {
			return RecordValue{}, err
		}
		if p.Directories, err = ReadCompactUUIDArray(r); err != nil {
			return RecordValue{}, err
		}
		if err := ReadTagBuffer(r); err != nil {
			return RecordValue{}, err
		}
		rv.Kind = RecordValuePartition
		rv.Partition = p

	case FrameTypeFeatureLevel:
		name, err := ReadCompactString(r)
		if err != nil {
			return RecordValue{}, err
		}
		level, err := ReadInt16(r)
		if err != nil {
			return RecordValue{}, err
		}
		if err := ReadTagBuffer(r); err != nil {
			return RecordValue{}, err
		}
		rv.Kind = RecordValueFeatureLevel
		rv.FeatureLevel = &FeatureLevelRecord{Name: name, FeatureLevel: level}

	default:
		return RecordValue{}, fmt.Errorf("%w: unknown control record frame type %d", ErrMalformedFrame, frameType)
	}

	return rv, nil
}

// EncodeRecordsBatch serializes b, computing batch_length and crc from the
// encoded body (spec.md §4.B's encode contract: crc is CRC-32C over the
// bytes from attributes through the end of the last record).
func EncodeRecordsBatch(w *Writer, b *RecordsBatch) {
	var body Writer
	body.WriteInt16(b.Attributes)
	body.WriteInt32(b.LastOffsetDelta)
	body.WriteInt64(b.BaseTimestamp)
	body.WriteInt64(b.MaxTimestamp)
	body.WriteInt64(b.ProducerID)
	body.WriteInt16(b.ProducerEpoch)
	body.WriteInt32(b.BaseSequence)
	body.WriteInt32(int32(len(b.Records)))
	for _, rec := range b.Records {
		encodeRecord(&body, &rec)
	}

	crc := crc32.Checksum(body.Bytes(), crcTable)

	w.WriteUint64(b.BaseOffset)
	// partition_leader_epoch(4) + magic(1) + crc(4) + body
	batchLength := int32(4 + 1 + 4 + body.Len())
	w.WriteInt32(batchLength)
	w.WriteInt32(b.PartitionLeaderEpoch)
	w.WriteInt8(2) // magic
	w.WriteUint32(crc)
	w.WriteRaw(body.Bytes())
}

func encodeRecord(w *Writer, rec *Record) {
	var body Writer
	body.WriteInt8(rec.Attributes)
	body.WriteVarint(rec.TimestampDelta)
	body.WriteVarint(rec.OffsetDelta)
	writeVarintBytes(&body, rec.Key)
	var rawValue []byte
	if rec.Value.Kind != RecordValueUnknown {
		var vw Writer
		encodeRecordValue(&vw, &rec.Value)
		rawValue = vw.Bytes()
	}
	writeVarintBytes(&body, rawValue)
	body.WriteVarint(int64(len(rec.Headers)))
	for _, h := range rec.Headers {
		body.WriteCompactString(h.Key)
		body.WriteCompactBytes(h.Value)
	}

	w.WriteVarint(int64(body.Len()))
	w.WriteRaw(body.Bytes())
}

func writeVarintBytes(w *Writer, b []byte) {
	if b == nil {
		w.WriteVarint(-1)
		return
	}
	w.WriteVarint(int64(len(b)))
	w.WriteRaw(b)
}

func encodeRecordValue(w *Writer, rv *RecordValue) {
	w.WriteInt8(rv.FrameVersion)
	w.WriteInt8(rv.FrameType)
	w.WriteInt8(rv.TypeVersion)
	switch rv.Kind {
	case RecordValueTopic:
		w.WriteCompactString(rv.Topic.Name)
		w.WriteUUID(rv.Topic.TopicUUID)
		w.WriteEmptyTagBuffer()
	case RecordValuePartition:
		p := rv.Partition
		w.WriteInt32(p.PartitionID)
		w.WriteUUID(p.TopicUUID)
		w.WriteCompactInt32Array(p.Replicas)
		w.WriteCompactInt32Array(p.ISR)
		w.WriteCompactInt32Array(p.RemovingReplicas)
		w.WriteCompactInt32Array(p.AddingReplicas)
		w.WriteInt32(p.Leader)
		w.WriteInt32(p.LeaderEpoch)
		w.WriteInt32(p.PartitionEpoch)
		w.WriteCompactArrayLen(len(p.Directories))
		for _, d := range p.Directories {
			w.WriteUUID(d)
		}
		w.WriteEmptyTagBuffer()
	case RecordValueFeatureLevel:
		w.WriteCompactString(rv.FeatureLevel.Name)
		w.WriteInt16(rv.FeatureLevel.FeatureLevel)
		w.WriteEmptyTagBuffer()
	}
}
