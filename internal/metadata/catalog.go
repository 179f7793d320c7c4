// Package metadata decodes the KRaft __cluster_metadata log into an
// in-memory catalog of topics and partitions, consulted by the request
// dispatcher under a shared lock (spec.md §4.C).
package metadata

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/moband/kafka-broker/internal/kafka/protocol"
	"github.com/moband/kafka-broker/pkg/logger"
)

// TopicMetadata is an immutable topic entry, created from a Topic control
// record (frame type 2), per spec.md §3.
type TopicMetadata struct {
	UUID              uuid.UUID
	Name              string
	SourceBatchIndex  int
	SourceRecordIndex int
}

// PartitionMetadata is an immutable partition entry, created from a
// Partition control record (frame type 3), per spec.md §3.
type PartitionMetadata struct {
	PartitionID       int32
	TopicUUID         uuid.UUID
	SourceBatchIndex  int
	SourceRecordIndex int
}

// Catalog is the in-memory view of the cluster-metadata log. It is built
// once at startup and is immutable thereafter; the RWMutex exists so the
// interface is ready for a future hot-reload without handlers needing to
// change (spec.md §9).
type Catalog struct {
	mu         sync.RWMutex
	topics     map[uuid.UUID]TopicMetadata
	partitions map[uuid.UUID][]PartitionMetadata
	batches    []protocol.RecordsBatch
}

// Load opens path and decodes it into a Catalog. A missing file is
// equivalent to an empty catalog, not an error, per spec.md §4.C/§6.
func Load(path string, log *logger.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("metadata log %q not found, starting with an empty catalog", path)
			return &Catalog{
				topics:     make(map[uuid.UUID]TopicMetadata),
				partitions: make(map[uuid.UUID][]PartitionMetadata),
			}, nil
		}
		return nil, fmt.Errorf("metadata: open %q: %w", path, err)
	}
	defer f.Close()

	return decode(bufio.NewReader(f), log)
}

// decode repeatedly decodes RecordsBatch values from r until a clean
// end-of-log, then walks every record to populate the topic and partition
// indices, per spec.md §4.B/§4.C and original_source's Metadata::decode.
func decode(r *bufio.Reader, log *logger.Logger) (*Catalog, error) {
	var batches []protocol.RecordsBatch

	for {
		batch, err := protocol.DecodeRecordsBatch(r)
		if err != nil {
			if errors.Is(err, protocol.ErrEndOfLog) || errors.Is(err, protocol.ErrUnexpectedEndOfInput) {
				break
			}
			return nil, fmt.Errorf("metadata: decode batch %d: %w", len(batches), err)
		}
		batches = append(batches, *batch)
	}

	topics := make(map[uuid.UUID]TopicMetadata)
	partitions := make(map[uuid.UUID][]PartitionMetadata)

	for batchIdx, batch := range batches {
		for recIdx, rec := range batch.Records {
			switch rec.Value.Kind {
			case protocol.RecordValueTopic:
				t := rec.Value.Topic
				topics[t.TopicUUID] = TopicMetadata{
					UUID:              t.TopicUUID,
					Name:              t.Name,
					SourceBatchIndex:  batchIdx,
					SourceRecordIndex: recIdx,
				}
			case protocol.RecordValuePartition:
				p := rec.Value.Partition
				partitions[p.TopicUUID] = append(partitions[p.TopicUUID], PartitionMetadata{
					PartitionID:       p.PartitionID,
					TopicUUID:         p.TopicUUID,
					SourceBatchIndex:  batchIdx,
					SourceRecordIndex: recIdx,
				})
			}
		}
	}

	log.Info("metadata catalog loaded: %d batches, %d topics, %d partitioned topics",
		len(batches), len(topics), len(partitions))

	return &Catalog{
		topics:     topics,
		partitions: partitions,
		batches:    batches,
	}, nil
}

// GetTopicByUUID returns the topic with the given uuid, if any.
func (c *Catalog) GetTopicByUUID(id uuid.UUID) (TopicMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.topics[id]
	return t, ok
}

// GetTopicByName returns the topic with the given name, if any. A linear
// scan is acceptable at the scale this broker targets (spec.md §4.C).
func (c *Catalog) GetTopicByName(name string) (TopicMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.topics {
		if t.Name == name {
			return t, true
		}
	}
	return TopicMetadata{}, false
}

// PartitionsOf returns the partitions of the topic with the given uuid, in
// log order. An unknown topic yields an empty (nil) slice, never an error.
func (c *Catalog) PartitionsOf(id uuid.UUID) []PartitionMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.partitions[id]
}

// BatchCount returns how many record batches were loaded, for diagnostics.
func (c *Catalog) BatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.batches)
}
