package kafka

import (
	"io"

	"github.com/google/uuid"

	"github.com/moband/kafka-broker/internal/kafka/protocol"
	"github.com/moband/kafka-broker/internal/metadata"
)

// handleDescribeTopicPartitions implements spec.md §4.F.2, including the
// partition-limit/cursor accumulation algorithm: partitions are emitted in
// request-topic order up to response_partition_limit total; once the
// limit is reached, remaining topics are emitted with empty partition
// lists and next_cursor points at the next partition to resume.
func handleDescribeTopicPartitions(w *protocol.Writer, r io.Reader, header *protocol.RequestHeader, catalog *metadata.Catalog) error {
	req, err := protocol.DecodeDescribeTopicPartitionsRequest(r)
	if err != nil {
		return err
	}

	remaining := req.ResponsePartitionLimit
	limitReached := false
	var nextCursor *protocol.DescribeTopicPartitionsCursor

	topics := make([]protocol.DescribeTopicPartitionsTopic, 0, len(req.Topics))
	for i, reqTopic := range req.Topics {
		topicMeta, found := catalog.GetTopicByName(reqTopic.Name)

		errorCode := protocol.ErrorNone
		topicID := uuid.Nil
		var available []metadata.PartitionMetadata
		if !found {
			errorCode = protocol.ErrorUnknownTopicOrPart
		} else {
			topicID = topicMeta.UUID
			available = catalog.PartitionsOf(topicID)
		}

		var emitted []protocol.DescribeTopicPartitionsPartition
		if found && !limitReached {
			n := int(remaining)
			if n > len(available) {
				n = len(available)
			}
			if n < 0 {
				n = 0
			}
			emitted = make([]protocol.DescribeTopicPartitionsPartition, n)
			for j, pm := range available[:n] {
				emitted[j] = partitionEntry(pm)
			}
			remaining -= int32(n)

			if remaining <= 0 {
				limitReached = true
				switch {
				case n < len(available):
					nextCursor = &protocol.DescribeTopicPartitionsCursor{
						TopicName:      reqTopic.Name,
						PartitionIndex: available[n].PartitionID,
					}
				case i+1 < len(req.Topics):
					nextCursor = &protocol.DescribeTopicPartitionsCursor{
						TopicName:      req.Topics[i+1].Name,
						PartitionIndex: 0,
					}
				default:
					nextCursor = nil
				}
			}
		}

		name := reqTopic.Name
		topics = append(topics, protocol.DescribeTopicPartitionsTopic{
			ErrorCode:                 errorCode,
			Name:                      &name,
			TopicID:                   topicID,
			IsInternal:                false,
			Partitions:                emitted,
			TopicAuthorizedOperations: protocol.TopicAuthorizedOperations,
		})
	}

	protocol.EncodeDescribeTopicPartitionsResponse(w, &protocol.DescribeTopicPartitionsResponse{
		ThrottleTimeMs: 0,
		Topics:         topics,
		NextCursor:     nextCursor,
	})
	return nil
}

func partitionEntry(pm metadata.PartitionMetadata) protocol.DescribeTopicPartitionsPartition {
	return protocol.DescribeTopicPartitionsPartition{
		ErrorCode:              protocol.ErrorNone,
		PartitionIndex:         pm.PartitionID,
		LeaderID:               0,
		LeaderEpoch:            0,
		Replicas:               []int32{},
		ISR:                    []int32{},
		EligibleLeaderReplicas: []int32{},
		LastKnownELR:           []int32{},
		OfflineReplicas:        []int32{},
	}
}
