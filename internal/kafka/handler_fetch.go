package kafka

import (
	"io"

	"github.com/moband/kafka-broker/internal/kafka/protocol"
)

// handleFetch implements spec.md §4.F.3. This broker leads no topic data,
// so every requested partition is answered UnknownTopicID with empty
// records; max_wait_ms is accepted but never honored (the response returns
// immediately, per spec.md §5).
func handleFetch(w *protocol.Writer, r io.Reader, header *protocol.RequestHeader) error {
	req, err := protocol.DecodeFetchRequest(r)
	if err != nil {
		return err
	}

	responses := make([]protocol.FetchResponseTopic, len(req.Topics))
	for i, t := range req.Topics {
		partitions := make([]protocol.FetchResponsePartition, len(t.Partitions))
		for j, p := range t.Partitions {
			partitions[j] = protocol.FetchResponsePartition{
				PartitionIndex:       p.Partition,
				ErrorCode:            protocol.ErrorUnknownTopicID,
				HighWatermark:        0,
				LastStableOffset:     0,
				LogStartOffset:       0,
				AbortedTransactions:  []protocol.FetchAbortedTransaction{},
				PreferredReadReplica: 0,
				Records:              []byte{},
			}
		}
		responses[i] = protocol.FetchResponseTopic{TopicID: t.TopicID, Partitions: partitions}
	}

	protocol.EncodeFetchResponse(w, &protocol.FetchResponse{
		ThrottleTimeMs: 0,
		ErrorCode:      protocol.ErrorNone,
		SessionID:      req.SessionID,
		Responses:      responses,
	})
	return nil
}
