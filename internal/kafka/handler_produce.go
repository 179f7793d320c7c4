package kafka

import (
	"io"

	"github.com/moband/kafka-broker/internal/kafka/protocol"
)

// handleProduce implements spec.md §4.F.4. Topic data logs are out of
// scope (spec.md §1): every requested partition is answered "unknown
// topic or partition" with no offsets assigned.
func handleProduce(w *protocol.Writer, r io.Reader, header *protocol.RequestHeader) error {
	req, err := protocol.DecodeProduceRequest(r)
	if err != nil {
		return err
	}

	responses := make([]protocol.ProduceResponseTopic, len(req.Topics))
	for i, t := range req.Topics {
		partitions := make([]protocol.ProduceResponsePartition, len(t.Partitions))
		for j, p := range t.Partitions {
			partitions[j] = protocol.ProduceResponsePartition{
				PartitionIndex:  p.PartitionIndex,
				ErrorCode:       protocol.ErrorUnknownTopicOrPart,
				BaseOffset:      -1,
				LogAppendTimeMs: -1,
				LogStartOffset:  -1,
				ErrorMessage:    nil,
			}
		}
		responses[i] = protocol.ProduceResponseTopic{Name: t.Name, Partitions: partitions}
	}

	protocol.EncodeProduceResponse(w, &protocol.ProduceResponse{
		Responses:      responses,
		ThrottleTimeMs: 0,
	})
	return nil
}
