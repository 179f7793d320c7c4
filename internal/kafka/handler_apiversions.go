package kafka

import (
	"io"

	"github.com/moband/kafka-broker/internal/kafka/protocol"
)

// handleApiVersions implements spec.md §4.F.1: the request body is decoded
// and discarded, and the response advertises this broker's supported
// version window per API key.
func handleApiVersions(w *protocol.Writer, r io.Reader, header *protocol.RequestHeader) error {
	if _, err := protocol.DecodeApiVersionsRequest(r); err != nil {
		return err
	}

	errorCode := protocol.ErrorNone
	if header.ApiVersion < protocol.MinSupportedApiVersion || header.ApiVersion > protocol.MaxSupportedApiVersion {
		errorCode = protocol.ErrorUnsupportedVersion
	}

	protocol.EncodeApiVersionsResponse(w, errorCode, protocol.SupportedApiKeys())
	return nil
}
