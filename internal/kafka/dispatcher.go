// Package kafka implements the per-connection request framer and the
// dispatcher that maps a decoded request header to an API handler,
// consulting the metadata catalog under its lock before encoding a
// response (spec.md §4.D, §4.G).
package kafka

import (
	"bytes"
	"errors"

	"github.com/moband/kafka-broker/internal/kafka/protocol"
	"github.com/moband/kafka-broker/internal/metadata"
	"github.com/moband/kafka-broker/pkg/logger"
)

// Dispatcher routes one decoded request to its handler and builds the
// response, per spec.md §4.G. It is safe for concurrent use: every
// connection worker shares one Dispatcher and one Catalog.
type Dispatcher struct {
	catalog *metadata.Catalog
	log     *logger.Logger
}

// NewDispatcher creates a Dispatcher over catalog, logging through log.
func NewDispatcher(catalog *metadata.Catalog, log *logger.Logger) *Dispatcher {
	return &Dispatcher{catalog: catalog, log: log.WithComponent("dispatcher")}
}

// Dispatch decodes the request header from request, runs the matching
// handler, and returns the encoded response body (without the 4-byte
// length prefix, which the Framer adds). A returned error is fatal to the
// connection — it only happens when even the common header cannot be
// parsed, since every other failure mode is recovered into the response
// body itself (spec.md §7).
func (d *Dispatcher) Dispatch(request []byte) ([]byte, error) {
	r := bytes.NewReader(request)

	header, err := protocol.ReadRequestHeader(r)
	if err != nil {
		return nil, err
	}

	w := protocol.NewWriter()
	w.WriteInt32(header.CorrelationID)

	if keyErr := header.Validate(); keyErr != nil {
		d.log.Debug("correlation_id=%d api_key=%d: %s", header.CorrelationID, header.ApiKey, keyErr)
		// Header-only response: we don't know this api_key's response
		// shape (or even whether it's flexible), so the only safe answer
		// is the minimum valid frame that still echoes correlation_id.
		return w.Bytes(), nil
	}

	flexible := protocol.IsFlexibleVersion(header.ApiKey, header.ApiVersion)
	if flexible {
		w.WriteEmptyTagBuffer()
	}

	var handleErr error
	switch header.ApiKey {
	case protocol.ApiKeyApiVersions:
		handleErr = handleApiVersions(w, r, header)
	case protocol.ApiKeyDescribeTopicPartitions:
		handleErr = handleDescribeTopicPartitions(w, r, header, d.catalog)
	case protocol.ApiKeyFetch:
		handleErr = handleFetch(w, r, header)
	case protocol.ApiKeyProduce:
		handleErr = handleProduce(w, r, header)
	default:
		handleErr = errors.New("dispatcher: unreachable api key after Validate")
	}

	if handleErr != nil {
		d.log.Error("correlation_id=%d api_key=%d api_version=%d: %s",
			header.CorrelationID, header.ApiKey, header.ApiVersion, handleErr)
		// w already holds correlation_id (+ tag buffer if flexible); that
		// is the minimum valid response spec.md §4.G/§7 call for on a
		// handler error that couldn't even decode the request body.
		return w.Bytes(), nil
	}

	d.log.Debug("correlation_id=%d api_key=%d api_version=%d: ok",
		header.CorrelationID, header.ApiKey, header.ApiVersion)
	return w.Bytes(), nil
}
