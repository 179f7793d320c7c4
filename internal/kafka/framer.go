package kafka

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/moband/kafka-broker/pkg/logger"
)

// maxFrameSize bounds the length prefix the framer will honor, guarding
// against a hostile or corrupt peer driving an unbounded allocation.
const maxFrameSize = 64 * 1024 * 1024

// Framer owns one connection's request/response loop, per spec.md §4.D:
// read a 4-byte size, read that many body bytes, hand them to the
// Dispatcher, write the response's 4-byte size and body, and repeat.
// Processing within a connection is strictly sequential — no pipelining.
type Framer struct {
	conn       net.Conn
	dispatcher *Dispatcher
	log        *logger.Logger
}

// NewFramer creates a Framer for one accepted connection.
func NewFramer(conn net.Conn, dispatcher *Dispatcher, log *logger.Logger) *Framer {
	return &Framer{conn: conn, dispatcher: dispatcher, log: log.WithComponent("framer")}
}

// Run drives the read/dispatch/write loop until the peer closes the
// connection or an unrecoverable I/O or framing error occurs. It never
// closes conn itself — the caller owns that.
func (f *Framer) Run() {
	sizeBuf := make([]byte, 4)

	for {
		if _, err := io.ReadFull(f.conn, sizeBuf); err != nil {
			if isOrderlyClose(err) {
				return
			}
			f.log.Error("read frame size: %s", err)
			return
		}

		size := int32(binary.BigEndian.Uint32(sizeBuf))
		if size < 0 || size > maxFrameSize {
			f.log.Error("rejecting frame of declared size %d", size)
			return
		}

		request := make([]byte, size)
		if _, err := io.ReadFull(f.conn, request); err != nil {
			if isOrderlyClose(err) {
				return
			}
			f.log.Error("read frame body (%d bytes): %s", size, err)
			return
		}

		response, err := f.dispatcher.Dispatch(request)
		if err != nil {
			f.log.Error("dispatch: %s", err)
			return
		}

		if err := f.writeFrame(response); err != nil {
			f.log.Error("write response: %s", err)
			return
		}
	}
}

// writeFrame writes the 4-byte length prefix and response as a single
// contiguous buffer so the two halves can never be interleaved with
// another write on the same connection (spec.md §5's ordering guarantee).
func (f *Framer) writeFrame(body []byte) error {
	if len(body) > maxFrameSize {
		return fmt.Errorf("framer: response of %d bytes exceeds max frame size", len(body))
	}
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)
	_, err := f.conn.Write(frame)
	return err
}

func isOrderlyClose(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
