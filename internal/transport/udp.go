// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	applog "physarum/internal/log"
)

// UDP sends band vectors as binary datagrams to a fixed target.
// Delivery is fire-and-forget: a failed write drops the frame.
//
// Packet layout (big endian):
//
//	sequence  uint32   monotonically increasing
//	timestamp int64    nanoseconds since epoch
//	count     uint16   number of band values
//	bands     float32* count values in band order
type UDP struct {
	conn net.Conn
	seq  uint32
	buf  *bytes.Buffer
}

// NewUDP resolves the target address and opens a connected UDP socket.
func NewUDP(target string) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("invalid UDP target %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %q: %w", target, err)
	}

	applog.Infof("transport: sending band frames to udp://%s", target)

	return &UDP{
		conn: conn,
		buf:  new(bytes.Buffer),
	}, nil
}

func (t *UDP) Send(bands []float32) error {
	t.buf.Reset()

	t.seq++
	if err := binary.Write(t.buf, binary.BigEndian, t.seq); err != nil {
		return err
	}
	if err := binary.Write(t.buf, binary.BigEndian, time.Now().UnixNano()); err != nil {
		return err
	}
	if err := binary.Write(t.buf, binary.BigEndian, uint16(len(bands))); err != nil {
		return err
	}
	if err := binary.Write(t.buf, binary.BigEndian, bands); err != nil {
		return err
	}

	if _, err := t.conn.Write(t.buf.Bytes()); err != nil {
		return fmt.Errorf("udp send failed: %w", err)
	}
	return nil
}

func (t *UDP) Close() error {
	return t.conn.Close()
}

var _ Transport = (*UDP)(nil)
