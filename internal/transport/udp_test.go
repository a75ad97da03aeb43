// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

func listenUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPacket(t *testing.T, conn *net.UDPConn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1500)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatal(err)
	}
	return buf[:n]
}

func TestNewUDPInvalidTarget(t *testing.T) {
	if _, err := NewUDP("not an address"); err == nil {
		t.Fatal("expected error for malformed target")
	}
}

func TestUDPPacketLayout(t *testing.T) {
	receiver := listenUDP(t)

	tr, err := NewUDP(receiver.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	bands := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	before := time.Now().UnixNano()
	if err := tr.Send(bands); err != nil {
		t.Fatal(err)
	}
	after := time.Now().UnixNano()

	packet := readPacket(t, receiver)
	wantLen := 4 + 8 + 2 + 4*len(bands)
	if len(packet) != wantLen {
		t.Fatalf("expected %d byte packet, got %d", wantLen, len(packet))
	}

	r := bytes.NewReader(packet)
	var (
		seq       uint32
		timestamp int64
		count     uint16
	)
	binary.Read(r, binary.BigEndian, &seq)
	binary.Read(r, binary.BigEndian, &timestamp)
	binary.Read(r, binary.BigEndian, &count)

	if seq != 1 {
		t.Errorf("expected first sequence number 1, got %d", seq)
	}
	if timestamp < before || timestamp > after {
		t.Errorf("timestamp %d outside send interval [%d, %d]", timestamp, before, after)
	}
	if int(count) != len(bands) {
		t.Errorf("expected count %d, got %d", len(bands), count)
	}

	got := make([]float32, count)
	if err := binary.Read(r, binary.BigEndian, got); err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if v != bands[i] {
			t.Errorf("band %d: expected %f, got %f", i, bands[i], v)
		}
	}
}

func TestUDPSequenceIncrements(t *testing.T) {
	receiver := listenUDP(t)

	tr, err := NewUDP(receiver.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	bands := []float32{1, 2, 3}
	for want := uint32(1); want <= 3; want++ {
		if err := tr.Send(bands); err != nil {
			t.Fatal(err)
		}
		packet := readPacket(t, receiver)
		seq := binary.BigEndian.Uint32(packet[:4])
		if seq != want {
			t.Fatalf("expected sequence %d, got %d", want, seq)
		}
	}
}

func TestMultiSwallowsSendErrors(t *testing.T) {
	failing := &stubTransport{sendErr: true}
	working := &stubTransport{}
	m := Multi{failing, working}

	if err := m.Send([]float32{1}); err != nil {
		t.Fatalf("Multi.Send should swallow errors, got %v", err)
	}
	if working.sends != 1 {
		t.Error("working transport not reached after failing one")
	}
}

type stubTransport struct {
	sendErr bool
	sends   int
	closes  int
}

func (s *stubTransport) Send(bands []float32) error {
	s.sends++
	if s.sendErr {
		return net.ErrClosed
	}
	return nil
}

func (s *stubTransport) Close() error {
	s.closes++
	return nil
}
