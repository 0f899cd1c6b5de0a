package transport

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"log/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListenerReceivesFramedMessages(t *testing.T) {
	t.Parallel()
	l, err := Listen("127.0.0.1:0", testLogger())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	conn, err := net.Dial("tcp", l.ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	payload := []byte(`{"action":"place"}`)
	if _, err := conn.Write(encodeFrame(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msg, ok := l.TryRecv(); ok {
			if string(msg) != string(payload) {
				t.Fatalf("msg = %q, want %q", msg, payload)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for message")
}

func TestListenerTryRecvNonBlockingWhenEmpty(t *testing.T) {
	t.Parallel()
	l, err := Listen("127.0.0.1:0", testLogger())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	if _, ok := l.TryRecv(); ok {
		t.Fatal("expected ok=false on an empty queue")
	}
}

func TestBroadcasterPublishesTwoFrameMessage(t *testing.T) {
	t.Parallel()
	b, err := ListenBroadcast("127.0.0.1:0", testLogger())
	if err != nil {
		t.Fatalf("ListenBroadcast: %v", err)
	}
	defer b.Close()

	conn, err := net.Dial("tcp", b.ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		b.mu.Lock()
		n := len(b.subs)
		b.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := b.Publish("exec.report", []byte(`{"status":"accepted"}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	topic := readFrameClient(t, conn)
	payload := readFrameClient(t, conn)
	if string(topic) != "exec.report" {
		t.Errorf("topic = %q, want exec.report", topic)
	}
	if string(payload) != `{"status":"accepted"}` {
		t.Errorf("payload = %q", payload)
	}
}

func readFrameClient(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		t.Fatalf("read length prefix: %v", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatalf("read payload: %v", err)
	}
	return buf
}
