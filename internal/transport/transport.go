// Package transport implements the ingress PULL-equivalent and egress
// PUB-equivalent sockets over plain TCP, framed with a 4-byte big-endian
// length prefix per message. Connection lifecycle (accept loop, per-conn
// read goroutines, deadline-bounded writes) is adapted from the
// teacher's WSFeed connection handling in exchange/ws.go.
package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

const maxFrameSize = 16 << 20 // 16 MiB, generous upper bound on one JSON message

// subscriberWriteTimeout bounds one Publish write to one subscriber; a
// subscriber that cannot take the frame within it is dropped.
const subscriberWriteTimeout = 100 * time.Millisecond

// Listener is a PULL-equivalent ingress endpoint: it accepts any number of
// producer connections and multiplexes their framed messages into one
// internal queue that TryRecv drains. One slow or silent producer never
// blocks another — each connection is read on its own goroutine.
type Listener struct {
	ln     net.Listener
	logger *slog.Logger

	msgCh chan []byte

	mu   sync.Mutex
	done bool

	wg sync.WaitGroup
}

// Listen binds addr (e.g. "127.0.0.1:5601") and starts accepting
// connections in the background.
func Listen(addr string, logger *slog.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	l := &Listener{
		ln:     ln,
		logger: logger.With("component", "ingress", "addr", addr),
		msgCh:  make(chan []byte, 4096),
	}
	l.wg.Add(1)
	go l.acceptLoop()
	return l, nil
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			l.mu.Lock()
			closed := l.done
			l.mu.Unlock()
			if closed {
				return
			}
			l.logger.Warn("accept failed", "error", err)
			continue
		}
		l.logger.Info("ingress connection accepted", "remote", conn.RemoteAddr())
		l.wg.Add(1)
		go l.readConn(conn)
	}
}

func (l *Listener) readConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		msg, err := readFrame(r)
		if err != nil {
			if err != io.EOF {
				l.logger.Warn("ingress connection read error", "error", err)
			}
			return
		}
		select {
		case l.msgCh <- msg:
		default:
			l.logger.Warn("ingress queue full, dropping message")
		}
	}
}

// TryRecv implements core.Ingress: non-blocking, returns ok=false if no
// message is queued.
func (l *Listener) TryRecv() (msg []byte, ok bool) {
	select {
	case msg = <-l.msgCh:
		return msg, true
	default:
		return nil, false
	}
}

// Close stops accepting new connections. In-flight reader goroutines exit
// as their connections close.
func (l *Listener) Close() error {
	l.mu.Lock()
	l.done = true
	l.mu.Unlock()
	err := l.ln.Close()
	l.wg.Wait()
	return err
}

// Broadcaster is a PUB-equivalent egress endpoint: every Publish call is
// framed and written to every currently-connected subscriber. A slow
// subscriber is dropped rather than allowed to block the others.
type Broadcaster struct {
	ln     net.Listener
	logger *slog.Logger

	mu   sync.Mutex
	subs map[net.Conn]struct{}
	done bool

	wg sync.WaitGroup
}

// ListenBroadcast binds addr and starts accepting subscriber connections.
func ListenBroadcast(addr string, logger *slog.Logger) (*Broadcaster, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	b := &Broadcaster{
		ln:     ln,
		logger: logger.With("component", "egress", "addr", addr),
		subs:   make(map[net.Conn]struct{}),
	}
	b.wg.Add(1)
	go b.acceptLoop()
	return b, nil
}

func (b *Broadcaster) acceptLoop() {
	defer b.wg.Done()
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			b.mu.Lock()
			closed := b.done
			b.mu.Unlock()
			if closed {
				return
			}
			b.logger.Warn("accept failed", "error", err)
			continue
		}
		b.logger.Info("egress subscriber connected", "remote", conn.RemoteAddr())
		b.mu.Lock()
		b.subs[conn] = struct{}{}
		b.mu.Unlock()
	}
}

// Publish writes a two-frame message (topic, payload) to every connected
// subscriber, dropping any subscriber whose write fails or does not finish
// within subscriberWriteTimeout.
func (b *Broadcaster) Publish(topic string, payload []byte) error {
	frame := encodeTwoFrame(topic, payload)

	b.mu.Lock()
	targets := make([]net.Conn, 0, len(b.subs))
	for c := range b.subs {
		targets = append(targets, c)
	}
	b.mu.Unlock()

	for _, c := range targets {
		_ = c.SetWriteDeadline(time.Now().Add(subscriberWriteTimeout))
		if _, err := c.Write(frame); err != nil {
			b.logger.Warn("egress subscriber write failed, dropping", "remote", c.RemoteAddr(), "error", err)
			b.mu.Lock()
			delete(b.subs, c)
			b.mu.Unlock()
			c.Close()
		}
	}
	return nil
}

// Close stops accepting new subscribers and closes all existing ones.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	b.done = true
	for c := range b.subs {
		c.Close()
		delete(b.subs, c)
	}
	b.mu.Unlock()
	err := b.ln.Close()
	b.wg.Wait()
	return err
}

func readFrame(r *bufio.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("frame size %d exceeds max %d", n, maxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeFrame(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out[:4], uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

func encodeTwoFrame(topic string, payload []byte) []byte {
	out := encodeFrame([]byte(topic))
	out = append(out, encodeFrame(payload)...)
	return out
}
