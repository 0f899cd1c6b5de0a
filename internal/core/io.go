package core

// Ingress is the ingress PULL-socket abstraction the Receiver thread reads
// from. internal/transport implements this over a TCP listener; tests use
// an in-memory fake.
type Ingress interface {
	// TryRecv returns the next message and ok=true if one is immediately
	// available, or ok=false without blocking if none is. Per §5, "the
	// ingress recv is non-blocking with a short spin."
	TryRecv() (msg []byte, ok bool)
}

// Egress is the egress PUB-socket abstraction the Publisher thread writes
// to. internal/transport implements this as a two-frame (topic, payload)
// broadcast to every connected subscriber.
type Egress interface {
	Publish(topic string, payload []byte) error
}

// publishMessage is one entry on the Publisher's SPSC queue.
type publishMessage struct {
	topic   string
	payload []byte
}
