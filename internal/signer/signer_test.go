package signer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoScript is a minimal subprocess double: for every line it reads on
// stdin it writes back a canned response carrying the same req_id, proving
// out the request/response correlation without needing a compiled
// companion binary.
const echoScript = `while IFS= read -r line; do
  req_id=$(printf '%s' "$line" | sed -n 's/.*"req_id":"\([^"]*\)".*/\1/p')
  printf '{"req_id":"%s","signature":"0xdeadbeef"}\n' "$req_id"
done`

func TestSignRoundTrip(t *testing.T) {
	t.Parallel()
	c := New(Config{Command: "sh", Args: []string{"-c", echoScript}}, testLogger())
	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Connected() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := c.Sign(ctx, SignRequest{ReqID: "R1", Method: "eip712", PayloadJSON: `{"foo":"bar"}`})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if resp.Signature != "0xdeadbeef" {
		t.Errorf("Signature = %q, want 0xdeadbeef", resp.Signature)
	}
}

func TestSignTimesOutWhenSubprocessNeverResponds(t *testing.T) {
	t.Parallel()
	c := New(Config{
		Command:        "sh",
		Args:           []string{"-c", "cat >/dev/null"},
		RequestTimeout: 100 * time.Millisecond,
	}, testLogger())
	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Connected() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := c.Sign(ctx, SignRequest{ReqID: "R2", Method: "eip712"})
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
}

func TestSignRejectsWhenNotConnected(t *testing.T) {
	t.Parallel()
	c := New(Config{Command: "sh", Args: []string{"-c", "exit 1"}}, testLogger())
	// Deliberately not started: no subprocess is alive.
	_, err := c.Sign(context.Background(), SignRequest{ReqID: "R3"})
	if err == nil {
		t.Fatal("expected an error when no subprocess is connected")
	}
}
