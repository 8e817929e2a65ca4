package peerwire_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dominicnunez/peerwire"
)

const methodPing uint16 = 2 // void response: no EncodeResponse/DecodeResponse

func pingSchema() peerwire.Schema {
	return peerwire.Schema{
		methodPing: {
			EncodeRequest: func(buf *bytes.Buffer, v any) error { return nil },
			DecodeRequest: func(body []byte) (any, error) { return nil, nil },
		},
	}
}

func TestRequestVoidResponse(t *testing.T) {
	schema := pingSchema()
	server := peerwire.NewPeer[int](schema)
	client := peerwire.NewPeer[int](schema)
	wirePair(client, server, 0, 0)

	var pinged bool
	server.RegisterHandler(methodPing, func(ctx context.Context, req any, appData int) (any, error) {
		pinged = true
		return nil, nil
	})

	result, err := client.Request(context.Background(), methodPing, nil, 0)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if result != nil {
		t.Fatalf("Request() result = %v, want nil for a void-response method", result)
	}
	if !pinged {
		t.Fatal("server handler never ran")
	}
}

func TestRequestTimesOutWithNoReply(t *testing.T) {
	schema := echoSchema()
	client := peerwire.NewPeer[int](schema, peerwire.WithRequestTimeout[int](50*time.Millisecond))
	// No sink registered: every send silently no-ops, so no reply ever
	// arrives and the waiter must expire on its own.

	start := time.Now()
	_, err := client.Request(context.Background(), methodEcho, "ping", 0)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Request() with no transport: want timeout error, got nil")
	}
	if !peerwire.ErrTimeout(err) {
		t.Fatalf("error = %v, want a timeout error", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Fatalf("Request() returned after %v, want at least the 50ms timeout", elapsed)
	}
}

func TestRequestCanceledByContext(t *testing.T) {
	schema := echoSchema()
	client := peerwire.NewPeer[int](schema, peerwire.WithRequestTimeout[int](time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Request(ctx, methodEcho, "ping", 0)
	if err != context.Canceled {
		t.Fatalf("Request() error = %v, want context.Canceled", err)
	}
}

func TestCleanRejectsPendingRequests(t *testing.T) {
	schema := echoSchema()
	client := peerwire.NewPeer[int](schema, peerwire.WithRequestTimeout[int](time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := client.Request(context.Background(), methodEcho, "ping", 0)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	client.Clean("shutting down")

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Request() after Clean(): want error, got nil")
		}
		pe, ok := err.(*peerwire.PeerError)
		if !ok || pe.Code != peerwire.ErrCodeInternalError {
			t.Fatalf("error = %v, want InternalError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Request() never returned after Clean()")
	}
}

func TestCleanClearsDispatcher(t *testing.T) {
	schema := echoSchema()
	server := peerwire.NewPeer[int](schema)
	client := peerwire.NewPeer[int](schema)
	wirePair(client, server, 0, 0)

	server.RegisterHandler(methodEcho, func(ctx context.Context, req any, appData int) (any, error) {
		return req, nil
	})
	server.Clean("reset")

	client2 := peerwire.NewPeer[int](schema, peerwire.WithRequestTimeout[int](50*time.Millisecond))
	wirePair(client2, server, 0, 0)

	_, err := client2.Request(context.Background(), methodEcho, "ping", 0)
	if err == nil {
		t.Fatal("Request() to a peer whose dispatcher was Clean()ed: want error, got nil")
	}
}

func TestNotifyWithNoSinkIsNoop(t *testing.T) {
	schema := echoSchema()
	client := peerwire.NewPeer[int](schema)
	if err := client.Notify(methodEcho, "ping", 0); err != nil {
		t.Fatalf("Notify() with no transport wired: error = %v, want nil", err)
	}
}
