package server

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/loganszeto/respkv/internal/config"
	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/store"
)

func startServer(t *testing.T) (addr string, db *store.DB, stop func()) {
	t.Helper()
	cfg := config.Default()
	cfg.ListenAddr = "127.0.0.1:0"

	db = store.NewDB(store.Options{})
	srv := New(cfg, db)
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	return srv.Addr(), db, func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("server did not stop")
		}
	}
}

type client struct {
	conn   net.Conn
	reader *resp.Reader
	writer *resp.Writer
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{
		conn:   conn,
		reader: resp.NewReader(conn),
		writer: resp.NewWriter(conn),
	}
}

func (c *client) roundTrip(t *testing.T, args ...string) resp.Frame {
	t.Helper()
	elems := make([]resp.Frame, 0, len(args))
	for _, arg := range args {
		elems = append(elems, resp.BulkString(arg))
	}
	if err := c.writer.WriteFrame(resp.Array(elems...)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.writer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	response, err := c.reader.ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return response
}

func TestSetGetOverTCP(t *testing.T) {
	addr, _, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	if got := c.roundTrip(t, "SET", "hello", "world"); !resp.Equal(got, resp.Simple("OK")) {
		t.Fatalf("expected OK, got %v", got)
	}
	if got := c.roundTrip(t, "GET", "hello"); !resp.Equal(got, resp.BulkString("world")) {
		t.Fatalf("expected world, got %v", got)
	}
	if got := c.roundTrip(t, "GET", "missing"); got.Type != resp.TypeNull {
		t.Fatalf("expected null, got %s", got.TypeName())
	}
}

func TestUnknownCommandKeepsConnection(t *testing.T) {
	addr, _, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	got := c.roundTrip(t, "FROBNICATE", "x", "y")
	if got.Type != resp.TypeError {
		t.Fatalf("expected error frame, got %s", got.TypeName())
	}
	if !strings.Contains(got.Str, "frobnicate") {
		t.Fatalf("expected message to name the command, got %q", got.Str)
	}
	// Connection must survive an unknown command.
	if got := c.roundTrip(t, "PING"); !resp.Equal(got, resp.Simple("PONG")) {
		t.Fatalf("expected PONG after unknown command, got %v", got)
	}
}

func TestMalformedCommandKeepsConnection(t *testing.T) {
	addr, _, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	got := c.roundTrip(t, "GET", "too", "many")
	if got.Type != resp.TypeError {
		t.Fatalf("expected error frame, got %s", got.TypeName())
	}
	if got := c.roundTrip(t, "PING"); !resp.Equal(got, resp.Simple("PONG")) {
		t.Fatalf("expected PONG after protocol error, got %v", got)
	}
}

func TestNonArrayRequestRejected(t *testing.T) {
	addr, _, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	if err := c.writer.WriteFrame(resp.Integer(42)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.writer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got, err := c.reader.ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != resp.TypeError {
		t.Fatalf("expected error frame, got %s", got.TypeName())
	}
}

func TestRequestsAnsweredInOrder(t *testing.T) {
	addr, _, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	// Pipeline several requests before reading any response.
	for i := 0; i < 5; i++ {
		elems := []resp.Frame{resp.BulkString("PING"), resp.BulkString(strings.Repeat("x", i+1))}
		if err := c.writer.WriteFrame(resp.Array(elems...)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := c.writer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := c.reader.ReadFrame()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		want := resp.BulkString(strings.Repeat("x", i+1))
		if !resp.Equal(got, want) {
			t.Fatalf("response %d out of order: got %v, want %v", i, got, want)
		}
	}
}

func TestShutdownStopsAccepting(t *testing.T) {
	addr, _, stop := startServer(t)
	stop()

	if conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		conn.Close()
		t.Fatalf("expected dial to fail after shutdown")
	}
}

func TestCrossConnectionVisibility(t *testing.T) {
	addr, _, stop := startServer(t)
	defer stop()

	writerConn := dial(t, addr)
	readerConn := dial(t, addr)

	if got := writerConn.roundTrip(t, "SET", "shared", "value"); !resp.Equal(got, resp.Simple("OK")) {
		t.Fatalf("expected OK, got %v", got)
	}
	if got := readerConn.roundTrip(t, "GET", "shared"); !resp.Equal(got, resp.BulkString("value")) {
		t.Fatalf("expected value visible across connections, got %v", got)
	}
}
