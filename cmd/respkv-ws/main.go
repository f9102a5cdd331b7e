// respkv-ws bridges the RESP request pipeline onto WebSocket transport:
// each ws message carries one RESP-encoded request frame and receives one
// RESP-encoded response frame back.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/loganszeto/respkv/internal/command"
	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/stats"
	"github.com/loganszeto/respkv/internal/store"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	db := store.NewDB(store.Options{})
	handler := &wsHandler{db: db}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", stats.Handler())
	mux.HandleFunc("/ws", handler.handleWS)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           withLogging(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", *addr).Msg("respkv-ws listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type wsHandler struct {
	db *store.DB
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func (h *wsHandler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	stats.RecordConnection()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}

		response, err := h.serve(r.Context(), payload)
		if err != nil {
			stats.RecordProtocolError()
			response = encodeFrame(resp.Err("ERR " + err.Error()))
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, response); err != nil {
			return
		}
	}
}

// serve runs one RESP-encoded request through the standard pipeline and
// returns the RESP-encoded response.
func (h *wsHandler) serve(ctx context.Context, payload []byte) ([]byte, error) {
	frame, err := resp.NewReader(bytes.NewReader(payload)).ReadFrame()
	if err != nil {
		return nil, err
	}
	cmd, err := command.FromFrame(frame)
	if err != nil {
		return nil, err
	}

	name := cmd.Name()
	if _, ok := cmd.(*command.Unknown); ok {
		name = "unknown"
	}

	var buf bytes.Buffer
	writer := resp.NewWriter(&buf)
	err = cmd.Apply(ctx, h.db, writer)
	stats.RecordCommand(name, err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeFrame(f resp.Frame) []byte {
	var buf bytes.Buffer
	w := resp.NewWriter(&buf)
	_ = w.WriteFrame(f)
	_ = w.Flush()
	return buf.Bytes()
}
