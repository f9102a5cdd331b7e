package server

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/loganszeto/respkv/internal/command"
	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/stats"
)

func (s *Server) handleConn(ctx context.Context, c net.Conn) {
	defer c.Close()
	stats.RecordConnection()

	logger := log.With().Str("remote", c.RemoteAddr().String()).Logger()
	logger.Debug().Msg("connection opened")
	defer logger.Debug().Msg("connection closed")

	reader := resp.NewReader(c)
	writer := resp.NewWriter(c)

	for {
		if s.cfg.ConnIdleTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(s.cfg.ConnIdleTimeout))
		}

		frame, err := reader.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			// A byte-level decode failure desynchronizes the stream, so the
			// connection is reported to and then dropped.
			stats.RecordProtocolError()
			logger.Warn().Err(err).Msg("frame decode failed")
			_ = writeError(writer, err)
			return
		}

		cmd, err := command.FromFrame(frame)
		if err != nil {
			// A malformed command in a well-formed frame only poisons this
			// one request; the connection stays usable.
			stats.RecordProtocolError()
			logger.Debug().Err(err).Msg("rejected request")
			if werr := writeError(writer, err); werr != nil {
				return
			}
			continue
		}

		err = cmd.Apply(ctx, s.db, writer)
		stats.RecordCommand(metricName(cmd), err)
		if err != nil {
			logger.Error().Err(err).Str("command", cmd.Name()).Msg("apply failed")
			return
		}
	}
}

// metricName collapses unrecognized commands into one label value; their
// names are client-chosen and unbounded.
func metricName(cmd command.Command) string {
	if _, ok := cmd.(*command.Unknown); ok {
		return "unknown"
	}
	return cmd.Name()
}

func writeError(w *resp.Writer, err error) error {
	if werr := w.WriteFrame(resp.Err("ERR " + err.Error())); werr != nil {
		return werr
	}
	return w.Flush()
}
