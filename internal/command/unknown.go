package command

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/store"
)

// Unknown stands in for a command name the server does not recognize. It is
// a valid, successfully-parsed command: applying it reports the problem to
// the client without disturbing the connection.
type Unknown struct {
	name string
}

// Name returns the unrecognized name as the client sent it, lowercased.
func (c *Unknown) Name() string {
	return c.name
}

func (c *Unknown) Apply(_ context.Context, _ *store.DB, dst *resp.Writer) error {
	log.Debug().Str("command", c.name).Msg("unknown command")

	if err := dst.WriteFrame(resp.Err("ERR unknown command '" + c.name + "'")); err != nil {
		return err
	}
	return dst.Flush()
}
