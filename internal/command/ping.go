package command

import (
	"context"
	"errors"

	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/store"
)

// Ping answers PONG, or echoes its optional message argument.
type Ping struct {
	msg []byte
}

func parsePing(p *Parse) (*Ping, error) {
	msg, err := p.NextBytes()
	if errors.Is(err, errEndOfFrame) {
		return &Ping{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Ping{msg: msg}, nil
}

func (c *Ping) Name() string {
	return "ping"
}

func (c *Ping) Apply(_ context.Context, _ *store.DB, dst *resp.Writer) error {
	var response resp.Frame
	if c.msg == nil {
		response = resp.Simple("PONG")
	} else {
		response = resp.Bulk(c.msg)
	}
	if err := dst.WriteFrame(response); err != nil {
		return err
	}
	return dst.Flush()
}
