package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/store"
)

// Set stores a value under a key, optionally with an expiry given as
// `EX seconds` or `PX milliseconds`.
type Set struct {
	key   string
	value []byte
	ttl   time.Duration
}

func parseSet(p *Parse) (*Set, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, err
	}
	value, err := p.NextBytes()
	if err != nil {
		return nil, err
	}
	cmd := &Set{key: key, value: value}

	opt, err := p.NextString()
	if errors.Is(err, errEndOfFrame) {
		// No expiry option; the bare three-element form.
		return cmd, nil
	}
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(opt) {
	case "ex":
		secs, err := p.NextInt()
		if err != nil {
			return nil, err
		}
		cmd.ttl = time.Duration(secs) * time.Second
	case "px":
		ms, err := p.NextInt()
		if err != nil {
			return nil, err
		}
		cmd.ttl = time.Duration(ms) * time.Millisecond
	default:
		return nil, fmt.Errorf("%w: unsupported SET option %q", ErrProtocol, opt)
	}
	if cmd.ttl <= 0 {
		return nil, fmt.Errorf("%w: invalid expire time in 'set'", ErrProtocol)
	}
	return cmd, nil
}

func (c *Set) Name() string {
	return "set"
}

func (c *Set) Key() string {
	return c.key
}

func (c *Set) Apply(_ context.Context, db *store.DB, dst *resp.Writer) error {
	db.Set(c.key, c.value, c.ttl)
	if err := dst.WriteFrame(resp.Simple("OK")); err != nil {
		return err
	}
	return dst.Flush()
}
