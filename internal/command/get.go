package command

import (
	"context"

	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/stats"
	"github.com/loganszeto/respkv/internal/store"
)

// Get retrieves the value of a key. A missing key is answered with a null
// frame, not an error.
type Get struct {
	key string
}

func parseGet(p *Parse) (*Get, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, err
	}
	return &Get{key: key}, nil
}

func (c *Get) Name() string {
	return "get"
}

func (c *Get) Key() string {
	return c.key
}

func (c *Get) Apply(_ context.Context, db *store.DB, dst *resp.Writer) error {
	val, ok := db.Get(c.key)
	stats.RecordLookup(ok)

	var response resp.Frame
	if ok {
		response = resp.Bulk(val)
	} else {
		response = resp.Null()
	}
	if err := dst.WriteFrame(response); err != nil {
		return err
	}
	return dst.Flush()
}
