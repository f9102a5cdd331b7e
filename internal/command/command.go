// Package command turns decoded request frames into typed commands and
// executes them against the shared store.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/loganszeto/respkv/internal/resp"
	"github.com/loganszeto/respkv/internal/store"
)

// Command is one fully-parsed client request, ready for execution. Every
// variant owns its arguments outright; none holds a reference back into the
// frame it was parsed from.
//
// Apply executes the command against db and writes the response to dst. The
// context carries server shutdown; the commands implemented here complete
// synchronously and ignore it, but blocking commands must race against it,
// so it is threaded through every Apply rather than kept ambient.
type Command interface {
	Name() string
	Apply(ctx context.Context, db *store.DB, dst *resp.Writer) error
}

// FromFrame parses a command from a received frame. The frame must be the
// array variant; the first element is the command name, matched
// case-insensitively.
//
// An unrecognized name is not a parse error: it yields an Unknown command
// whose apply produces the diagnostic response. In that case trailing
// elements are expected and deliberately left unconsumed, since their shape
// is unknowable and must not be misread as a framing error.
func FromFrame(f resp.Frame) (Command, error) {
	parse, err := NewParse(f)
	if err != nil {
		return nil, err
	}

	name, err := parse.NextString()
	if err != nil {
		return nil, err
	}
	name = strings.ToLower(name)

	var cmd Command
	switch name {
	case "get":
		cmd, err = parseGet(parse)
	case "set":
		cmd, err = parseSet(parse)
	case "ping":
		cmd, err = parsePing(parse)
	default:
		return &Unknown{name: name}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := parse.Finish(); err != nil {
		return nil, fmt.Errorf("wrong number of arguments for '%s': %w", name, err)
	}
	return cmd, nil
}
