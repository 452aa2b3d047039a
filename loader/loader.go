// Package loader reads a compiled program off disk — JSON for
// readability during development, MessagePack for compact storage —
// and wires it into a ready-to-run wam.Machine. This mirrors the
// teacher's own io.Reader/io.Writer-driven construction (New(in, out)
// in interpreter.go), generalized from source-text parsing to decoding
// an already-assembled instruction vector.
package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/clausewam/wam/engine"
	"github.com/clausewam/wam/wam"
)

// Instruction is the on-disk instruction record; it is the same shape
// the engine executes, so the loader does no translation beyond
// decoding and clause-table registration.
type Instruction = engine.Instruction

// Program is the on-disk representation of a compiled unit: the
// instruction vector, the register count needed to run it, the
// initial predicate table (predicate name -> ordered clause
// addresses), and an optional set of key register positions per
// predicate to build at load time.
type Program struct {
	Registers    int
	Instructions []Instruction
	Predicates   map[string][]int
	IndexOn      map[string][]int
}

// Format selects the on-disk encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
)

// ParseFormat maps a CLI-style name ("json", "msgpack") to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("loader: unknown format %q", name)
	}
}

// Decode reads a Program from r in the given format.
func Decode(r io.Reader, format Format) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: read: %w", err)
	}

	var p Program
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("loader: decode json: %w", err)
		}
	case FormatMsgpack:
		dec := codec.NewDecoderBytes(data, &codec.MsgpackHandle{})
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("loader: decode msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("loader: unknown format %d", format)
	}
	return &p, nil
}

// Encode writes p to w in the given format, the inverse of Decode.
// Used by tooling that compiles and caches programs; the executor
// itself only ever calls Decode/Load.
func Encode(w io.Writer, p *Program, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("loader: encode json: %w", err)
		}
		return nil
	case FormatMsgpack:
		enc := codec.NewEncoder(w, &codec.MsgpackHandle{})
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("loader: encode msgpack: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("loader: unknown format %d", format)
	}
}

// Load decodes a Program from r and returns a wam.Machine with its
// predicate table populated and its indexes built, ready for Run.
func Load(r io.Reader, format Format, opts ...wam.Option) (*wam.Machine, error) {
	p, err := Decode(r, format)
	if err != nil {
		return nil, err
	}

	m := wam.New(p.Instructions, p.Registers, opts...)
	for predicate, addrs := range p.Predicates {
		m.RegisterPredicate(predicate, addrs)
	}
	for predicate, keyPositions := range p.IndexOn {
		if err := m.BuildIndex(predicate, keyPositions); err != nil {
			return nil, fmt.Errorf("loader: build index for %q: %w", predicate, err)
		}
	}
	return m, nil
}
