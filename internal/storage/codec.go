package storage

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// codec encodes the snapshot file.
type codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
	Name() string
}

func codecFor(format string) (codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return jsonCodec{}, nil
	case "cbor":
		return cborCodec{}, nil
	default:
		return nil, fmt.Errorf("storage: unknown format %q (want json or cbor)", format)
	}
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)   { return json.MarshalIndent(v, "", "  ") }
func (jsonCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }
func (jsonCodec) Name() string                    { return "json" }

// cborEnc uses Core Deterministic Encoding so an unchanged state always
// produces identical bytes. Dates go through MarshalText and timestamps keep
// nanoseconds.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	if cborEnc, err = opts.EncMode(); err != nil {
		panic("storage: cbor encoder: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("storage: cbor decoder: " + err.Error())
	}
}

type cborCodec struct{}

func (cborCodec) Marshal(v any) ([]byte, error)   { return cborEnc.Marshal(v) }
func (cborCodec) Unmarshal(b []byte, v any) error { return cborDec.Unmarshal(b, v) }
func (cborCodec) Name() string                    { return "cbor" }
