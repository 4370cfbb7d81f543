// Package json wraps JSON serialization behind a single import point.
// On amd64/arm64 it uses sonic; other platforms fall back to encoding/json.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

// Encoder streams JSON values to a writer.
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder streams JSON values from a reader.
type Decoder interface {
	Decode(v interface{}) error
}

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v interface{}) error

	// NewEncoder creates an encoder writing to w.
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder creates a decoder reading from r.
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

func init() {
	// sonic 仅支持 amd64 / arm64
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		api := sonic.ConfigDefault
		Marshal = api.Marshal
		Unmarshal = api.Unmarshal
		NewEncoder = func(w io.Writer) Encoder { return api.NewEncoder(w) }
		NewDecoder = func(r io.Reader) Decoder { return api.NewDecoder(r) }
		usingSonic = true
		return
	}
	Marshal = stdjson.Marshal
	Unmarshal = stdjson.Unmarshal
	NewEncoder = func(w io.Writer) Encoder { return stdjson.NewEncoder(w) }
	NewDecoder = func(r io.Reader) Decoder { return stdjson.NewDecoder(r) }
}

// IsUsingSonic reports whether the sonic implementation is active.
func IsUsingSonic() bool {
	return usingSonic
}
