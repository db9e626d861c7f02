package format

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// cborMode encodes maps and structs in core deterministic order so equal
// results give equal bytes.
var cborMode, _ = cbor.CoreDetEncOptions().EncMode()

// CBOREncoder writes the same document as JSONEncoder in CBOR.
type CBOREncoder struct {
	w      io.Writer
	result *Result
}

func NewCBOREncoder(w io.Writer) *CBOREncoder {
	return &CBOREncoder{w: w}
}

func (e *CBOREncoder) Encode(r *Result) error {
	e.result = r
	data, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

func (e *CBOREncoder) MarshalText() ([]byte, error) {
	return cborMode.Marshal(newDocument(e.result))
}
