package diagfmt

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

// MsgPack writes the same document as JSON in MessagePack form. Field names
// come from the json tags, so both outputs decode into DiagnosticsOutput.
func MsgPack(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(bag, fs, opts)
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	enc.SetOmitEmpty(true)
	return enc.Encode(output)
}

// DecodeMsgPack reads a document written by MsgPack.
func DecodeMsgPack(r io.Reader) (DiagnosticsOutput, error) {
	var out DiagnosticsOutput
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	err := dec.Decode(&out)
	return out, err
}
