package contract

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"bridgeidl/internal/ir"
)

// EncodeRecord marshals v as a value of rec. Fields travel positionally,
// inherited fields first; an absent optional field travels as nil.
func EncodeRecord(p *ir.Program, rec *ir.Record, v Record) ([]byte, error) {
	w, err := codec{prog: p}.recordToWire(rec, v, rec.Name)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(w)
}

// DecodeRecord is the inverse of EncodeRecord.
func DecodeRecord(p *ir.Program, rec *ir.Record, data []byte) (Record, error) {
	w, err := decodeWire(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Name, err)
	}
	return codec{prog: p}.recordFromWire(rec, w, rec.Name)
}

func decodeWire(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var w any
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}
	return w, nil
}
