package store

import (
	"encoding/binary"
	"errors"

	"github.com/andreyvit/datum"
	"github.com/cespare/xxhash/v2"
)

// Records are stored as
//
//	record -> checksum:64 value
//
// where checksum is the big-endian xxhash64 of the encoded value.
const checksumSize = 8

func appendRecord(buf []byte, v *datum.Value) []byte {
	off := len(buf)
	buf = append(buf, make([]byte, checksumSize)...)
	buf = v.AppendBinary(buf)
	binary.BigEndian.PutUint64(buf[off:], xxhash.Sum64(buf[off+checksumSize:]))
	return buf
}

func decodeRecord(data []byte, assets datum.AssetResolver) (*datum.Value, error) {
	if len(data) < checksumSize {
		return nil, &datum.DataError{Off: 0, Err: datum.ErrMalformed, Msg: "record too short"}
	}
	payload := data[checksumSize:]
	if sum := binary.BigEndian.Uint64(data); sum != xxhash.Sum64(payload) {
		return nil, &datum.DataError{Off: 0, Err: datum.ErrMalformed, Msg: "checksum mismatch"}
	}
	v, err := datum.Decode(payload, assets)
	if err != nil {
		var de *datum.DataError
		if errors.As(err, &de) {
			de.Off += checksumSize
		}
		return nil, err
	}
	return v, nil
}
