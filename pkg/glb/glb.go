// Package glb reads, writes and validates the binary glTF container: a 12-byte
// header followed by 4-byte aligned, length-prefixed JSON and BIN chunks.
package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Container constants, all little-endian on the wire.
const (
	Magic   uint32 = 0x46546C67 // "glTF"
	Version uint32 = 2

	HeaderSize      = 12
	ChunkHeaderSize = 8
)

// ChunkType identifies the payload of a chunk.
type ChunkType uint32

// Known chunk types.
const (
	ChunkJSON ChunkType = 0x4E4F534A // "JSON"
	ChunkBIN  ChunkType = 0x004E4942 // "BIN\x00"
)

// String returns the four-character tag of the chunk type.
func (t ChunkType) String() string {
	switch t {
	case ChunkJSON:
		return "JSON"
	case ChunkBIN:
		return "BIN"
	default:
		return fmt.Sprintf("0x%08X", uint32(t))
	}
}

// padByte returns the byte used to align chunk data of type t.
func (t ChunkType) padByte() byte {
	if t == ChunkJSON {
		return 0x20
	}
	return 0x00
}

// Encoding errors.
var (
	ErrNoChunks          = errors.New("glb: no chunks")
	ErrFirstChunkNotJSON = errors.New("glb: first chunk must be JSON")
	ErrTooLarge          = errors.New("glb: container exceeds 4 GiB")
)

// Header is the fixed 12-byte file header.
type Header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// Chunk is one typed section of the container. Data is unpadded when written
// and padded (as stored) when decoded.
type Chunk struct {
	Type ChunkType
	Data []byte
}

// File is a decoded container.
type File struct {
	Header Header
	Chunks []Chunk
}

// JSON returns the data of the first JSON chunk.
func (f *File) JSON() []byte {
	for _, c := range f.Chunks {
		if c.Type == ChunkJSON {
			return c.Data
		}
	}
	return nil
}

// BIN returns the data of the first BIN chunk, or nil.
func (f *File) BIN() []byte {
	for _, c := range f.Chunks {
		if c.Type == ChunkBIN {
			return c.Data
		}
	}
	return nil
}

// PaddedLength rounds n up to the next multiple of 4.
func PaddedLength(n int) int {
	return (n + 3) &^ 3
}

// TotalLength returns 12 + sum(8 + paddedLength(chunk)) for the given chunks.
func TotalLength(chunks []Chunk) uint64 {
	total := uint64(HeaderSize)
	for _, c := range chunks {
		total += ChunkHeaderSize + uint64(PaddedLength(len(c.Data)))
	}
	return total
}

// Encode frames the chunks into a container. The length recorded in each
// chunk header is the padded length. The header's total length is computed
// once and checked against the bytes actually produced.
func Encode(chunks []Chunk) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	if chunks[0].Type != ChunkJSON {
		return nil, ErrFirstChunkNotJSON
	}

	total := TotalLength(chunks)
	if total > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, total)
	}

	buf := bytes.NewBuffer(make([]byte, 0, total))
	header := Header{Magic: Magic, Version: Version, Length: uint32(total)}
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("glb: writing header: %w", err)
	}

	for i, c := range chunks {
		padded := PaddedLength(len(c.Data))
		if err := binary.Write(buf, binary.LittleEndian, [2]uint32{uint32(padded), uint32(c.Type)}); err != nil {
			return nil, fmt.Errorf("glb: writing chunk %d header: %w", i, err)
		}
		buf.Write(c.Data)
		for n := len(c.Data); n < padded; n++ {
			buf.WriteByte(c.Type.padByte())
		}
	}

	if uint64(buf.Len()) != total {
		return nil, fmt.Errorf("%w: header declares %d bytes, wrote %d", ErrLengthMismatch, total, buf.Len())
	}
	return buf.Bytes(), nil
}

// Decode parses a container. The header checks are the same as Validate; in
// addition every chunk must fit inside the declared length and the first
// chunk must be JSON.
func Decode(data []byte) (*File, error) {
	size, err := Validate(data)
	if err != nil {
		return nil, err
	}

	f := &File{Header: Header{
		Magic:   binary.LittleEndian.Uint32(data[0:4]),
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Length:  size,
	}}

	offset := HeaderSize
	for offset < len(data) {
		if len(data)-offset < ChunkHeaderSize {
			return nil, &ValidationError{Check: "chunk", Err: fmt.Errorf("%w: chunk %d header at offset %d", ErrTruncated, len(f.Chunks), offset)}
		}
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		typ := ChunkType(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += ChunkHeaderSize

		if length > len(data)-offset {
			return nil, &ValidationError{Check: "chunk", Err: fmt.Errorf("%w: chunk %d declares %d bytes, %d remain", ErrTruncated, len(f.Chunks), length, len(data)-offset)}
		}
		if len(f.Chunks) == 0 && typ != ChunkJSON {
			return nil, &ValidationError{Check: "chunk", Err: ErrFirstChunkNotJSON}
		}

		f.Chunks = append(f.Chunks, Chunk{Type: typ, Data: data[offset : offset+length]})
		offset += length
	}

	if len(f.Chunks) == 0 {
		return nil, &ValidationError{Check: "chunk", Err: ErrNoChunks}
	}
	return f, nil
}
