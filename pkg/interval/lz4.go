// Package interval provides the interval index: a binary search tree keyed
// by interval start, augmented with the maximum end of each subtree so
// overlap queries can skip subtrees that cannot reach the query window.
package interval

import (
	"bytes"
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

const (
	// uint32ByteSize is the number of bytes in a uint32.
	uint32ByteSize = 4

	// int64ByteSize is the number of bytes in an int64.
	int64ByteSize = 8
)

// CompressUInt32Slice compresses a slice of uint32-s with LZ4.
func CompressUInt32Slice(data []uint32) []byte {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	return compressBlock(buf.Bytes())
}

// DecompressUInt32Slice decompresses a slice of uint32-s previously
// compressed with LZ4. `result` must be preallocated.
func DecompressUInt32Slice(data []byte, result []uint32) {
	decompressed := make([]byte, len(result)*uint32ByteSize)

	_, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return
	}

	readErr := binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
	if readErr != nil {
		return
	}
}

// CompressInt64Slice compresses a slice of int64-s with LZ4. The interval
// arena stores start, end, and max-end columns as int64 nanoseconds.
func CompressInt64Slice(data []int64) []byte {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	return compressBlock(buf.Bytes())
}

// DecompressInt64Slice decompresses a slice of int64-s previously
// compressed with LZ4. `result` must be preallocated.
func DecompressInt64Slice(data []byte, result []int64) {
	decompressed := make([]byte, len(result)*int64ByteSize)

	_, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return
	}

	readErr := binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
	if readErr != nil {
		return
	}
}

func compressBlock(raw []byte) []byte {
	compressed := make([]byte, lz4.CompressBlockBound(len(raw)))

	written, err := lz4.CompressBlock(raw, compressed, nil)
	if err != nil || written == 0 {
		return nil
	}

	return compressed[:written]
}
