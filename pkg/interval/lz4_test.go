package interval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/engineering87/TemporalCollections-sub001/pkg/interval"
)

func TestCompressDecompressUInt32Slice(t *testing.T) {
	t.Parallel()

	data := make([]uint32, 1000)
	for idx := range data {
		data[idx] = 7
	}

	packed := interval.CompressUInt32Slice(data)
	assert.NotEmpty(t, packed)

	for idx := range data {
		data[idx] = 0
	}

	interval.DecompressUInt32Slice(packed, data)

	for idx := range data {
		assert.Equal(t, uint32(7), data[idx], "value at index %d", idx)
	}
}

func TestCompressDecompressInt64Slice(t *testing.T) {
	t.Parallel()

	data := make([]int64, 1000)
	for idx := range data {
		data[idx] = int64(idx) * 1000
	}

	packed := interval.CompressInt64Slice(data)
	assert.NotEmpty(t, packed)

	restored := make([]int64, len(data))
	interval.DecompressInt64Slice(packed, restored)

	assert.Equal(t, data, restored)
}
