// Package storagekey derives the raw keys of substrate storage items.
package storagekey

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Twox128 is two xxhash64 rounds with seeds 0 and 1, concatenated little
// endian.
func Twox128(data []byte) []byte {
	out := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed++ {
		h := xxhash.NewWithSeed(seed)
		_, _ = h.Write(data)
		binary.LittleEndian.PutUint64(out[seed*8:], h.Sum64())
	}
	return out
}

func Blake2_128(data []byte) []byte {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return h.Sum(nil)
}

// Blake2_128Concat is the hash of data followed by data itself.
func Blake2_128Concat(data []byte) []byte {
	return append(Blake2_128(data), data...)
}

// Plain is the key of a StorageValue.
func Plain(pallet, item string) []byte {
	return append(Twox128([]byte(pallet)), Twox128([]byte(item))...)
}

// Map is the key of a StorageMap entry hashed with blake2_128_concat.
func Map(pallet, item string, key []byte) []byte {
	return append(Plain(pallet, item), Blake2_128Concat(key)...)
}
