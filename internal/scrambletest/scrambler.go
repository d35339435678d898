// Package scrambletest provides an in-process stand-in for the native
// scrambling library.
//
// Scrambler implements a keyed prefix-preserving permutation: output bit i is
// input bit i flipped by a pseudo-random bit derived from the key and the
// first i input bits. Like the native library it reads the address word as
// bytes in memory, so callers must hand it byte-swapped words.
package scrambletest

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"os"

	"github.com/zeebo/blake3"
)

const keySize = 32

// Scrambler is not safe for concurrent use.
type Scrambler struct {
	// InitStatus, when non-zero, is returned by InitFromFile instead of
	// loading a key.
	InitStatus int32

	key         []byte
	Inits       int
	Scrambles   int
	LastPass    int32
	LastKeyFile string
	LastAlgo    [2]uint32
}

// New returns a Scrambler already keyed with key, for tests that do not go
// through InitFromFile.
func New(key []byte) *Scrambler {
	return &Scrambler{key: append([]byte(nil), key...)}
}

// InitFromFile loads the key from keyFile, creating the file with a random
// key when it does not exist.
func (s *Scrambler) InitFromFile(keyFile string, algorithm, rounds uint32, status *int32) int32 {
	s.Inits++
	s.LastKeyFile = keyFile
	s.LastAlgo = [2]uint32{algorithm, rounds}
	if s.InitStatus != 0 {
		return s.InitStatus
	}

	key, err := loadOrCreateKey(keyFile)
	if err != nil {
		return -1
	}
	s.key = key
	if status != nil {
		*status = 0
	}
	return 0
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) < keySize {
			return nil, fmt.Errorf("key file %s holds %d bytes, want %d", path, len(key), keySize)
		}
		return key[:keySize], nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key = make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// ScrambleIP4 scrambles all but the first passBits bits of addr.
func (s *Scrambler) ScrambleIP4(addr uint32, passBits int32) int32 {
	s.Scrambles++
	s.LastPass = passBits

	in := bits.ReverseBytes32(addr)
	out := in
	for i := int(passBits); i < 32; i++ {
		if s.flip(i, in) {
			out ^= 1 << (31 - i)
		}
	}
	return int32(bits.ReverseBytes32(out))
}

// flip derives the pad bit for position i from the i leading bits of in.
func (s *Scrambler) flip(i int, in uint32) bool {
	var prefix uint32
	if i > 0 {
		prefix = in >> (32 - i)
	}

	buf := make([]byte, 0, len(s.key)+5)
	buf = append(buf, s.key...)
	buf = append(buf, byte(i))
	buf = binary.BigEndian.AppendUint32(buf, prefix)

	sum := blake3.Sum256(buf)
	return sum[0]&1 == 1
}
