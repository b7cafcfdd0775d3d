package leafpack

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// RandomSource supplies the random draws used for key bytes, lock filler and
// password key selectors. Implementations must be safe for concurrent use.
type RandomSource interface {
	// Intn returns a uniformly distributed value in [0, n). It panics if
	// n <= 0.
	Intn(n int) int
}

// drawRange returns a uniform value in the closed range [min, max].
func drawRange(src RandomSource, min, max int) byte {
	return byte(min + src.Intn(max-min+1))
}

// cryptoSource draws from crypto/rand.
type cryptoSource struct {
	mu  sync.Mutex
	buf [8]byte
}

// NewCryptoSource returns a RandomSource backed by crypto/rand. It is the
// default for new codecs.
func NewCryptoSource() RandomSource {
	return &cryptoSource{}
}

func (s *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("leafpack: invalid argument to Intn: %d", n))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return uniform(n, func() uint64 {
		if _, err := rand.Read(s.buf[:]); err != nil {
			panic(fmt.Sprintf("leafpack: crypto/rand failed: %v", err))
		}
		return binary.LittleEndian.Uint64(s.buf[:])
	})
}

// lockedSource serializes access to a math/rand generator.
type lockedSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewLockedSource wraps a math/rand generator seeded with seed. Every draw
// takes the source's mutex, so one instance may be shared between goroutines.
func NewLockedSource(seed int64) RandomSource {
	return &lockedSource{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// seededSource expands a seed into a ChaCha20 keystream.
type seededSource struct {
	mu     sync.Mutex
	stream *chacha20.Cipher
	buf    [8]byte
}

// NewSeededSource returns a deterministic RandomSource whose draws are taken
// from a ChaCha20 keystream keyed by BLAKE2b-256(seed). Two sources built from
// the same seed produce identical sequences, which makes encodes
// reproducible.
func NewSeededSource(seed []byte) (RandomSource, error) {
	key := blake2b.Sum256(seed)
	nonce := make([]byte, chacha20.NonceSize)
	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to create keystream: %w", err)
	}
	return &seededSource{stream: stream}, nil
}

func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("leafpack: invalid argument to Intn: %d", n))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return uniform(n, func() uint64 {
		s.buf = [8]byte{}
		s.stream.XORKeyStream(s.buf[:], s.buf[:])
		return binary.LittleEndian.Uint64(s.buf[:])
	})
}

// uniform maps 64-bit draws onto [0, n) by rejection sampling.
func uniform(n int, next func() uint64) int {
	bound := uint64(n)
	limit := ^uint64(0) - (^uint64(0) % bound)
	for {
		v := next()
		if v < limit {
			return int(v % bound)
		}
	}
}
