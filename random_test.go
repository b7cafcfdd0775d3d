package leafpack

import (
	"sync"
	"testing"
)

func TestSeededSource_Deterministic(t *testing.T) {
	a, err := NewSeededSource([]byte("seed"))
	if err != nil {
		t.Fatalf("NewSeededSource failed: %v", err)
	}
	b, err := NewSeededSource([]byte("seed"))
	if err != nil {
		t.Fatalf("NewSeededSource failed: %v", err)
	}

	for i := 0; i < 100; i++ {
		if x, y := a.Intn(254), b.Intn(254); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}

func TestSeededSource_ReproducibleEncode(t *testing.T) {
	encode := func() []byte {
		src, err := NewSeededSource([]byte("reproducible"))
		if err != nil {
			t.Fatalf("NewSeededSource failed: %v", err)
		}
		codec, err := NewCodec(&Config{Scheme: SchemeDualKey, Random: src})
		if err != nil {
			t.Fatalf("NewCodec failed: %v", err)
		}
		out, err := codec.Encode([]byte("same input"), "same.txt")
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		return out
	}

	if string(encode()) != string(encode()) {
		t.Error("seeded codecs produced different containers")
	}
}

func TestRandomSources_Range(t *testing.T) {
	seeded, err := NewSeededSource(nil)
	if err != nil {
		t.Fatalf("NewSeededSource failed: %v", err)
	}

	sources := map[string]RandomSource{
		"crypto": NewCryptoSource(),
		"locked": NewLockedSource(1),
		"seeded": seeded,
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			counts := make([]int, 4)
			for i := 0; i < 4000; i++ {
				v := src.Intn(4)
				if v < 0 || v >= 4 {
					t.Fatalf("Intn(4) = %d", v)
				}
				counts[v]++
			}
			for v, c := range counts {
				if c == 0 {
					t.Errorf("value %d never drawn", v)
				}
			}

			for i := 0; i < 1000; i++ {
				b := drawRange(src, LockThreshold+1, maxFillerByte)
				if b <= LockThreshold || b > maxFillerByte {
					t.Fatalf("drawRange = 0x%02X", b)
				}
			}
		})
	}
}

func TestRandomSources_Concurrent(t *testing.T) {
	seeded, err := NewSeededSource([]byte("concurrent"))
	if err != nil {
		t.Fatalf("NewSeededSource failed: %v", err)
	}

	for _, src := range []RandomSource{NewCryptoSource(), NewLockedSource(5), seeded} {
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 500; i++ {
					if v := src.Intn(254); v < 0 || v > 253 {
						t.Errorf("Intn(254) = %d", v)
						return
					}
				}
			}()
		}
		wg.Wait()
	}
}

func TestCryptoSource_PanicsOnBadBound(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Intn(0) did not panic")
		}
	}()
	NewCryptoSource().Intn(0)
}
