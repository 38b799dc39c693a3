package pebble

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/state"
)

func openTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundtrip(t *testing.T) {
	store := openTestStore(t, Options{})
	k := keylet.Listing(1)

	got, err := store.Read(k)
	if err != nil || got != nil {
		t.Fatalf("Read(absent) = %v, %v", got, err)
	}

	if err := store.Insert(k, []byte("payload")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err = store.Read(k)
	if err != nil || !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("Read = %q, %v", got, err)
	}

	if err := store.Update(k, []byte("updated")); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.Read(k)
	if !bytes.Equal(got, []byte("updated")) {
		t.Fatalf("Read after update = %q", got)
	}

	if err := store.Erase(k); err != nil {
		t.Fatalf("erase: %v", err)
	}
	exists, err := store.Exists(k)
	if err != nil || exists {
		t.Fatalf("Exists after erase = %v, %v", exists, err)
	}
}

func TestStoreViewSemantics(t *testing.T) {
	store := openTestStore(t, Options{})
	k := keylet.Bid(9)

	if err := store.Update(k, []byte("x")); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("update absent: %v", err)
	}
	if err := store.Erase(k); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("erase absent: %v", err)
	}
	if err := store.Insert(k, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(k, []byte("y")); !errors.Is(err, state.ErrExists) {
		t.Fatalf("double insert: %v", err)
	}
}

func TestStoreCompressedValues(t *testing.T) {
	store := openTestStore(t, Options{Compress: true})
	k := keylet.Listing(2)

	// Highly compressible payload well above the size threshold.
	payload := bytes.Repeat([]byte("marketd"), 200)
	if err := store.Insert(k, payload); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := store.Read(k)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("compressed roundtrip failed: %v", err)
	}

	// Small values skip the compressor entirely.
	small := keylet.Listing(3)
	if err := store.Insert(small, []byte("tiny")); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Read(small)
	if !bytes.Equal(got, []byte("tiny")) {
		t.Fatalf("small value roundtrip = %q", got)
	}
}

func TestFrameEncoding(t *testing.T) {
	s := &Store{compress: true}
	payload := bytes.Repeat([]byte{0xab}, 512)

	framed := s.encodeFrame(payload)
	if framed[0] != frameLZ4 {
		t.Fatalf("expected lz4 frame, got %#x", framed[0])
	}
	if len(framed) >= len(payload) {
		t.Fatalf("compressible payload did not shrink: %d >= %d", len(framed), len(payload))
	}
	back, err := decodeFrame(framed)
	if err != nil || !bytes.Equal(back, payload) {
		t.Fatalf("decode = %v", err)
	}

	// Incompressible data falls back to the raw frame.
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i * 37)
	}
	framed = s.encodeFrame(raw)
	back, err = decodeFrame(framed)
	if err != nil || !bytes.Equal(back, raw) {
		t.Fatalf("raw fallback decode = %v", err)
	}
}

func TestFrameExtremeCompressionRatio(t *testing.T) {
	s := &Store{compress: true}

	// A constant run compresses to a few hundred bytes regardless of
	// input size; the frame must still decode to the full value.
	payload := make([]byte, 1<<20)
	framed := s.encodeFrame(payload)
	if framed[0] != frameLZ4 {
		t.Fatalf("expected lz4 frame, got %#x", framed[0])
	}
	if ratio := len(payload) / len(framed); ratio <= 64 {
		t.Fatalf("payload not compressed hard enough for the test: ratio %d", ratio)
	}
	back, err := decodeFrame(framed)
	if err != nil || !bytes.Equal(back, payload) {
		t.Fatalf("high-ratio decode failed: %v", err)
	}
}
