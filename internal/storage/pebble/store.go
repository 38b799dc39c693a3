// Package pebble persists engine records in a PebbleDB key-value store.
// Keys are the record type byte followed by the 256-bit keylet hash;
// values are framed with a compression flag so large records can be
// stored lz4-compressed.
package pebble

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/pierrec/lz4"

	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/state"
)

const (
	frameRaw byte = 0
	frameLZ4 byte = 1

	// Records below this size never compress usefully.
	minCompressSize = 128
)

// Options configures a Store.
type Options struct {
	// Compress enables lz4 framing for large values.
	Compress bool
}

// Store implements state.View over a PebbleDB database. All writes are
// synchronous; the engine's apply table batches per-operation changes
// above this layer.
type Store struct {
	db       *pebble.DB
	compress bool
}

var _ state.View = (*Store)(nil)

// Open opens or creates a store at the given path.
func Open(path string, opts Options) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", path, err)
	}

	dbOpts := &pebble.Options{
		Levels: make([]pebble.LevelOptions, 7),
	}
	// Point lookups dominate; bloom filters pay for themselves and the
	// application handles its own value compression.
	for i := range dbOpts.Levels {
		dbOpts.Levels[i] = pebble.LevelOptions{
			FilterPolicy: bloom.FilterPolicy(10),
			FilterType:   pebble.TableFilter,
			Compression:  pebble.NoCompression,
		}
	}

	db, err := pebble.Open(path, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", path, err)
	}
	return &Store{db: db, compress: opts.Compress}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if err := s.db.Flush(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

func storeKey(k keylet.Keylet) []byte {
	buf := make([]byte, 33)
	buf[0] = byte(k.Type)
	copy(buf[1:], k.Key[:])
	return buf
}

// Read returns the record value, nil if absent. The returned slice is
// the caller's to keep.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	value, closer, err := s.db.Get(storeKey(k))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()
	return decodeFrame(value)
}

// Exists checks record presence without decoding the value.
func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	_, closer, err := s.db.Get(storeKey(k))
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}

// Insert adds a new record.
func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return state.ErrExists
	}
	return s.db.Set(storeKey(k), s.encodeFrame(data), pebble.Sync)
}

// Update replaces an existing record.
func (s *Store) Update(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return state.ErrNotFound
	}
	return s.db.Set(storeKey(k), s.encodeFrame(data), pebble.Sync)
}

// Erase removes a record.
func (s *Store) Erase(k keylet.Keylet) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return state.ErrNotFound
	}
	return s.db.Delete(storeKey(k), pebble.Sync)
}

// Compressed frames carry the uncompressed length after the flag byte
// so decoding allocates exactly once, whatever the compression ratio.
const lz4HeaderSize = 1 + 4

// encodeFrame prefixes the value with its compression flag. Compression
// is kept only when it actually shrinks the value.
func (s *Store) encodeFrame(data []byte) []byte {
	if s.compress && len(data) >= minCompressSize {
		buf := make([]byte, lz4.CompressBlockBound(len(data))+lz4HeaderSize)
		buf[0] = frameLZ4
		binary.BigEndian.PutUint32(buf[1:lz4HeaderSize], uint32(len(data)))
		n, err := lz4.CompressBlock(data, buf[lz4HeaderSize:], nil)
		if err == nil && n > 0 && n+lz4HeaderSize < len(data)+1 {
			return buf[:n+lz4HeaderSize]
		}
	}
	out := make([]byte, len(data)+1)
	out[0] = frameRaw
	copy(out[1:], data)
	return out
}

func decodeFrame(value []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("empty store value")
	}
	body := value[1:]
	switch value[0] {
	case frameRaw:
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	case frameLZ4:
		if len(body) < lz4HeaderSize-1 {
			return nil, fmt.Errorf("truncated lz4 frame")
		}
		size := binary.BigEndian.Uint32(body[:4])
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body[4:], out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		return out[:n], nil
	default:
		return nil, fmt.Errorf("unknown value frame %#x", value[0])
	}
}
