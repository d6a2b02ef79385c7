// Package snapshot dumps every entry of a store into a portable document and
// restores it, into the same or another backend.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/unkn0wn-root/botdb"
	"github.com/unkn0wn-root/botdb/internal/wire"
	"github.com/unkn0wn-root/botdb/value"
)

// Version is written into every snapshot; Read rejects other versions.
const Version = 1

// DefaultMaxSize caps how many bytes Read accepts.
const DefaultMaxSize = 64 << 20

var (
	ErrVersion  = errors.New("snapshot: unsupported version")
	ErrTooLarge = errors.New("snapshot: too large")
)

// Entry is one key with its stored literal text.
type Entry struct {
	Key  string `json:"key" msgpack:"key" cbor:"key"`
	Text string `json:"text" msgpack:"text" cbor:"text"`
}

type Snapshot struct {
	Version   int       `json:"version" msgpack:"version" cbor:"version"`
	Backend   string    `json:"backend" msgpack:"backend" cbor:"backend"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at" cbor:"created_at"`
	Entries   []Entry   `json:"entries" msgpack:"entries" cbor:"entries"`
}

// Dump reads every backend key through the store, sorted by key. Keys whose
// value is absent by the time they are read are left out.
func Dump(ctx context.Context, s *botdb.Store) (Snapshot, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	sort.Strings(keys)

	snap := Snapshot{
		Version:   Version,
		Backend:   s.Name(),
		CreatedAt: time.Now().UTC(),
		Entries:   make([]Entry, 0, len(keys)),
	}
	for _, k := range keys {
		v, ok, err := s.GetKey(ctx, k)
		if err != nil {
			return Snapshot{}, err
		}
		if !ok {
			continue
		}
		snap.Entries = append(snap.Entries, Entry{Key: k, Text: value.Encode(v)})
	}
	return snap, nil
}

// Restore writes every entry and then rebuilds the store cache. With flush
// set the backend is emptied first, so keys missing from the snapshot are
// gone afterwards.
func Restore(ctx context.Context, s *botdb.Store, snap Snapshot, flush bool) error {
	if snap.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}
	if flush {
		if err := s.FlushAll(ctx); err != nil {
			return err
		}
	}
	for _, e := range snap.Entries {
		if err := s.SetKey(ctx, e.Key, value.Decode(e.Text)); err != nil {
			return fmt.Errorf("snapshot: restore %q: %w", e.Key, err)
		}
	}
	return s.ReCache(ctx)
}

// Write encodes snap in the named format and frames it with the format id
// and a checksum.
func Write(w io.Writer, snap Snapshot, format string) error {
	id, c, err := lookup(format)
	if err != nil {
		return err
	}
	b, err := c.Encode(snap)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	_, err = w.Write(wire.Encode(id, b))
	return err
}

// Read decodes a framed snapshot of at most maxSize bytes (DefaultMaxSize
// when maxSize <= 0). The format is taken from the frame.
func Read(r io.Reader, maxSize int) (Snapshot, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	// one extra byte so an oversized input trips the limit
	b, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
	if err != nil {
		return Snapshot{}, err
	}
	if len(b) > maxSize {
		return Snapshot{}, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxSize)
	}
	id, payload, err := wire.Decode(b)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	c, err := codecByID(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := c.Decode(payload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode: %w", err)
	}
	if snap.Version != Version {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}
	return snap, nil
}
