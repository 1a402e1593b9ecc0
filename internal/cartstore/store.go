// Package cartstore keeps a cart snapshot visible across independently
// started processes that share nothing but a blind key-value channel.
//
// Writes are last-write-wins over a single key. There is no versioning and
// no merge: two contexts writing concurrently lose one of the writes. Reads
// never fail; anything unusable comes back as the empty snapshot.
package cartstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/channel"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

// DefaultKey is the well-known channel key holding the snapshot.
const DefaultKey = "cart"

type SharedCartStore struct {
	ch       channel.Channel
	key      string
	activity *Activity
	log      *slog.Logger
}

type Option func(*SharedCartStore)

func WithKey(key string) Option {
	return func(s *SharedCartStore) { s.key = key }
}

func WithActivity(a *Activity) Option {
	return func(s *SharedCartStore) { s.activity = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *SharedCartStore) { s.log = l }
}

// New constructs the store for one execution context. Without WithActivity
// the store gets an Activity that only changes through SetActive.
func New(ch channel.Channel, opts ...Option) *SharedCartStore {
	s := &SharedCartStore{
		ch:  ch,
		key: DefaultKey,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.activity == nil {
		s.activity = NewActivity(0)
	}
	s.log = s.log.With("component", "cartstore", "key", s.key)
	return s
}

// Write overwrites the shared value with snapshot. An empty snapshot clears
// the key instead. Failures are logged and leave the previous value in place.
func (s *SharedCartStore) Write(ctx context.Context, snapshot domain.CartSnapshot) {
	if snapshot.IsEmpty() {
		s.Clear(ctx)
		return
	}

	data, err := domain.EncodeSnapshot(snapshot)
	if err != nil {
		s.log.ErrorContext(ctx, "encode cart snapshot failed", "error", err)
		return
	}
	if err := s.ch.Set(ctx, s.key, data); err != nil {
		s.log.ErrorContext(ctx, "write cart snapshot failed", "error", err)
		return
	}
	s.log.DebugContext(ctx, "cart snapshot written", "lines", len(snapshot.Lines), "total", snapshot.Total.String())
}

// Read returns the shared snapshot, or the empty snapshot when the key is
// absent, the channel fails or the payload cannot be decoded.
func (s *SharedCartStore) Read(ctx context.Context) domain.CartSnapshot {
	data, err := s.ch.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, channel.ErrKeyNotFound) {
			s.log.WarnContext(ctx, "read cart snapshot failed", "error", err)
		}
		return domain.EmptySnapshot()
	}

	snapshot, err := domain.DecodeSnapshot(data)
	if err != nil {
		s.log.WarnContext(ctx, "discarding malformed cart snapshot", "error", err, "bytes", len(data))
		return domain.EmptySnapshot()
	}
	return snapshot
}

func (s *SharedCartStore) Clear(ctx context.Context) {
	if err := s.ch.Delete(ctx, s.key); err != nil {
		s.log.ErrorContext(ctx, "clear cart snapshot failed", "error", err)
	}
}

// OnBecomesActive runs cb every time this context goes from inactive to
// active. Call the returned func to unsubscribe.
func (s *SharedCartStore) OnBecomesActive(cb func()) func() {
	return s.activity.Subscribe(cb)
}

func (s *SharedCartStore) Activity() *Activity {
	return s.activity
}

// Close tears the store down with its context.
func (s *SharedCartStore) Close() {
	s.activity.Close()
}
