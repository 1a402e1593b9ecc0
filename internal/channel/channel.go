package channel

import (
	"context"
	"errors"
	"strings"
)

// Channel is a blind key-value store shared by independently started
// processes. It offers whole-value overwrite only: no versions, no
// notifications, no locking.
type Channel interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")

// WithPrefix namespaces every key of ch as "<prefix>:<key>", e.g. per shop
// when several storefronts share one store. An empty prefix returns ch.
func WithPrefix(ch Channel, prefix string) Channel {
	prefix = strings.TrimRight(prefix, ":")
	if prefix == "" {
		return ch
	}
	return prefixed{ch: ch, prefix: prefix + ":"}
}

type prefixed struct {
	ch     Channel
	prefix string
}

func (p prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.ch.Get(ctx, p.prefix+key)
}

func (p prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.ch.Set(ctx, p.prefix+key, value)
}

func (p prefixed) Delete(ctx context.Context, key string) error {
	return p.ch.Delete(ctx, p.prefix+key)
}
