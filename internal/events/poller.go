package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

// CartRefresher re-reads the cart from the backend and republishes its
// snapshot.
type CartRefresher interface {
	Load(ctx context.Context) (domain.CartSnapshot, error)
}

// CurrentUser reports who is logged in on this context.
type CurrentUser interface {
	User() (domain.User, bool)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Poller refreshes the storefront cart from the backend once the checkout
// process reports a confirmed payment for the logged-in user.
type Poller struct {
	reader   messageReader
	cart     CartRefresher
	user     CurrentUser
	log      *slog.Logger
	errPause time.Duration
}

func NewPoller(cart CartRefresher, user CurrentUser, groupID string, brokers ...string) *Poller {
	if groupID == "" {
		groupID = DefaultStorefrontGroupID
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(reader, cart, user)
}

func newPoller(reader messageReader, cart CartRefresher, user CurrentUser) *Poller {
	return &Poller{
		reader:   reader,
		cart:     cart,
		user:     user,
		log:      slog.Default().With("component", "events_poller"),
		errPause: time.Second,
	}
}

// Run consumes until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	for {
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.log.ErrorContext(ctx, "read message failed", "error", err)
			select {
			case <-time.After(p.errPause):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		p.handle(ctx, m)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Error("close reader failed", "error", err)
	}
}

var errNoUserID = errors.New("missing or invalid user_id")

// handle reports whether the message refreshed the cart.
func (p *Poller) handle(ctx context.Context, m kafka.Message) bool {
	if t := eventType(m); t != "" && t != EventCheckoutCompleted {
		return false
	}

	userID, err := completedUserID(m.Value)
	if err != nil {
		p.log.WarnContext(ctx, "skipping checkout event", "offset", m.Offset, "error", err)
		return false
	}

	current, ok := p.user.User()
	if !ok || current.ID != userID {
		return false
	}

	snap, err := p.cart.Load(ctx)
	if err != nil {
		p.log.ErrorContext(ctx, "refresh cart after checkout failed", "user_id", userID, "checkout_id", string(m.Key), "error", err)
		return false
	}
	p.log.InfoContext(ctx, "cart refreshed after checkout", "user_id", userID, "checkout_id", string(m.Key), "lines", len(snap.Lines))
	return true
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == EventTypeHeader {
			return string(h.Value)
		}
	}
	return ""
}

func completedUserID(value []byte) (string, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(value, &payload); err != nil {
		return "", err
	}
	userID, ok := payload["user_id"].(string)
	if !ok || userID == "" {
		return "", errNoUserID
	}
	return userID, nil
}
