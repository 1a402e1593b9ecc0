// Package events carries checkout completions between the checkout and the
// storefront processes over Kafka.
package events

const (
	Topic = "checkout-outbox"

	EventTypeHeader          = "event_type"
	EventCheckoutCompleted   = "checkout-completed"
	DefaultStorefrontGroupID = "storefront-consumer"
)
