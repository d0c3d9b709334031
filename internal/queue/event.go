// Package queue defines message payloads exchanged over the message broker
// and the publisher and consumer that move them.
package queue

// ScreenRegisteredQueue is the durable queue screen registrations go to.
const ScreenRegisteredQueue = "screen.registered"

// ScreenRegisteredEvent is published after a provider saves a new screen.
// It carries enough for downstream consumers (audit log, marketplace
// indexing) to act without reading the document store.
type ScreenRegisteredEvent struct {
	ScreenID     string  `json:"screen_id"`
	ProviderID   string  `json:"provider_id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Tier         string  `json:"tier"`
	PrimeRate    float64 `json:"prime_rate"`
	HasImage     bool    `json:"has_image"`
	RegisteredAt string  `json:"registered_at"`
}
