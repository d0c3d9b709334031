package model

import "time"

// ProvidersCollection is keyed by the provider's UID.
const ProvidersCollection = "providers"

// Provider is the profile and settings document of a signed-up provider.
type Provider struct {
	UID       string
	Name      string
	Email     string
	Notify    bool
	CreatedAt time.Time
}

func ProviderFromDocument(uid string, data map[string]any) Provider {
	return Provider{
		UID:       uid,
		Name:      stringValue(data["name"]),
		Email:     stringValue(data["email"]),
		Notify:    boolValue(data["notify"]),
		CreatedAt: timeValue(data["createdAt"]),
	}
}
