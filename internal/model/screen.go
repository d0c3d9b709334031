package model

import "time"

// ScreensCollection holds one document per registered screen.
const ScreensCollection = "screens"

// Tier is the commercial grade of a screen location.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Tiers lists the valid tiers in display order.
var Tiers = []Tier{TierA, TierB, TierC}

func (t Tier) Valid() bool {
	switch t {
	case TierA, TierB, TierC:
		return true
	}
	return false
}

// HourlyRates is the price per hour in each daypart.
type HourlyRates struct {
	Prime     float64
	Shoulder  float64
	Late      float64
	Overnight float64
}

// Screen is a physical advertising display owned by a provider.
type Screen struct {
	ID           string
	ProviderID   string
	Name         string
	Address      string
	Lat          *float64
	Lng          *float64
	Size         string
	Type         string
	Tier         Tier
	PlaysPerHour float64
	HourlyRates  HourlyRates
	Availability string
	ImageURL     string
	CreatedAt    time.Time
}

// Document encodes the screen with the field names stored in the
// screens collection. Optional coordinates and an empty image URL are
// left out.
func (s Screen) Document() map[string]any {
	doc := map[string]any{
		"providerId":   s.ProviderID,
		"name":         s.Name,
		"address":      s.Address,
		"size":         s.Size,
		"type":         s.Type,
		"tier":         string(s.Tier),
		"playsPerHour": s.PlaysPerHour,
		"hourlyRates": map[string]any{
			"prime":     s.HourlyRates.Prime,
			"shoulder":  s.HourlyRates.Shoulder,
			"late":      s.HourlyRates.Late,
			"overnight": s.HourlyRates.Overnight,
		},
		"availability": s.Availability,
		"createdAt":    s.CreatedAt,
	}
	if s.Lat != nil {
		doc["lat"] = *s.Lat
	}
	if s.Lng != nil {
		doc["lng"] = *s.Lng
	}
	if s.ImageURL != "" {
		doc["imageUrl"] = s.ImageURL
	}
	return doc
}

// ScreenFromDocument decodes a stored screen. Missing or malformed fields
// decode to zero values.
func ScreenFromDocument(id string, data map[string]any) Screen {
	rates := mapValue(data["hourlyRates"])
	return Screen{
		ID:           id,
		ProviderID:   stringValue(data["providerId"]),
		Name:         stringValue(data["name"]),
		Address:      stringValue(data["address"]),
		Lat:          optionalNumberValue(data["lat"]),
		Lng:          optionalNumberValue(data["lng"]),
		Size:         stringValue(data["size"]),
		Type:         stringValue(data["type"]),
		Tier:         Tier(stringValue(data["tier"])),
		PlaysPerHour: numberValue(data["playsPerHour"]),
		HourlyRates: HourlyRates{
			Prime:     numberValue(rates["prime"]),
			Shoulder:  numberValue(rates["shoulder"]),
			Late:      numberValue(rates["late"]),
			Overnight: numberValue(rates["overnight"]),
		},
		Availability: stringValue(data["availability"]),
		ImageURL:     stringValue(data["imageUrl"]),
		CreatedAt:    timeValue(data["createdAt"]),
	}
}
