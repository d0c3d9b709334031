package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"850", 850},
		{" 12.5 ", 12.5},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e3", 1000},
		{"-4", -4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.in), "input %q", tt.in)
	}
}

func TestParseOptionalNumber(t *testing.T) {
	assert.Nil(t, ParseOptionalNumber(""))
	assert.Nil(t, ParseOptionalNumber("   "))
	assert.Nil(t, ParseOptionalNumber("north"))
	got := ParseOptionalNumber("-26.2041")
	require.NotNil(t, got)
	assert.InDelta(t, -26.2041, *got, 1e-9)
}

func TestScreenDocument_OmitsOptionalFields(t *testing.T) {
	s := Screen{ProviderID: "u1", Name: "N1 Billboard", Address: "Main Rd", Tier: TierB}
	doc := s.Document()

	assert.Equal(t, "u1", doc["providerId"])
	assert.Equal(t, "B", doc["tier"])
	assert.NotContains(t, doc, "lat")
	assert.NotContains(t, doc, "lng")
	assert.NotContains(t, doc, "imageUrl")
	assert.NotContains(t, doc, "file")
}

func TestScreenFromDocument_FirestoreEncodings(t *testing.T) {
	created := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	data := map[string]any{
		"providerId":   "u1",
		"name":         "Mall Entrance",
		"address":      "1 Sandton Dr",
		"lat":          int64(-26),
		"tier":         "A",
		"playsPerHour": int64(120),
		"hourlyRates": map[string]any{
			"prime":     int64(850),
			"shoulder":  float64(500),
			"late":      json.Number("350"),
			"overnight": "200",
		},
		"createdAt": created,
	}

	s := ScreenFromDocument("s1", data)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, TierA, s.Tier)
	assert.Equal(t, float64(120), s.PlaysPerHour)
	assert.Equal(t, HourlyRates{Prime: 850, Shoulder: 500, Late: 350, Overnight: 200}, s.HourlyRates)
	require.NotNil(t, s.Lat)
	assert.Equal(t, float64(-26), *s.Lat)
	assert.Nil(t, s.Lng)
	assert.Equal(t, created, s.CreatedAt)
}

func TestScreenFromDocument_JSONEncodings(t *testing.T) {
	var data map[string]any
	raw := `{"name":"Taxi Rank","playsPerHour":60,"createdAt":"2025-08-01T09:30:00Z","hourlyRates":{"prime":"abc"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &data))

	s := ScreenFromDocument("s2", data)
	assert.Equal(t, float64(60), s.PlaysPerHour)
	assert.Equal(t, float64(0), s.HourlyRates.Prime)
	assert.Equal(t, time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC), s.CreatedAt)
}

func TestBookingFromDocument(t *testing.T) {
	b := BookingFromDocument("b1", map[string]any{
		"screenId":       "s1",
		"advertiserName": "Acme",
		"date":           time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC),
		"timeSlots":      []any{"06:00", "07:00"},
		"revenue":        "not-a-number",
	})
	assert.Equal(t, "2025-08-03", b.Date)
	assert.Equal(t, []string{"06:00", "07:00"}, b.TimeSlots)
	assert.Equal(t, float64(0), b.Revenue)
	assert.Empty(t, b.Status)
}

func TestBookingDocumentRoundTrip(t *testing.T) {
	in := Booking{ScreenID: "s1", AdvertiserName: "Acme", Date: "2025-08-03", TimeSlots: []string{"06:00"}, Revenue: 1200, Status: "Confirmed"}
	out := BookingFromDocument("b1", in.Document())
	in.ID = "b1"
	assert.Equal(t, in, out)
}

func TestProviderFromDocument(t *testing.T) {
	p := ProviderFromDocument("u1", map[string]any{"name": "Acme Outdoor", "notify": true, "createdAt": "2025-08-01T00:00:00Z"})
	assert.Equal(t, "Acme Outdoor", p.Name)
	assert.True(t, p.Notify)
	assert.False(t, p.CreatedAt.IsZero())

	assert.False(t, ProviderFromDocument("u1", map[string]any{}).Notify)
}

func TestIdentityName(t *testing.T) {
	assert.Equal(t, "a@b.co", Identity{Email: "a@b.co"}.Name())
	assert.Equal(t, "Acme", Identity{Email: "a@b.co", DisplayName: "Acme"}.Name())
}

func TestTierValid(t *testing.T) {
	for _, tier := range Tiers {
		assert.True(t, tier.Valid())
	}
	assert.False(t, Tier("D").Valid())
	assert.False(t, Tier("").Valid())
}
