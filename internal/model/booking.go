package model

// BookingsCollection is written by the advertiser side of the marketplace;
// this app only reads it.
const BookingsCollection = "bookings"

// Booking is an advertiser reservation against one of the provider's
// screens. Date and PayoutDate are kept as display strings.
type Booking struct {
	ID             string
	ScreenID       string
	AdvertiserName string
	Date           string
	TimeSlots      []string
	Revenue        float64
	Status         string
	PayoutDate     string
}

func BookingFromDocument(id string, data map[string]any) Booking {
	return Booking{
		ID:             id,
		ScreenID:       stringValue(data["screenId"]),
		AdvertiserName: stringValue(data["advertiserName"]),
		Date:           stringValue(data["date"]),
		TimeSlots:      stringsValue(data["timeSlots"]),
		Revenue:        numberValue(data["revenue"]),
		Status:         stringValue(data["status"]),
		PayoutDate:     stringValue(data["payoutDate"]),
	}
}

// Document is used to seed stores in development and tests.
func (b Booking) Document() map[string]any {
	slots := make([]any, 0, len(b.TimeSlots))
	for _, s := range b.TimeSlots {
		slots = append(slots, s)
	}
	return map[string]any{
		"screenId":       b.ScreenID,
		"advertiserName": b.AdvertiserName,
		"date":           b.Date,
		"timeSlots":      slots,
		"revenue":        b.Revenue,
		"status":         b.Status,
		"payoutDate":     b.PayoutDate,
	}
}
