package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

func TestSummarizeEarnings(t *testing.T) {
	assert.Equal(t, Earnings{LastPayout: "n/a"}, SummarizeEarnings(nil))

	e := SummarizeEarnings([]model.Booking{
		{Revenue: 1200, PayoutDate: "2025-08-01"},
		{Revenue: 300.5, PayoutDate: "2025-07-01"},
		{Revenue: 0},
	})
	assert.Equal(t, 1500.5, e.Total)
	assert.Equal(t, "2025-08-01", e.LastPayout)

	e = SummarizeEarnings([]model.Booking{{Revenue: 10}})
	assert.Equal(t, "n/a", e.LastPayout)
}

func TestSummarizeAnalytics(t *testing.T) {
	a := SummarizeAnalytics(make([]model.Screen, 3), make([]model.Booking, 2))
	assert.Equal(t, Analytics{Screens: 3, Bookings: 2}, a)
}

func TestBookingRows_Fallbacks(t *testing.T) {
	screens := []model.Screen{{ID: "s1", Name: "Main Road"}}
	rows := BookingRows([]model.Booking{
		{ID: "b1", ScreenID: "s1", AdvertiserName: "Cola", Date: "2025-08-02", TimeSlots: []string{"08:00", "09:00"}, Revenue: 900, Status: "Confirmed"},
		{ID: "b2", ScreenID: "gone"},
	}, screens)

	assert.Equal(t, []BookingRow{
		{ID: "b1", Advertiser: "Cola", Date: "2025-08-02", Slots: 2, ScreenName: "Main Road", Revenue: 900, Status: "Confirmed"},
		{ID: "b2", Advertiser: "Advertiser", ScreenName: "Unknown", Status: "Booked"},
	}, rows)
}

func TestRecentBookings(t *testing.T) {
	rows := make([]BookingRow, 7)
	assert.Len(t, RecentBookings(rows, RecentBookingCount), 5)
	assert.Len(t, RecentBookings(rows[:2], RecentBookingCount), 2)
	assert.Empty(t, RecentBookings(rows, -1))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "R0", FormatMoney(0))
	assert.Equal(t, "R12,500", FormatMoney(12500))
	assert.Equal(t, "R1,234.5", FormatMoney(1234.5))
}
