package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

// RecentBookingCount is how many bookings the overview lists.
const RecentBookingCount = 5

// Earnings summarises revenue over the loaded bookings.
type Earnings struct {
	Total      float64
	LastPayout string
}

// SummarizeEarnings takes the payout date of the first booking as the
// last payout, "n/a" when there is none.
func SummarizeEarnings(bookings []model.Booking) Earnings {
	e := Earnings{LastPayout: "n/a"}
	for _, b := range bookings {
		e.Total += b.Revenue
	}
	if len(bookings) > 0 && bookings[0].PayoutDate != "" {
		e.LastPayout = bookings[0].PayoutDate
	}
	return e
}

type Analytics struct {
	Screens  int
	Bookings int
}

func SummarizeAnalytics(screens []model.Screen, bookings []model.Booking) Analytics {
	return Analytics{Screens: len(screens), Bookings: len(bookings)}
}

// BookingRow is a booking with display fallbacks applied.
type BookingRow struct {
	ID         string
	Advertiser string
	Date       string
	Slots      int
	ScreenName string
	Revenue    float64
	Status     string
}

func BookingRows(bookings []model.Booking, screens []model.Screen) []BookingRow {
	names := make(map[string]string, len(screens))
	for _, s := range screens {
		names[s.ID] = s.Name
	}
	rows := make([]BookingRow, 0, len(bookings))
	for _, b := range bookings {
		row := BookingRow{
			ID:         b.ID,
			Advertiser: b.AdvertiserName,
			Date:       b.Date,
			Slots:      len(b.TimeSlots),
			ScreenName: names[b.ScreenID],
			Revenue:    b.Revenue,
			Status:     b.Status,
		}
		if row.Advertiser == "" {
			row.Advertiser = "Advertiser"
		}
		if row.ScreenName == "" {
			row.ScreenName = "Unknown"
		}
		if row.Status == "" {
			row.Status = "Booked"
		}
		rows = append(rows, row)
	}
	return rows
}

// RecentBookings returns at most n rows from the front of rows.
func RecentBookings(rows []BookingRow, n int) []BookingRow {
	if n < 0 {
		n = 0
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// FormatMoney renders an amount in rand with grouped digits, e.g. R12,500.
func FormatMoney(amount float64) string {
	return message.NewPrinter(language.English).Sprintf("R%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}
