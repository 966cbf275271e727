package model

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID         string `json:"id"`
	AgentID    string `json:"agent_id"`
	Reference  string `json:"reference"`
	ClientName string `json:"client_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Pax        int    `json:"pax"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
	Ctime      int64  `json:"ctime"`
	Mtime      int64  `json:"mtime"`
}

func IsValidBookingStatus(status string) bool {
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}
