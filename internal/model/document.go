package model

const (
	CategoryVoucher   = "voucher"
	CategoryAirTicket = "air_ticket"
	CategoryInvoice   = "invoice"
	CategoryOther     = "other"
)

// AllCategories is the fixed enumeration of document categories, in display order.
func AllCategories() []string {
	return []string{CategoryVoucher, CategoryAirTicket, CategoryInvoice, CategoryOther}
}

func IsValidCategory(category string) bool {
	switch category {
	case CategoryVoucher, CategoryAirTicket, CategoryInvoice, CategoryOther:
		return true
	}
	return false
}

type BookingDocument struct {
	ID          string `json:"id"`
	BookingID   string `json:"booking_id"`
	FileKey     string `json:"file_key"`
	Filename    string `json:"filename"`
	Category    string `json:"category"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Ctime       int64  `json:"ctime"`
}
