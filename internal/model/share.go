package model

type ShareToken struct {
	ID         string   `json:"id"`
	BookingID  string   `json:"booking_id"`
	Token      string   `json:"token"`
	Categories []string `json:"categories"`
	State      int      `json:"state"`
	IssuedAt   int64    `json:"issued_at"`
	ExpiresAt  int64    `json:"expires_at"`
	Mtime      int64    `json:"mtime"`
}
