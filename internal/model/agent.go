package model

type Agent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	Ctime   int64  `json:"ctime"`
	Mtime   int64  `json:"mtime"`
}
