package service

import (
	"context"
	"strings"
	"time"

	"github.com/wildtrail/safaridesk/internal/model"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
	"github.com/wildtrail/safaridesk/internal/pkg/timeutil"
	"github.com/wildtrail/safaridesk/internal/repo"
)

type BookingService struct {
	bookings *repo.BookingRepo
	agents   *repo.AgentRepo
}

func NewBookingService(bookings *repo.BookingRepo, agents *repo.AgentRepo) *BookingService {
	return &BookingService{bookings: bookings, agents: agents}
}

type BookingInput struct {
	AgentID    string
	Reference  string
	ClientName string
	StartDate  string
	EndDate    string
	Pax        int
	Status     string
	Notes      string
}

func (in *BookingInput) normalize() error {
	in.Reference = strings.TrimSpace(in.Reference)
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.AgentID = strings.TrimSpace(in.AgentID)
	if in.Reference == "" {
		return appErr.ErrInvalid
	}
	if in.Status == "" {
		in.Status = model.BookingStatusPending
	}
	if !model.IsValidBookingStatus(in.Status) {
		return appErr.ErrInvalid
	}
	for _, date := range []string{in.StartDate, in.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return appErr.ErrInvalid
		}
	}
	if in.Pax < 0 {
		return appErr.ErrInvalid
	}
	return nil
}

func (s *BookingService) Create(ctx context.Context, input BookingInput) (*model.Booking, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	if input.AgentID != "" {
		if _, err := s.agents.GetByID(ctx, input.AgentID); err != nil {
			return nil, err
		}
	}
	now := timeutil.NowUnix()
	booking := &model.Booking{
		ID:         newID(),
		AgentID:    input.AgentID,
		Reference:  input.Reference,
		ClientName: input.ClientName,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Pax:        input.Pax,
		Status:     input.Status,
		Notes:      input.Notes,
		Ctime:      now,
		Mtime:      now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) Update(ctx context.Context, id string, input BookingInput) (*model.Booking, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.AgentID != "" && input.AgentID != booking.AgentID {
		if _, err := s.agents.GetByID(ctx, input.AgentID); err != nil {
			return nil, err
		}
	}
	booking.AgentID = input.AgentID
	booking.Reference = input.Reference
	booking.ClientName = input.ClientName
	booking.StartDate = input.StartDate
	booking.EndDate = input.EndDate
	booking.Pax = input.Pax
	booking.Status = input.Status
	booking.Notes = input.Notes
	booking.Mtime = timeutil.NowUnix()
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	return s.bookings.Delete(ctx, id)
}

func (s *BookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) List(ctx context.Context, filter repo.BookingFilter) ([]model.Booking, error) {
	return s.bookings.List(ctx, filter)
}

type BookingSummary struct {
	Total    int             `json:"total"`
	ByStatus map[string]int  `json:"by_status"`
	Upcoming []model.Booking `json:"upcoming"`
	Recent   []model.Booking `json:"recent"`
}

// Summary aggregates the dashboard cards: totals per status, next confirmed
// departures and the most recently touched bookings.
func (s *BookingService) Summary(ctx context.Context) (*BookingSummary, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, count := range counts {
		total += count
	}
	today := time.Now().Format("2006-01-02")
	upcoming, err := s.bookings.ListUpcoming(ctx, today, 5)
	if err != nil {
		return nil, err
	}
	recent, err := s.bookings.List(ctx, repo.BookingFilter{Limit: 5})
	if err != nil {
		return nil, err
	}
	return &BookingSummary{
		Total:    total,
		ByStatus: counts,
		Upcoming: upcoming,
		Recent:   recent,
	}, nil
}
