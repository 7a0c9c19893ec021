package service

import (
	"context"
	"errors"
	"math"
	"time"

	availabilityerrors "hotelbook/internal/availability/errors"
	"hotelbook/internal/availability/repository"
	catalogerrors "hotelbook/internal/catalog/errors"
	catalogrepo "hotelbook/internal/catalog/repository"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
)

const (
	SourceCounters = "counters"
	SourceRooms    = "rooms"

	dateKeyLayout = "2006-01-02"
)

// OverlapCounter counts non-cancelled bookings of a room type whose stay
// overlaps [checkIn, checkOut).
type OverlapCounter interface {
	CountOverlapping(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int64, error)
}

type CheckInput struct {
	RoomTypeID string
	CheckIn    time.Time
	CheckOut   time.Time
	Required   int
}

type InitInput struct {
	HotelID    string
	RoomTypeID string
	From       time.Time
	To         time.Time
	TotalRooms int
}

type AvailabilityService interface {
	Check(ctx context.Context, in CheckInput) (*model.AvailabilityResult, error)
	// ReserveForBooking claims capacity for one stay and returns the mode it
	// used. It must run inside the booking transaction.
	ReserveForBooking(ctx context.Context, in CheckInput) (string, error)
	ReleaseForBooking(ctx context.Context, booking *model.Booking) error
	InitializeRange(ctx context.Context, in InitInput) (int, error)
}

type availabilityService struct {
	repo     repository.AvailabilityRepository
	catalog  catalogrepo.CatalogRepository
	bookings OverlapCounter
	cfg      *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	catalog catalogrepo.CatalogRepository,
	bookings OverlapCounter,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:     repo,
		catalog:  catalog,
		bookings: bookings,
		cfg:      cfg,
	}
}

func (s *availabilityService) Check(ctx context.Context, in CheckInput) (*model.AvailabilityResult, error) {
	dates, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindRange(ctx, in.RoomTypeID, dates[0], dates[len(dates)-1].AddDate(0, 0, 1))
	if err != nil {
		s.cfg.Log.Error("Failed to load availability", "room_type_id", in.RoomTypeID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	if len(rows) == 0 {
		count, err := s.catalog.CountRooms(ctx, in.RoomTypeID, model.RoomStatusAvailable)
		if err != nil {
			return nil, apperrors.Internal("Failed to count rooms", err)
		}
		return &model.AvailabilityResult{
			RoomTypeID:       in.RoomTypeID,
			Available:        int(count) >= in.Required,
			TotalRooms:       int(count),
			AvailableRooms:   int(count),
			RequiredRooms:    in.Required,
			UnavailableDates: []string{},
			Source:           SourceRooms,
		}, nil
	}

	return evaluateCounters(in, dates, rows), nil
}

// evaluateCounters checks every night of the stay. A night without a counter
// row counts as unavailable.
func evaluateCounters(in CheckInput, dates []time.Time, rows []*model.RoomAvailability) *model.AvailabilityResult {
	byDate := make(map[string]*model.RoomAvailability, len(rows))
	totalRooms := 0
	for _, row := range rows {
		byDate[row.Date.UTC().Format(dateKeyLayout)] = row
		totalRooms = max(totalRooms, row.TotalRooms)
	}

	minAvailable := math.MaxInt
	unavailable := []string{}
	for _, date := range dates {
		key := date.Format(dateKeyLayout)
		row, ok := byDate[key]
		if !ok {
			minAvailable = 0
			unavailable = append(unavailable, key)
			continue
		}
		minAvailable = min(minAvailable, row.AvailableRooms)
		if row.AvailableRooms < in.Required {
			unavailable = append(unavailable, key)
		}
	}

	return &model.AvailabilityResult{
		RoomTypeID:       in.RoomTypeID,
		Available:        len(unavailable) == 0,
		TotalRooms:       totalRooms,
		AvailableRooms:   minAvailable,
		RequiredRooms:    in.Required,
		UnavailableDates: unavailable,
		Source:           SourceCounters,
	}
}

func (s *availabilityService) ReserveForBooking(ctx context.Context, in CheckInput) (string, error) {
	if in.Required < 1 {
		in.Required = 1
	}
	dates, err := NightDates(in.CheckIn, in.CheckOut)
	if err != nil {
		return "", apperrors.InvalidInput(err.Error())
	}

	rows, err := s.repo.FindRange(ctx, in.RoomTypeID, dates[0], dates[len(dates)-1].AddDate(0, 0, 1))
	if err != nil {
		return "", apperrors.Internal("Failed to check availability", err)
	}

	if len(rows) > 0 {
		matched, err := s.repo.Decrement(ctx, in.RoomTypeID, dates, in.Required)
		if err != nil {
			return "", apperrors.Internal("Failed to reserve availability", err)
		}
		if matched < int64(len(dates)) {
			return "", apperrors.Conflict(availabilityerrors.ErrUnavailable.Error())
		}
		return model.AvailabilityModeCounters, nil
	}

	capacity, err := s.catalog.CountRooms(ctx, in.RoomTypeID, model.RoomStatusAvailable)
	if err != nil {
		return "", apperrors.Internal("Failed to count rooms", err)
	}
	overlapping, err := s.bookings.CountOverlapping(ctx, in.RoomTypeID, in.CheckIn, in.CheckOut)
	if err != nil {
		return "", apperrors.Internal("Failed to check overlapping bookings", err)
	}
	if overlapping+int64(in.Required) > capacity {
		return "", apperrors.Conflict(availabilityerrors.ErrUnavailable.Error())
	}
	return model.AvailabilityModeRooms, nil
}

func (s *availabilityService) ReleaseForBooking(ctx context.Context, booking *model.Booking) error {
	if booking.AvailabilityMode != model.AvailabilityModeCounters {
		return nil
	}

	dates, err := NightDates(booking.CheckIn, booking.CheckOut)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if err := s.repo.Increment(ctx, booking.RoomTypeID, dates, 1); err != nil {
		return apperrors.Internal("Failed to release availability", err)
	}
	return nil
}

func (s *availabilityService) InitializeRange(ctx context.Context, in InitInput) (int, error) {
	if in.TotalRooms < 0 {
		return 0, apperrors.InvalidInput("total_rooms cannot be negative")
	}
	dates, err := NightDates(in.From, in.To)
	if err != nil {
		return 0, apperrors.InvalidInput("to must be after from")
	}

	roomType, err := s.findRoomType(ctx, in.RoomTypeID)
	if err != nil {
		return 0, err
	}
	hotelID := in.HotelID
	if hotelID == "" {
		hotelID = roomType.HotelID
	}

	if err := s.repo.UpsertRange(ctx, hotelID, roomType.ID, dates, in.TotalRooms); err != nil {
		s.cfg.Log.Error("Failed to initialize availability", "room_type_id", in.RoomTypeID, "error", err)
		return 0, apperrors.Internal("Failed to initialize availability", err)
	}

	s.cfg.Log.Info("Availability initialized",
		"room_type_id", roomType.ID,
		"from", dates[0].Format(dateKeyLayout),
		"nights", len(dates),
		"total_rooms", in.TotalRooms,
	)
	return len(dates), nil
}

func (s *availabilityService) prepare(ctx context.Context, in CheckInput) ([]time.Time, error) {
	if in.Required < 1 {
		return nil, apperrors.InvalidInput("rooms must be at least 1")
	}
	dates, err := NightDates(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if _, err := s.findRoomType(ctx, in.RoomTypeID); err != nil {
		return nil, err
	}
	return dates, nil
}

func (s *availabilityService) findRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	roomType, err := s.catalog.FindRoomType(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrRoomTypeNotFound) {
			return nil, apperrors.NotFoundWithID("RoomType", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room type ID format")
		}
		return nil, apperrors.Internal("Failed to load room type", err)
	}
	return roomType, nil
}

// NightDates lists the UTC midnight of every night in [checkIn, checkOut).
// A partial trailing day counts as a night.
func NightDates(checkIn, checkOut time.Time) ([]time.Time, error) {
	if !checkOut.After(checkIn) {
		return nil, availabilityerrors.ErrInvalidDateRange
	}
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))

	in := checkIn.UTC()
	start := time.Date(in.Year(), in.Month(), in.Day(), 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, nights)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates, nil
}
