package service

import (
	"context"
	"errors"
	"time"

	availabilityservice "hotelbook/internal/availability/service"
	bookingserrors "hotelbook/internal/bookings/errors"
	"hotelbook/internal/bookings/events"
	"hotelbook/internal/bookings/repository"
	"hotelbook/internal/bookings/validator"
	catalogrepo "hotelbook/internal/catalog/repository"
	pricingservice "hotelbook/internal/pricing/service"
	roomlockservice "hotelbook/internal/roomlocks/service"
	taxservice "hotelbook/internal/taxes/service"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
	"hotelbook/pkg/sanitizer"
	"hotelbook/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const publishTimeout = 5 * time.Second

// RequestMeta carries caller-supplied identifiers that travel with a booking
// without affecting its price or availability.
type RequestMeta struct {
	IdempotencyKey string
	CorrelationID  string
}

type BookingService interface {
	Create(ctx context.Context, userID string, req *model.CreateBookingRequest, meta RequestMeta) (*model.CreateBookingResult, error)
	Cancel(ctx context.Context, id, userID string, meta RequestMeta) (*model.Booking, error)
	GetByID(ctx context.Context, id, userID string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
}

type Dependencies struct {
	Bookings     repository.BookingRepository
	LineItems    repository.LineItemRepository
	Guards       repository.GuardRepository
	Catalog      catalogrepo.CatalogRepository
	Pricing      pricingservice.PricingService
	Taxes        taxservice.TaxService
	Availability availabilityservice.AvailabilityService
	Locks        roomlockservice.RoomLockService
	Events       events.Publisher
	Validator    *validator.BookingValidator
}

type bookingService struct {
	repo         repository.BookingRepository
	lineItems    repository.LineItemRepository
	guards       repository.GuardRepository
	catalog      catalogrepo.CatalogRepository
	pricing      pricingservice.PricingService
	taxes        taxservice.TaxService
	availability availabilityservice.AvailabilityService
	locks        roomlockservice.RoomLockService
	events       events.Publisher
	validator    *validator.BookingValidator
	cfg          *config.Config
}

func NewBookingService(deps Dependencies, cfg *config.Config) BookingService {
	return &bookingService{
		repo:         deps.Bookings,
		lineItems:    deps.LineItems,
		guards:       deps.Guards,
		catalog:      deps.Catalog,
		pricing:      deps.Pricing,
		taxes:        deps.Taxes,
		availability: deps.Availability,
		locks:        deps.Locks,
		events:       deps.Events,
		validator:    deps.Validator,
		cfg:          cfg,
	}
}

// Create prices the stay outside the transaction, then re-checks capacity,
// locks a room and persists the booking with its line items atomically.
func (s *bookingService) Create(ctx context.Context, userID string, req *model.CreateBookingRequest, meta RequestMeta) (*model.CreateBookingResult, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("User ID is required to create a booking")
	}

	req = sanitizeCreateRequest(req)
	stay, err := s.validator.ValidateCreate(req)
	if err != nil {
		return nil, validation.ToAppError("Booking validation failed", err)
	}

	quote, err := s.pricing.Quote(ctx, pricingservice.QuoteInput{
		HotelID:    stay.HotelID,
		RoomTypeID: stay.RoomTypeID,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Guests:     stay.Guests,
	})
	if err != nil {
		return nil, err
	}

	breakdown, err := s.taxes.Calculate(ctx, taxservice.TaxInput{
		BaseAmount: quote.Subtotal,
		Nights:     quote.TotalNights,
	})
	if err != nil {
		return nil, err
	}

	candidates, err := s.lockCandidates(ctx, stay.RoomTypeID)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The driver may re-run this function, so everything it produces is rebuilt.
		booking = s.newBooking(userID, stay, quote, breakdown, meta.IdempotencyKey)

		if err := s.guards.Bump(sessCtx, stay.RoomTypeID); err != nil {
			return err
		}

		mode, err := s.availability.ReserveForBooking(sessCtx, availabilityservice.CheckInput{
			RoomTypeID: stay.RoomTypeID,
			CheckIn:    stay.CheckIn,
			CheckOut:   stay.CheckOut,
			Required:   1,
		})
		if err != nil {
			return err
		}
		booking.AvailabilityMode = mode

		lock, err := s.locks.AcquireAny(sessCtx, roomlockservice.AcquireAnyInput{
			HotelID:    stay.HotelID,
			UserID:     userID,
			Candidates: candidates,
			LockType:   model.LockTypeBooking,
			TTL:        s.cfg.RoomLockTTL,
		})
		if err != nil {
			return err
		}

		if err := s.validator.ValidateBooking(booking); err != nil {
			return validation.ToAppError("Booking validation failed", err)
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return err
		}
		if err := s.lineItems.InsertMany(sessCtx, booking.ID, breakdown.LineItems()); err != nil {
			return err
		}

		return s.locks.Release(sessCtx, lock.ID, userID)
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.Internal("Failed to create booking", err)
		}
		s.cfg.Log.Warn("Booking not created",
			"user_id", userID,
			"room_type_id", stay.RoomTypeID,
			"check_in", stay.CheckIn,
			"check_out", stay.CheckOut,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", userID,
		"room_type_id", booking.RoomTypeID,
		"nights", booking.Nights,
		"total_amount", booking.TotalAmount,
		"availability_mode", booking.AvailabilityMode,
	)
	s.publish(ctx, booking, model.EventBookingCreated, meta.CorrelationID)

	return &model.CreateBookingResult{
		Booking:   booking,
		Pricing:   quote,
		Taxes:     breakdown,
		LineItems: breakdown.LineItems(),
		TotalPaid: booking.TotalAmount,
	}, nil
}

// Cancel releases the capacity a booking consumed. Cancelling an already
// cancelled booking returns it unchanged.
func (s *bookingService) Cancel(ctx context.Context, id, userID string, meta RequestMeta) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return booking, nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	cancelled := false
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		cancelled = false
		if err := s.guards.Bump(sessCtx, booking.RoomTypeID); err != nil {
			return err
		}

		ok, err := s.repo.MarkCancelled(sessCtx, booking.ID, now)
		if err != nil || !ok {
			return err
		}
		cancelled = true

		return s.availability.ReleaseForBooking(sessCtx, booking)
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.Internal("Failed to cancel booking", err)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, err
	}

	booking.Status = model.BookingStatusCancelled
	if cancelled {
		booking.CancelledAt = &now
		booking.UpdatedAt = now
		s.cfg.Log.Info("Booking cancelled", "id", booking.ID, "user_id", userID)
		s.publish(ctx, booking, model.EventBookingCancelled, meta.CorrelationID)
	}
	return booking, nil
}

// GetByID hides bookings of other users behind a not found error.
func (s *bookingService) GetByID(ctx context.Context, id, userID string) (*model.Booking, error) {
	switch {
	case userID == "":
		return nil, apperrors.Unauthorized("User ID is required")
	case id == "":
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return nil, apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrNotFound):
		return nil, apperrors.NotFoundWithID("Booking", id)
	case err != nil:
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	case booking.UserID != userID:
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.Unauthorized("User ID is required")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		total    int64
		bookings []*model.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountByUser(gctx, userID)
		if err != nil {
			return apperrors.Internal("Failed to count bookings", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		page, err := s.repo.FindByUser(gctx, userID, limit, offset)
		if err != nil {
			return apperrors.Internal("Failed to retrieve bookings", err)
		}
		bookings = page
		return nil
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", err)
		return nil, 0, err
	}
	return bookings, total, nil
}

// lockCandidates lists the rooms a booking may lock. A room type without
// physical rooms is locked as a whole.
func (s *bookingService) lockCandidates(ctx context.Context, roomTypeID string) ([]string, error) {
	rooms, err := s.catalog.ListRoomIDs(ctx, roomTypeID, model.RoomStatusAvailable)
	if err != nil {
		return nil, apperrors.Internal("Failed to list rooms", err)
	}
	if len(rooms) == 0 {
		return []string{roomTypeID}, nil
	}
	return rooms, nil
}

func (s *bookingService) newBooking(userID string, stay *validator.Stay, quote *model.PriceQuote, breakdown *model.TaxBreakdown, idempotencyKey string) *model.Booking {
	return &model.Booking{
		UserID:         userID,
		HotelID:        stay.HotelID,
		RoomTypeID:     stay.RoomTypeID,
		CheckIn:        stay.CheckIn,
		CheckOut:       stay.CheckOut,
		Guests:         stay.Guests,
		Nights:         quote.TotalNights,
		RoomRate:       quote.RoomRate,
		Subtotal:       quote.Subtotal,
		TotalTaxes:     breakdown.TotalTaxes,
		TotalFees:      breakdown.TotalFees,
		TotalAmount:    breakdown.TotalWithTaxes,
		Currency:       s.cfg.Currency,
		Status:         model.BookingStatusConfirmed,
		IdempotencyKey: idempotencyKey,
	}
}

func (s *bookingService) publish(ctx context.Context, booking *model.Booking, eventType, correlationID string) {
	if s.events == nil {
		return
	}

	event := &model.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		HotelID:    booking.HotelID,
		RoomTypeID: booking.RoomTypeID,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Total:      booking.TotalAmount,
		Currency:   booking.Currency,
		Status:     booking.Status,
		OccurredAt: time.Now().UTC(),
	}
	pubCtx, cancel := publishContext(ctx)
	defer cancel()
	if err := s.events.Publish(pubCtx, event, correlationID); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

// publishContext survives the caller cancelling but never outlives the
// caller's deadline, and is capped at publishTimeout.
func publishContext(ctx context.Context) (context.Context, context.CancelFunc) {
	budget := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		budget = min(budget, time.Until(deadline))
	}
	return context.WithTimeout(context.WithoutCancel(ctx), budget)
}

// sanitizeCreateRequest returns a normalized copy and leaves req untouched.
func sanitizeCreateRequest(req *model.CreateBookingRequest) *model.CreateBookingRequest {
	clean := *req
	clean.HotelID = sanitizer.NormalizeID(req.HotelID)
	clean.RoomTypeID = sanitizer.NormalizeID(req.RoomTypeID)
	clean.CheckIn = sanitizer.TrimAndNormalize(req.CheckIn)
	clean.CheckOut = sanitizer.TrimAndNormalize(req.CheckOut)
	return &clean
}
