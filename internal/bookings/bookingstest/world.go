// Package bookingstest provides an in-memory stand-in for the booking
// collections. Transactions are serialized and roll back on error, which is
// the behavior the booking flow relies on from MongoDB.
package bookingstest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	availabilityrepo "hotelbook/internal/availability/repository"
	bookingserrors "hotelbook/internal/bookings/errors"
	bookingsrepo "hotelbook/internal/bookings/repository"
	catalogerrors "hotelbook/internal/catalog/errors"
	catalogrepo "hotelbook/internal/catalog/repository"
	pricingrepo "hotelbook/internal/pricing/repository"
	roomlockerrors "hotelbook/internal/roomlocks/errors"
	roomlockrepo "hotelbook/internal/roomlocks/repository"
	taxrepo "hotelbook/internal/taxes/repository"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	HotelID    = "64b7f0c2a1b2c3d4e5f60701"
	RoomTypeID = "64b7f0c2a1b2c3d4e5f60702"
)

var ErrInjected = errors.New("injected failure")

type state struct {
	bookings  map[string]*model.Booking
	lineItems []*model.LineItem
	locks     map[string]*model.RoomLock
	guards    map[string]int
	counters  map[string]*model.RoomAvailability
}

func (s *state) clone() *state {
	c := &state{
		bookings: make(map[string]*model.Booking, len(s.bookings)),
		locks:    make(map[string]*model.RoomLock, len(s.locks)),
		guards:   make(map[string]int, len(s.guards)),
		counters: make(map[string]*model.RoomAvailability, len(s.counters)),
	}
	for k, v := range s.bookings {
		b := *v
		c.bookings[k] = &b
	}
	for _, v := range s.lineItems {
		li := *v
		c.lineItems = append(c.lineItems, &li)
	}
	for k, v := range s.locks {
		l := *v
		c.locks[k] = &l
	}
	for k, v := range s.guards {
		c.guards[k] = v
	}
	for k, v := range s.counters {
		r := *v
		c.counters[k] = &r
	}
	return c
}

// World holds the catalog, configuration and booking state of one hotel.
type World struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state

	RoomType *model.RoomType
	Rooms    []string
	Rules    []*model.PricingRule
	Taxes    []*model.Tax
	Fees     []*model.Fee

	// FailLineItems makes the next line item insert fail.
	FailLineItems bool

	Events *RecordingPublisher
}

// NewWorld returns a hotel with one room type priced at 100 per night for up
// to two guests, the given physical rooms, one 10% and one 5% tax, and a
// fixed 25 cleaning fee.
func NewWorld(rooms ...string) *World {
	return &World{
		st: &state{
			bookings: map[string]*model.Booking{},
			locks:    map[string]*model.RoomLock{},
			guards:   map[string]int{},
			counters: map[string]*model.RoomAvailability{},
		},
		RoomType: &model.RoomType{ID: RoomTypeID, HotelID: HotelID, Name: "Deluxe King", BasePrice: 100, MaxGuests: 2},
		Rooms:    rooms,
		Taxes: []*model.Tax{
			{ID: "tax-1", Name: "Sales Tax", Percentage: 10, IsActive: true},
			{ID: "tax-2", Name: "Occupancy Tax", Percentage: 5, IsActive: true},
		},
		Fees: []*model.Fee{
			{ID: "fee-1", Name: "Cleaning Fee", FeeType: "cleaning", AmountType: model.AmountTypeFixed, Amount: 25, IsActive: true},
		},
		Events: &RecordingPublisher{},
	}
}

// SetCounters seeds per-night availability for [from, from+nights).
func (w *World) SetCounters(from time.Time, nights, total, available int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < nights; i++ {
		d := from.AddDate(0, 0, i)
		w.st.counters[d.Format("2006-01-02")] = &model.RoomAvailability{
			HotelID: HotelID, RoomTypeID: RoomTypeID, Date: d, TotalRooms: total, AvailableRooms: available,
		}
	}
}

func (w *World) Counter(date time.Time) *model.RoomAvailability {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.st.counters[date.Format("2006-01-02")]; ok {
		copied := *c
		return &copied
	}
	return nil
}

func (w *World) BookingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.st.bookings)
}

func (w *World) LineItemsFor(bookingID string) []*model.LineItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*model.LineItem
	for _, li := range w.st.lineItems {
		if li.BookingID == bookingID {
			out = append(out, li)
		}
	}
	return out
}

func (w *World) ActiveLocks() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, l := range w.st.locks {
		if l.Status == model.LockStatusActive {
			n++
		}
	}
	return n
}

func (w *World) BookingRepository() bookingsrepo.BookingRepository {
	return &bookingRepo{w}
}

func (w *World) LineItemRepository() bookingsrepo.LineItemRepository {
	return &lineItemRepo{w}
}

func (w *World) GuardRepository() bookingsrepo.GuardRepository {
	return &guardRepo{w}
}

func (w *World) CatalogRepository() catalogrepo.CatalogRepository {
	return &catalog{w}
}

func (w *World) AvailabilityRepository() availabilityrepo.AvailabilityRepository {
	return &availabilityRepo{w}
}

func (w *World) RoomLockRepository() roomlockrepo.RoomLockRepository {
	return &lockRepo{w}
}

func (w *World) PricingRuleRepository() pricingrepo.PricingRuleRepository {
	return &ruleRepo{w}
}

func (w *World) TaxRepository() taxrepo.TaxRepository {
	return &taxRepo{w}
}

type bookingRepo struct{ w *World }

func (r *bookingRepo) Create(_ context.Context, b *model.Booking) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	now := time.Now().UTC().Truncate(time.Millisecond)
	b.ID = primitive.NewObjectID().Hex()
	b.CreatedAt, b.UpdatedAt = now, now
	copied := *b
	r.w.st.bookings[b.ID] = &copied
	return nil
}

func (r *bookingRepo) FindByID(_ context.Context, id string) (*model.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	b, ok := r.w.st.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *bookingRepo) userBookings(userID string) []*model.Booking {
	var out []*model.Booking
	for _, b := range r.w.st.bookings {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.After(out[j].CheckIn) })
	return out
}

func (r *bookingRepo) FindByUser(_ context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	all := r.userBookings(userID)
	if offset >= int64(len(all)) {
		return []*model.Booking{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *bookingRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	return int64(len(r.userBookings(userID))), nil
}

func (r *bookingRepo) MarkCancelled(_ context.Context, id string, now time.Time) (bool, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	b, ok := r.w.st.bookings[id]
	if !ok || b.Status != model.BookingStatusConfirmed {
		return false, nil
	}
	b.Status = model.BookingStatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return true, nil
}

func (r *bookingRepo) CountOverlapping(_ context.Context, roomTypeID string, checkIn, checkOut time.Time) (int64, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	var n int64
	for _, b := range r.w.st.bookings {
		if b.RoomTypeID != roomTypeID || b.Status == model.BookingStatusCancelled {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			n++
		}
	}
	return n, nil
}

// ExecuteTransaction runs fn alone and restores every collection if it fails.
func (r *bookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.w.txMu.Lock()
	defer r.w.txMu.Unlock()

	r.w.mu.Lock()
	snapshot := r.w.st.clone()
	r.w.mu.Unlock()

	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		r.w.mu.Lock()
		r.w.st = snapshot
		r.w.mu.Unlock()
		return err
	}
	return nil
}

type lineItemRepo struct{ w *World }

func (r *lineItemRepo) InsertMany(_ context.Context, bookingID string, items []*model.LineItem) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	if r.w.FailLineItems {
		r.w.FailLineItems = false
		return ErrInjected
	}
	for _, item := range items {
		item.BookingID = bookingID
		copied := *item
		r.w.st.lineItems = append(r.w.st.lineItems, &copied)
	}
	return nil
}

func (r *lineItemRepo) FindByBooking(_ context.Context, bookingID string) ([]*model.LineItem, error) {
	return r.w.LineItemsFor(bookingID), nil
}

type guardRepo struct{ w *World }

func (r *guardRepo) Bump(_ context.Context, roomTypeID string) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	r.w.st.guards[roomTypeID]++
	return nil
}

type catalog struct{ w *World }

func (c *catalog) FindRoomType(_ context.Context, id string) (*model.RoomType, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}
	if id != c.w.RoomType.ID {
		return nil, catalogerrors.ErrRoomTypeNotFound
	}
	copied := *c.w.RoomType
	return &copied, nil
}

func (c *catalog) ListRoomIDs(_ context.Context, roomTypeID string, _ string) ([]string, error) {
	if roomTypeID != c.w.RoomType.ID {
		return nil, nil
	}
	return slices.Clone(c.w.Rooms), nil
}

func (c *catalog) CountRooms(_ context.Context, roomTypeID string, _ string) (int64, error) {
	if roomTypeID != c.w.RoomType.ID {
		return 0, nil
	}
	return int64(len(c.w.Rooms)), nil
}

type availabilityRepo struct{ w *World }

func (r *availabilityRepo) FindRange(_ context.Context, roomTypeID string, from, to time.Time) ([]*model.RoomAvailability, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	var out []*model.RoomAvailability
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if row, ok := r.w.st.counters[d.Format("2006-01-02")]; ok && row.RoomTypeID == roomTypeID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *availabilityRepo) Decrement(_ context.Context, roomTypeID string, dates []time.Time, n int) (int64, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	var matched int64
	for _, d := range dates {
		if row, ok := r.w.st.counters[d.Format("2006-01-02")]; ok && row.RoomTypeID == roomTypeID && row.AvailableRooms >= n {
			row.AvailableRooms -= n
			matched++
		}
	}
	return matched, nil
}

func (r *availabilityRepo) Increment(_ context.Context, roomTypeID string, dates []time.Time, n int) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	for _, d := range dates {
		if row, ok := r.w.st.counters[d.Format("2006-01-02")]; ok && row.RoomTypeID == roomTypeID {
			row.AvailableRooms = min(row.TotalRooms, row.AvailableRooms+n)
		}
	}
	return nil
}

func (r *availabilityRepo) UpsertRange(_ context.Context, hotelID, roomTypeID string, dates []time.Time, totalRooms int) error {
	for _, d := range dates {
		r.w.SetCounters(d, 1, totalRooms, totalRooms)
	}
	return nil
}

type lockRepo struct{ w *World }

func (r *lockRepo) Insert(_ context.Context, lock *model.RoomLock) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	for _, l := range r.w.st.locks {
		if l.RoomID == lock.RoomID && l.Status == model.LockStatusActive {
			return fmt.Errorf("%w: %s", roomlockerrors.ErrLockHeld, lock.RoomID)
		}
	}
	copied := *lock
	r.w.st.locks[lock.ID] = &copied
	return nil
}

func (r *lockRepo) FindByID(_ context.Context, id string) (*model.RoomLock, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	l, ok := r.w.st.locks[id]
	if !ok {
		return nil, roomlockerrors.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *lockRepo) LockedRoomIDs(_ context.Context, roomIDs []string) ([]string, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	var out []string
	for _, l := range r.w.st.locks {
		if l.Status == model.LockStatusActive && slices.Contains(roomIDs, l.RoomID) {
			out = append(out, l.RoomID)
		}
	}
	return out, nil
}

func (r *lockRepo) ExpireStale(_ context.Context, roomIDs []string, now time.Time) (int64, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	var n int64
	for _, l := range r.w.st.locks {
		if l.Status != model.LockStatusActive || l.LockedUntil.After(now) {
			continue
		}
		if len(roomIDs) > 0 && !slices.Contains(roomIDs, l.RoomID) {
			continue
		}
		l.Status = model.LockStatusExpired
		n++
	}
	return n, nil
}

func (r *lockRepo) Release(_ context.Context, id, userID string, now time.Time) (bool, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	l, ok := r.w.st.locks[id]
	if !ok || l.LockedByUserID != userID || l.Status != model.LockStatusActive {
		return false, nil
	}
	l.Status = model.LockStatusReleased
	l.ReleasedAt = &now
	return true, nil
}

type ruleRepo struct{ w *World }

func (r *ruleRepo) Create(_ context.Context, rule *model.PricingRule) error {
	r.w.Rules = append(r.w.Rules, rule)
	return nil
}

func (r *ruleRepo) FindActive(_ context.Context, _, _ string) ([]*model.PricingRule, error) {
	return r.w.Rules, nil
}

type taxRepo struct{ w *World }

func (r *taxRepo) FindActiveTaxes(context.Context) ([]*model.Tax, error) {
	return r.w.Taxes, nil
}

func (r *taxRepo) FindActiveFees(context.Context) ([]*model.Fee, error) {
	return r.w.Fees, nil
}

func (r *taxRepo) UpsertTax(context.Context, *model.Tax) error {
	return nil
}

func (r *taxRepo) UpsertFee(context.Context, *model.Fee) error {
	return nil
}

// RecordingPublisher keeps every published booking event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*model.BookingEvent
}

func (p *RecordingPublisher) Publish(_ context.Context, event *model.BookingEvent, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Events() []*model.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}
