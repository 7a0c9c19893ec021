package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"hotelbook/pkg/model"
)

const (
	headerUserID         = "X-User-ID"
	headerIdempotencyKey = "Idempotency-Key"
)

type Metadata struct {
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

// BookingClient talks to the bookings service on behalf of a single user.
type BookingClient struct {
	httpClient *HttpClient
	userID     string
}

func NewBookingClient(baseUrl, userID string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
		userID:     userID,
	}
}

func (c *BookingClient) headers(idempotencyKey string) map[string]string {
	h := map[string]string{headerUserID: c.userID}
	if idempotencyKey != "" {
		h[headerIdempotencyKey] = idempotencyKey
	}
	return h
}

func (c *BookingClient) Create(ctx context.Context, req *model.CreateBookingRequest, idempotencyKey string) (*Response, error) {
	return c.httpClient.Post(ctx, "/api/v1/bookings", req, c.headers(idempotencyKey))
}

func (c *BookingClient) Cancel(ctx context.Context, id, idempotencyKey string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/cancel"
	return c.httpClient.Post(ctx, path, nil, c.headers(idempotencyKey))
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id)
	return c.httpClient.Get(ctx, path, c.headers(""))
}

func (c *BookingClient) List(ctx context.Context, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.Get(ctx, path, c.headers(""))
}

func (c *BookingClient) CheckAvailability(ctx context.Context, roomTypeID, checkIn, checkOut string, rooms int) (*Response, error) {
	q := url.Values{}
	q.Set("room_type_id", roomTypeID)
	q.Set("check_in", checkIn)
	q.Set("check_out", checkOut)
	if rooms > 0 {
		q.Set("rooms", strconv.Itoa(rooms))
	}
	return c.httpClient.Get(ctx, "/api/v1/availability?"+q.Encode(), nil)
}

func decodeData(resp *Response, target any) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper: %w", err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data: %w", err)
	}
	return nil
}

func (c *BookingClient) DecodeCreateResult(resp *Response) (*model.CreateBookingResult, error) {
	var result model.CreateBookingResult
	if err := decodeData(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) DecodeAvailability(resp *Response) (*model.AvailabilityResult, error) {
	var result model.AvailabilityResult
	if err := decodeData(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
		Metadata
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp: %w", err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list: %w", err)
	}

	return bookings, &wrapper.Metadata, nil
}
