package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"hotelbook/internal/bookings/events"
	"hotelbook/internal/bookings/service"
	"hotelbook/internal/bookings/validator"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/kafka"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/middleware"
	"hotelbook/pkg/model"
)

// CommandProcessor applies booking commands read from Kafka. Commands share
// the idempotency gate with the HTTP API, keyed by the idempotency-key header
// or, when absent, by the event id, so a redelivered command never books twice.
type CommandProcessor struct {
	bookings  service.BookingService
	gate      middleware.IdempotencyGate
	validator *validator.BookingValidator
	events    events.Publisher
	log       *logger.Logger
}

func NewCommandProcessor(
	bookings service.BookingService,
	gate middleware.IdempotencyGate,
	validator *validator.BookingValidator,
	events events.Publisher,
	log *logger.Logger,
) *CommandProcessor {
	return &CommandProcessor{
		bookings:  bookings,
		gate:      gate,
		validator: validator,
		events:    events,
		log:       log,
	}
}

// Handle is a kafka.MessageHandler.
func (p *CommandProcessor) Handle(ctx context.Context, msg kafka.Message) error {
	var cmd model.BookingCommand
	if err := msg.DecodeValue(&cmd); err != nil {
		return kafka.NewPermanentError("deserialization failed", err)
	}
	if cmd.UserID == "" {
		cmd.UserID = msg.GetUserID()
	}
	if err := p.validator.ValidateCommand(&cmd); err != nil {
		return kafka.NewPermanentError("invalid message", err)
	}

	key := msg.GetIdempotencyKey()
	if key == "" {
		key = msg.GetEventID()
	}
	meta := service.RequestMeta{IdempotencyKey: key, CorrelationID: msg.GetCorrelationID()}

	if key == "" {
		_, status, err := p.execute(ctx, &cmd, meta)
		return p.outcome(ctx, &cmd, meta, status, err)
	}

	replay, err := p.gate.Begin(ctx, key, "kafka "+cmd.Type, commandHash(&cmd, msg.Value))
	if err != nil {
		if !isRetryable(err) {
			p.reject(ctx, &cmd, meta, err)
			return kafka.NewBusinessError("command refused", err)
		}
		return err
	}
	if replay != nil {
		p.log.Info("Booking command already processed",
			"type", cmd.Type,
			"idempotency_key", key,
			"status", replay.Status,
		)
		return nil
	}

	body, status, err := p.execute(ctx, &cmd, meta)
	gateCtx := context.WithoutCancel(ctx)
	switch {
	case err == nil:
		if gateErr := p.gate.Complete(gateCtx, key, status, body); gateErr != nil {
			p.log.Error("Failed to record command outcome", "idempotency_key", key, "error", gateErr)
		}
	case isRetryable(err):
		if gateErr := p.gate.Abandon(gateCtx, key); gateErr != nil {
			p.log.Error("Failed to abandon idempotency key", "idempotency_key", key, "error", gateErr)
		}
	default:
		if gateErr := p.gate.Fail(gateCtx, key, status, body); gateErr != nil {
			p.log.Error("Failed to record command outcome", "idempotency_key", key, "error", gateErr)
		}
	}

	return p.outcome(ctx, &cmd, meta, status, err)
}

// execute returns the JSON a client would have received over HTTP.
func (p *CommandProcessor) execute(ctx context.Context, cmd *model.BookingCommand, meta service.RequestMeta) ([]byte, int, error) {
	var result any
	var err error
	status := http.StatusOK

	switch cmd.Type {
	case model.CommandCreateBooking:
		result, err = p.bookings.Create(ctx, cmd.UserID, cmd.Create, meta)
		status = http.StatusCreated
	case model.CommandCancelBooking:
		result, err = p.bookings.Cancel(ctx, cmd.BookingID, cmd.UserID, meta)
	}

	if err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr == nil {
			appErr = apperrors.Internal("Failed to process booking command", err)
		}
		return appErr.ToJSON(), appErr.StatusCode(), appErr
	}

	body, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return nil, http.StatusInternalServerError, apperrors.Internal("Failed to encode command result", marshalErr)
	}
	return body, status, nil
}

func (p *CommandProcessor) outcome(ctx context.Context, cmd *model.BookingCommand, meta service.RequestMeta, status int, err error) error {
	if err == nil {
		p.log.Info("Booking command applied", "type", cmd.Type, "user_id", cmd.UserID, "status", status)
		return nil
	}
	if isRetryable(err) {
		return err
	}
	p.reject(ctx, cmd, meta, err)
	return kafka.NewBusinessError("command rejected", err)
}

func (p *CommandProcessor) reject(ctx context.Context, cmd *model.BookingCommand, meta service.RequestMeta, err error) {
	event := &model.BookingEvent{
		Type:       model.EventBookingRejected,
		BookingID:  cmd.BookingID,
		UserID:     cmd.UserID,
		Error:      err.Error(),
		OccurredAt: time.Now().UTC(),
	}
	if appErr := apperrors.AsAppError(err); appErr != nil {
		event.Error = appErr.Message
		event.ErrorCode = appErr.Code
	}
	if cmd.Create != nil {
		event.HotelID = cmd.Create.HotelID
		event.RoomTypeID = cmd.Create.RoomTypeID
	}

	p.log.Warn("Booking command rejected",
		"type", cmd.Type,
		"user_id", cmd.UserID,
		"idempotency_key", meta.IdempotencyKey,
		"error", err,
	)
	if pubErr := p.events.Publish(context.WithoutCancel(ctx), event, meta.CorrelationID); pubErr != nil {
		p.log.Warn("Failed to publish rejection event", "error", pubErr)
	}
}

func isRetryable(err error) bool {
	appErr := apperrors.AsAppError(err)
	return appErr != nil && appErr.Retryable()
}

func commandHash(cmd *model.BookingCommand, value []byte) string {
	h := sha256.New()
	h.Write([]byte(cmd.UserID))
	h.Write([]byte{0})
	h.Write(value)
	return hex.EncodeToString(h.Sum(nil))
}
