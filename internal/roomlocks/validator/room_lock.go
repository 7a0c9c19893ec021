package validator

import (
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
	"hotelbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type RoomLockValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRoomLockValidator(log *logger.Logger) *RoomLockValidator {
	return &RoomLockValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *RoomLockValidator) Validate(req *model.AcquireLockRequest) error {
	return validation.Struct(v.validate, req)
}
