package validator

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/model"
)

var (
	ErrDateInPast      = errors.New("date is in the past")
	ErrDateTooFarAhead = errors.New("date is too far ahead")
)

// ValidateDateWindow accepts date when today <= date <= today + maxWeeks.
// Both bounds are inclusive and compared by calendar day.
func ValidateDateWindow(today, date model.Date, maxWeeks int) (model.Date, error) {
	if date.Before(today) {
		return model.Date{}, errors.Wrapf(ErrDateInPast, "%s is before %s", date, today)
	}
	if limit := today.AddWeeks(maxWeeks); date.After(limit) {
		return model.Date{}, errors.Wrapf(ErrDateTooFarAhead, "%s is after %s", date, limit)
	}
	return date, nil
}

// dateFieldError turns a window failure into the message shown next to the field.
func dateFieldError(field string, err error, maxWeeks int) error {
	switch {
	case errors.Is(err, ErrDateInPast):
		return NewFieldError(field, "Invalid date - in past")
	case errors.Is(err, ErrDateTooFarAhead):
		return NewFieldError(field, fmt.Sprintf("Invalid date - more than %d weeks ahead", maxWeeks))
	}
	return err
}
