package validator

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-library/internal/model"
)

func TestValidateDateWindow(t *testing.T) {
	today := model.NewDate(2024, time.January, 10)

	cases := []struct {
		date model.Date
		err  error
	}{
		{model.NewDate(2024, time.January, 10), nil},
		{model.NewDate(2024, time.January, 9), ErrDateInPast},
		{model.NewDate(2023, time.December, 31), ErrDateInPast},
		{model.NewDate(2024, time.February, 7), nil},
		{model.NewDate(2024, time.February, 8), ErrDateTooFarAhead},
		{model.NewDate(2024, time.February, 10), ErrDateTooFarAhead},
		{model.NewDate(2024, time.January, 31), nil},
	}
	for _, c := range cases {
		got, err := ValidateDateWindow(today, c.date, 4)
		if c.err == nil {
			require.NoError(t, err, c.date)
			assert.True(t, got.Equal(c.date), c.date)
			continue
		}
		assert.True(t, errors.Is(err, c.err), "%s: got %v, want %v", c.date, err, c.err)
	}
}

func TestValidateDateWindowOtherLimits(t *testing.T) {
	today := model.NewDate(2024, time.February, 26)

	_, err := ValidateDateWindow(today, model.NewDate(2024, time.March, 4), 1)
	assert.NoError(t, err, "leap day is counted")
	_, err = ValidateDateWindow(today, model.NewDate(2024, time.March, 5), 1)
	assert.ErrorIs(t, err, ErrDateTooFarAhead)
	_, err = ValidateDateWindow(today, today, 0)
	assert.NoError(t, err)
}

func TestRenewRequestMessages(t *testing.T) {
	today := model.NewDate(2024, time.January, 10)
	cases := map[string]string{
		"2024-01-09": "Invalid date - in past",
		"2024-02-10": "Invalid date - more than 4 weeks ahead",
		"2024-02-07": "",
		"2024-01-10": "",
	}
	for value, want := range cases {
		date, err := model.ParseDate(value)
		require.NoError(t, err)

		err = ValidateRenewRequest(&model.RenewBookRequest{RenewalDate: &date}, today, 4)
		if want == "" {
			assert.NoError(t, err, value)
			continue
		}
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), value)
		assert.Equal(t, want, verr.Fields["renewal_date"], value)
	}

	err := ValidateRenewRequest(&model.RenewBookRequest{}, today, 4)
	verr, ok := AsValidationError(errors.Wrap(err, "renew"))
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "renewal_date")

	_, ok = AsValidationError(errors.New("storage down"))
	assert.False(t, ok)
}
