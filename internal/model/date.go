package model

import (
	"encoding/json"
	"reflect"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

var dateType = reflect.TypeOf(Date{})

// Date is a calendar day. The wrapped time is always midnight UTC so that
// dates compare by day regardless of the zone they were taken in.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return NewDate(year, month, day)
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, errors.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) AddDays(days int) Date {
	return Date{d.Time.AddDate(0, 0, days)}
}

func (d Date) AddWeeks(weeks int) Date {
	return d.AddDays(7 * weeks)
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reports a bad value as a *json.UnmarshalTypeError so the
// decoder can tell which field it came from.
func (d *Date) UnmarshalJSON(b []byte) error {
	var value string
	if err := json.Unmarshal(b, &value); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: dateType}
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string " + strconv.Quote(value), Type: dateType}
	}
	*d = parsed
	return nil
}

// DatePtr is a small helper for optional date fields.
func DatePtr(d Date) *Date {
	return &d
}

// Clock tells what day it is.
type Clock func() Date

// NewClock reads now in loc. A nil now means time.Now.
func NewClock(loc *time.Location, now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	return func() Date {
		return DateOf(now().In(loc))
	}
}
