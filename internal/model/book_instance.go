package model

import (
	"github.com/pkg/errors"
)

// LoanStatus is the lending state of a physical copy.
type LoanStatus string

const (
	LoanStatusMaintenance LoanStatus = "maintenance"
	LoanStatusOnLoan      LoanStatus = "on_loan"
	LoanStatusAvailable   LoanStatus = "available"
	LoanStatusReserved    LoanStatus = "reserved"
)

var validLoanStatuses = map[LoanStatus]bool{
	LoanStatusMaintenance: true,
	LoanStatusOnLoan:      true,
	LoanStatusAvailable:   true,
	LoanStatusReserved:    true,
}

func (s LoanStatus) IsValid() bool {
	return validLoanStatuses[s]
}

func (s LoanStatus) String() string {
	return string(s)
}

// ErrInvalidTransition is returned when a lending action does not apply to
// the copy's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// BookInstance is a physical copy of a book that can be borrowed.
type BookInstance struct {
	ID      string `json:"id"`
	BookID  int    `json:"book_id"`
	Imprint string `json:"imprint"`
	// DueBack and BorrowerID are both set while the copy is on loan.
	DueBack    *Date      `json:"due_back"`
	BorrowerID *int32     `json:"borrower_id"`
	Status     LoanStatus `json:"status"`
	CreatedTs  int64      `json:"created_ts"`
	UpdatedTs  int64      `json:"updated_ts"`

	// Joined for listings.
	BookTitle        string `json:"book_title,omitempty"`
	BorrowerUsername string `json:"borrower,omitempty"`
}

// IsOverdue reports whether the copy should have been back before today.
func (b *BookInstance) IsOverdue(today Date) bool {
	return b.DueBack != nil && b.DueBack.Before(today)
}

// Checkout lends the copy. Only copies on the shelf or held for a patron can
// go out; due must already be validated against the loan window.
func (b *BookInstance) Checkout(borrowerID int32, due Date) error {
	if b.Status != LoanStatusAvailable && b.Status != LoanStatusReserved {
		return errors.Wrapf(ErrInvalidTransition, "cannot check out a copy in status %s", b.Status)
	}
	b.Status = LoanStatusOnLoan
	b.BorrowerID = &borrowerID
	b.DueBack = &due
	return nil
}

// Renew moves the due date of a copy that is on loan.
func (b *BookInstance) Renew(due Date) error {
	if b.Status != LoanStatusOnLoan {
		return errors.Wrapf(ErrInvalidTransition, "cannot renew a copy in status %s", b.Status)
	}
	b.DueBack = &due
	return nil
}

// Return puts the copy into status and always forgets the borrower and the
// due date, whatever the target status is.
func (b *BookInstance) Return(status LoanStatus) error {
	if !status.IsValid() || status == LoanStatusOnLoan {
		return errors.Wrapf(ErrInvalidTransition, "cannot return a copy into status %s", status)
	}
	b.Status = status
	b.BorrowerID = nil
	b.DueBack = nil
	return nil
}

// Reserve holds an available copy, optionally for a given patron.
func (b *BookInstance) Reserve(holderID *int32) error {
	if b.Status != LoanStatusAvailable {
		return errors.Wrapf(ErrInvalidTransition, "cannot reserve a copy in status %s", b.Status)
	}
	b.Status = LoanStatusReserved
	b.BorrowerID = holderID
	b.DueBack = nil
	return nil
}

type FindBookInstance struct {
	ID         *string
	BookID     *int
	BorrowerID *int32
	Status     *LoanStatus
	// DueBefore keeps copies due strictly before the date.
	DueBefore *Date
	DueBack   *Date
	// OrderBy is "book" for title order, anything else orders by due_back.
	OrderBy string

	Limit  *int
	Offset *int
}

type BookInstanceRequest struct {
	BookID  int    `json:"book_id" validate:"required,gt=0"`
	Imprint string `json:"imprint" validate:"required,max=200"`
	// Status is only honoured on create; lending actions own it afterwards.
	Status LoanStatus `json:"status" validate:"omitempty,oneof=maintenance available reserved"`
}

type RenewBookRequest struct {
	RenewalDate *Date `json:"renewal_date" validate:"required"`
}

// RenewBookForm is what GET on the renew route answers with.
type RenewBookForm struct {
	BookInstance *BookInstance `json:"book_instance"`
	RenewalDate  Date          `json:"renewal_date"`
}

type ReturnBookRequest struct {
	Status LoanStatus `json:"status" validate:"omitempty,oneof=maintenance available reserved"`
}

type ReturnBookForm struct {
	BookInstance *BookInstance `json:"book_instance"`
	Status       LoanStatus    `json:"status"`
}

type CheckoutBookRequest struct {
	BorrowerID int32 `json:"borrower" validate:"required,gt=0"`
	DueBack    *Date `json:"due_back" validate:"required"`
}

type ReserveBookRequest struct {
	BorrowerID *int32 `json:"borrower" validate:"omitempty,gt=0"`
}

// LoanView decorates a copy with the derived overdue flag.
type LoanView struct {
	*BookInstance
	IsOverdue bool `json:"is_overdue"`
}

func NewLoanViews(list []*BookInstance, today Date) []*LoanView {
	views := make([]*LoanView, 0, len(list))
	for _, instance := range list {
		views = append(views, &LoanView{BookInstance: instance, IsOverdue: instance.IsOverdue(today)})
	}
	return views
}
