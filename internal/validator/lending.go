package validator

import (
	"context"

	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
)

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// ValidateRenewRequest checks the proposed renewal date against the loan window.
func ValidateRenewRequest(req *model.RenewBookRequest, today model.Date, maxWeeks int) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	if _, err := ValidateDateWindow(today, *req.RenewalDate, maxWeeks); err != nil {
		return dateFieldError("renewal_date", err, maxWeeks)
	}
	return nil
}

// ValidateCheckoutRequest checks the due date window and that the borrower exists.
func ValidateCheckoutRequest(ctx context.Context, s *store.Store, req *model.CheckoutBookRequest, today model.Date, maxWeeks int) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	if _, err := ValidateDateWindow(today, *req.DueBack, maxWeeks); err != nil {
		return dateFieldError("due_back", err, maxWeeks)
	}
	borrower, err := s.GetUser(ctx, &model.FindUser{ID: &req.BorrowerID})
	if err != nil {
		return err
	}
	if borrower == nil || borrower.RowStatus == model.Archived {
		return NewFieldError("borrower", invalidChoice)
	}
	return nil
}

func ValidateReturnRequest(req *model.ReturnBookRequest) error {
	return ValidateStruct(req)
}

func ValidateReserveRequest(ctx context.Context, s *store.Store, req *model.ReserveBookRequest) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	if req.BorrowerID == nil {
		return nil
	}
	holder, err := s.GetUser(ctx, &model.FindUser{ID: req.BorrowerID})
	if err != nil {
		return err
	}
	if holder == nil || holder.RowStatus == model.Archived {
		return NewFieldError("borrower", invalidChoice)
	}
	return nil
}

func ValidateBookInstanceRequest(ctx context.Context, s *store.Store, req *model.BookInstanceRequest) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	book, err := s.GetBook(ctx, &model.FindBook{ID: &req.BookID})
	if err != nil {
		return err
	}
	if book == nil {
		return NewFieldError("book_id", invalidChoice)
	}
	return nil
}
