package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/validator"
)

// listMyLoans lists what the caller has on loan, soonest due first.
func (h *Handler) listMyLoans(w http.ResponseWriter, r *http.Request) {
	user := request.GetUser(r)
	onLoan := model.LoanStatusOnLoan
	h.listLoans(w, r, &model.FindBookInstance{BorrowerID: &user.ID, Status: &onLoan})
}

func (h *Handler) listAllLoans(w http.ResponseWriter, r *http.Request) {
	onLoan := model.LoanStatusOnLoan
	h.listLoans(w, r, &model.FindBookInstance{Status: &onLoan})
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	reserved := model.LoanStatusReserved
	h.listLoans(w, r, &model.FindBookInstance{Status: &reserved, OrderBy: "book"})
}

// listBookInstances backs the staff listing, filtered by status, due date and book.
func (h *Handler) listBookInstances(w http.ResponseWriter, r *http.Request) {
	find := &model.FindBookInstance{}
	if v := request.QueryStringParam(r, "status", ""); v != "" {
		status := model.LoanStatus(v)
		if !status.IsValid() {
			handleError(w, r, validator.NewFieldError("status", "Select a valid choice. That choice is not one of the available choices."))
			return
		}
		find.Status = &status
	}
	if v := request.QueryStringParam(r, "due_back", ""); v != "" {
		due, err := model.ParseDate(v)
		if err != nil {
			handleError(w, r, validator.NewFieldError("due_back", "Enter a valid date."))
			return
		}
		find.DueBack = &due
	}
	if bookID := request.QueryIntParam(r, "book", 0); bookID > 0 {
		find.BookID = &bookID
	}
	h.listLoans(w, r, find)
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request, find *model.FindBookInstance) {
	page, size, limit, offset := h.pagination(r)
	find.Limit, find.Offset = &limit, &offset

	list, err := h.store.ListBookInstances(r.Context(), find)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, model.NewPage(model.NewLoanViews(list, h.today()), page, size))
}

// loadInstance answers 404 itself when the copy does not exist.
func (h *Handler) loadInstance(w http.ResponseWriter, r *http.Request) (*model.BookInstance, bool) {
	id := request.RouteStringParam(r, "id")
	instance, err := h.store.GetBookInstance(r.Context(), &model.FindBookInstance{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return nil, false
	}
	if instance == nil {
		response.NotFound(w, r)
		return nil, false
	}
	return instance, true
}

// renewBookForm proposes a renewal date a few weeks from today.
func (h *Handler) renewBookForm(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.loadInstance(w, r)
	if !ok {
		return
	}
	response.OK(w, r, &model.RenewBookForm{
		BookInstance: instance,
		RenewalDate:  h.today().AddWeeks(h.renewalDefaultWeeks),
	})
}

func (h *Handler) renewBook(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.loadInstance(w, r)
	if !ok {
		return
	}
	var renew model.RenewBookRequest
	if err := decodeJSON(r, &renew); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateRenewRequest(&renew, h.today(), h.loanMaxWeeks); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := h.store.UpdateBookInstance(r.Context(), instance.ID, func(bi *model.BookInstance) error {
		return bi.Renew(*renew.RenewalDate)
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book renewed",
		zap.String("instance_id", updated.ID),
		zap.Stringer("due_back", updated.DueBack),
		zap.Int32("by", request.GetUser(r).ID),
	)
	response.SeeOther(w, r, h.redirectURL("all-borrowed"), updated)
}

// returnBookForm proposes putting the copy back on the shelf.
func (h *Handler) returnBookForm(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.loadInstance(w, r)
	if !ok {
		return
	}
	response.OK(w, r, &model.ReturnBookForm{BookInstance: instance, Status: model.LoanStatusAvailable})
}

func (h *Handler) returnBook(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.loadInstance(w, r)
	if !ok {
		return
	}
	var ret model.ReturnBookRequest
	if err := decodeJSON(r, &ret); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateReturnRequest(&ret); err != nil {
		handleError(w, r, err)
		return
	}
	if ret.Status == "" {
		ret.Status = model.LoanStatusAvailable
	}

	updated, err := h.store.UpdateBookInstance(r.Context(), instance.ID, func(bi *model.BookInstance) error {
		return bi.Return(ret.Status)
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book returned",
		zap.String("instance_id", updated.ID),
		zap.String("status", updated.Status.String()),
		zap.Int32("by", request.GetUser(r).ID),
	)
	response.SeeOther(w, r, h.redirectURL("all-borrowed"), updated)
}

func (h *Handler) checkoutBook(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.loadInstance(w, r)
	if !ok {
		return
	}
	var checkout model.CheckoutBookRequest
	if err := decodeJSON(r, &checkout); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateCheckoutRequest(r.Context(), h.store, &checkout, h.today(), h.loanMaxWeeks); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := h.store.UpdateBookInstance(r.Context(), instance.ID, func(bi *model.BookInstance) error {
		return bi.Checkout(checkout.BorrowerID, *checkout.DueBack)
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book checked out",
		zap.String("instance_id", updated.ID),
		zap.Int32("borrower_id", checkout.BorrowerID),
		zap.Stringer("due_back", updated.DueBack),
	)
	response.SeeOther(w, r, h.redirectURL("all-borrowed"), updated)
}

func (h *Handler) reserveBook(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.loadInstance(w, r)
	if !ok {
		return
	}
	var reserve model.ReserveBookRequest
	if err := decodeJSON(r, &reserve); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateReserveRequest(r.Context(), h.store, &reserve); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := h.store.UpdateBookInstance(r.Context(), instance.ID, func(bi *model.BookInstance) error {
		return bi.Reserve(reserve.BorrowerID)
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book reserved", zap.String("instance_id", updated.ID))
	response.SeeOther(w, r, h.redirectURL("all-borrowed"), updated)
}
