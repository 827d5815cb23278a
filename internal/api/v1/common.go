package v1

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/validator"
)

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// maxPage keeps the list offset far from overflowing.
const maxPage = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// decodeJSON reads the request body into v. An empty body leaves v as is,
// so optional form fields can be left out entirely. A value of the wrong
// type or format is reported against its field.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		message := "Invalid value."
		if typeErr.Type == reflect.TypeOf(model.Date{}) {
			message = "Enter a valid date."
		}
		return validator.NewFieldError(typeErr.Field, message)
	}
	return errors.Wrap(errMalformedBody, err.Error())
}

// handleError answers err with the status its kind maps to.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := validator.AsValidationError(err); ok {
		response.FieldErrors(w, r, verr.Message, verr.Fields)
		return
	}
	switch {
	case errors.Is(err, errMalformedBody):
		response.BadRequest(w, r, err)
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(w, r)
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, store.ErrConflict):
		response.Conflict(w, r, err)
	default:
		response.ServerError(w, r, err)
	}
}

// pagination reads page (1-based) and page_size, returning the store limit,
// which fetches one extra row for model.NewPage, and the offset.
func (h *Handler) pagination(r *http.Request) (page, size, limit, offset int) {
	page = request.QueryIntParam(r, "page", 1)
	if page < 1 || page > maxPage {
		page = 1
	}
	size = request.QueryIntParam(r, "page_size", h.pageSize)
	if size < 1 || size > 100 {
		size = h.pageSize
	}
	return page, size, size + 1, (page - 1) * size
}

// redirectURL builds the path of a named route.
func (h *Handler) redirectURL(name string, pairs ...string) string {
	u, err := h.router.Get(name).URL(pairs...)
	if err != nil {
		return "/"
	}
	return u.Path
}
