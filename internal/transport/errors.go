package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"nana-store/internal/domain"
	"nana-store/internal/middleware"
	"nana-store/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Guards are the route middlewares handlers attach to their routes
type Guards struct {
	Auth         func(http.Handler) http.Handler
	OptionalAuth func(http.Handler) http.Handler
	Admin        func(http.Handler) http.Handler
}

// Responder writes service errors in the shared error format. Internal error
// text is only exposed when ExposeInternal is set.
type Responder struct {
	logger         *zap.Logger
	exposeInternal bool
}

func NewResponder(logger *zap.Logger, exposeInternal bool) *Responder {
	return &Responder{logger: logger, exposeInternal: exposeInternal}
}

// Error maps err onto a status code and writes it
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	var short *service.InsufficientInventoryError
	switch {
	case errors.As(err, &short):
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, short.Error(), map[string]interface{}{
			"product_id": short.ProductID.String(),
			"requested":  short.Requested,
			"available":  short.Available,
		})
	case errors.Is(err, service.ErrInvalidInput):
		middleware.RespondWithError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "))
	case errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrWishlistDuplicate),
		errors.Is(err, domain.ErrUnknownTrigger):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		middleware.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidTransition):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled):
		middleware.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
	case errors.Is(err, service.ErrTokenExpired):
		middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
	default:
		rs.logger.Error("Request failed",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		var details map[string]interface{}
		if rs.exposeInternal {
			details = map[string]interface{}{"error": err.Error()}
		}
		middleware.RespondWithErrorDetails(w, http.StatusInternalServerError, "internal server error", details)
	}
}

// decode reads and validates the JSON body, answering 400 itself on failure
func (rs *Responder) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		rs.logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// decodeOptional is decode for bodies that may be omitted
func (rs *Responder) decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.ContentLength == 0 {
		if err := middleware.ValidateRequest(v); err != nil {
			middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
			return false
		}
		return true
	}
	return rs.decode(w, r, v)
}

// pathID parses a UUID URL parameter, answering 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller set by the auth middleware
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

func requester(r *http.Request) service.Requester {
	userID, _ := middleware.GetUserID(r.Context())
	role, _ := middleware.GetUserRole(r.Context())
	return service.Requester{UserID: userID, Role: role}
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

// queryInt64 reads an optional non-negative amount
func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, errors.New(name + " must be a non-negative number")
	}
	return &n, nil
}

// pageParams reads page and limit, rejecting values outside [1, maxLimit]
func pageParams(w http.ResponseWriter, r *http.Request, maxLimit int) (page, limit int, ok bool) {
	page, err := queryInt(r, "page")
	if err == nil && page < 0 {
		err = errors.New("page must be at least 1")
	}
	if err == nil {
		limit, err = queryInt(r, "limit")
		if err == nil && (limit < 0 || limit > maxLimit) {
			err = errors.New("limit must be between 1 and " + strconv.Itoa(maxLimit))
		}
	}
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{Field: "query", Message: err.Error()}})
		return 0, 0, false
	}
	return page, limit, true
}
