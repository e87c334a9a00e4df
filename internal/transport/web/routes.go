package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/avstrong/afrotour/internal/auth"
	"github.com/avstrong/afrotour/internal/booking"
	"github.com/avstrong/afrotour/internal/catalog"
	"github.com/avstrong/afrotour/internal/pricing"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// readBody validates the body against schema and decodes it into dst. On
// failure the response is already written.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema gojsonschema.JSONLoader, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))

		return false
	}

	if err := validateJSONSchema(schema, body); err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			s.writeJSON(w, http.StatusBadRequest, schemaErr.Fields())

			return false
		}

		s.writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))

		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		s.writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))

		return false
	}

	return true
}

type paymentFailedResponse struct {
	Error string        `json:"error"`
	Draft booking.Draft `json:"draft"`
}

func (s *Server) writeBookingError(w http.ResponseWriter, err error, action string) {
	if inputErr := booking.IsInputError(err); inputErr != nil {
		s.writeJSON(w, http.StatusBadRequest, inputErr.Fields())

		return
	}

	if paymentErr := booking.IsPaymentError(err); paymentErr != nil {
		s.writeJSON(w, http.StatusPaymentRequired, paymentFailedResponse{
			Error: booking.ErrPaymentFailed.Error(),
			Draft: paymentErr.Draft,
		})

		return
	}

	if errors.Is(err, booking.ErrCheckoutInProgress) {
		s.writeError(w, http.StatusConflict, err.Error())

		return
	}

	s.l.LogErrorf("Could not %s: %v", action, err.Error())
	s.writeError(w, http.StatusInternalServerError, auth.MsgGeneric)
}

type destinationResponse struct {
	catalog.Destination
	Slug string `json:"slug"`
}

func toDestinationResponses(destinations []catalog.Destination) []destinationResponse {
	out := make([]destinationResponse, 0, len(destinations))

	for _, d := range destinations {
		out = append(out, destinationResponse{Destination: d, Slug: d.Slug()})
	}

	return out
}

func (s *Server) listDestinationsHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"destinations": toDestinationResponses(s.catalog.All()),
	})
}

func (s *Server) destinationHandler(w http.ResponseWriter, r *http.Request) {
	d, err := s.catalog.FindBySlug(r.PathValue("slug"))
	if errors.Is(err, catalog.ErrDestinationNotFound) {
		s.writeError(w, http.StatusNotFound, "Destination not found")

		return
	}

	if err != nil {
		s.l.LogErrorf("Could not find destination: %v", err.Error())
		s.writeError(w, http.StatusInternalServerError, auth.MsgGeneric)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"destination": destinationResponse{Destination: d, Slug: d.Slug()},
		"packages":    pricing.Packages(),
		"guide":       catalog.GuideFor(d.Name),
	})
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": toDestinationResponses(s.catalog.Search(q)),
	})
}

func (s *Server) packagesHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"packages": pricing.Packages()})
}

type quoteRequest struct {
	Package   pricing.Tier `json:"package"`
	Travelers int          `json:"travelers"`
}

func (s *Server) quoteHandler(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest

	if !s.readBody(w, r, quoteLoader, &req) {
		return
	}

	pkg, err := pricing.PackageFor(req.Package)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string][]string{"package": {"unknown package"}})

		return
	}

	if err := pricing.ValidateTravelers(req.Travelers); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string][]string{"travelers": {err.Error()}})

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"package":   pkg,
		"travelers": req.Travelers,
		"breakdown": pricing.Calculate(req.Package, req.Travelers),
	})
}

type checkoutResponse struct {
	Confirmation    *booking.Confirmation `json:"confirmation"`
	ConfirmationURL string                `json:"confirmationUrl"`
	Replayed        bool                  `json:"replayed"`
}

func (s *Server) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input booking.CheckoutInput

	if !s.readBody(w, r, checkoutLoader, &input) {
		return
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		ctx = booking.NewContextWithIdempotencyKey(ctx, key)
	}

	res, err := s.bManager.Checkout(ctx, &input)
	if err != nil {
		s.writeBookingError(w, err, "check out")

		return
	}

	location := "/api/confirmations?" + res.Confirmation.Query().Encode()
	w.Header().Set("Location", location)

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}

	s.writeJSON(w, status, checkoutResponse{
		Confirmation:    res.Confirmation,
		ConfirmationURL: location,
		Replayed:        res.Replayed,
	})
}

func (s *Server) confirmationHandler(w http.ResponseWriter, r *http.Request) {
	input, err := booking.ParseViewQuery(r.URL.Query())
	if err != nil {
		s.writeBookingError(w, err, "parse confirmation query")

		return
	}

	view, err := s.bManager.View(r.Context(), input)
	if err != nil {
		s.writeBookingError(w, err, "show confirmation")

		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) resendConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	input, err := booking.ParseViewQuery(r.URL.Query())
	if err != nil {
		s.writeBookingError(w, err, "parse confirmation query")

		return
	}

	view, err := s.bManager.Resend(r.Context(), input)
	if err != nil {
		s.writeBookingError(w, err, "resend confirmation")

		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) dashboardBookingsHandler(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bManager.DashboardBookings(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeBookingError(w, err, "list dashboard bookings")

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handle(
	r *http.ServeMux,
	pattern string,
	h http.HandlerFunc,
	inner ...func(http.Handler) http.Handler,
) {
	middlewares := make([]func(http.Handler) http.Handler, 0, len(inner)+3) //nolint:gomnd
	middlewares = append(middlewares, inner...)
	middlewares = append(middlewares, s.sessionMiddleware(), s.loggerMiddleware(), s.recoverMiddleware())

	r.Handle(pattern, s.applyMiddlewares(h, middlewares...))
}

func (s *Server) addRoutes(r *http.ServeMux) {
	s.handle(r, fmt.Sprintf("GET %s", s.conf.LivenessEndpoint), s.livenessHandler)

	s.handle(r, "GET /api/destinations", s.listDestinationsHandler)
	s.handle(r, "GET /api/destinations/{slug}", s.destinationHandler)
	s.handle(r, "GET /api/search", s.searchHandler)
	s.handle(r, "GET /api/packages", s.packagesHandler)
	s.handle(r, "POST /api/quotes", s.quoteHandler)

	s.handle(r, "POST /api/checkout", s.checkoutHandler)
	s.handle(r, "GET /api/confirmations", s.confirmationHandler)
	s.handle(r, "POST /api/confirmations/resend", s.resendConfirmationHandler)

	s.handle(r, "POST /api/auth/signin", s.signInHandler, s.rateLimitMiddleware())
	s.handle(r, "POST /api/auth/signup", s.signUpHandler, s.rateLimitMiddleware())
	s.handle(r, "POST /api/auth/resend-verification", s.resendVerificationHandler, s.rateLimitMiddleware())
	s.handle(r, "POST /api/auth/session", s.restoreSessionHandler, s.rateLimitMiddleware())
	s.handle(r, "POST /api/auth/signout", s.signOutHandler)
	s.handle(r, "GET /api/auth/me", s.meHandler, s.requireSessionMiddleware())

	s.handle(r, "GET /api/dashboard/bookings", s.dashboardBookingsHandler, s.requireSessionMiddleware())
}
