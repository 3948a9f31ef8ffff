// Package handlers exposes the ledger's write and read surface as a JSON API.
// Error kinds map onto HTTP statuses here; everything below this layer speaks
// the sentinel errors from models.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tripsplit/ledger/internal/models"
	"github.com/tripsplit/ledger/internal/service"
)

// Handler serves the ledger API.
type Handler struct {
	svc *service.LedgerService
}

// New creates a Handler backed by the given service.
func New(svc *service.LedgerService) *Handler {
	return &Handler{svc: svc}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/trips", h.createTrip)
	mux.HandleFunc("GET /api/trips", h.listTrips)
	mux.HandleFunc("GET /api/trips/{id}", h.getTrip)
	mux.HandleFunc("PATCH /api/trips/{id}/status", h.setTripStatus)
	mux.HandleFunc("DELETE /api/trips/{id}", h.deleteTrip)

	mux.HandleFunc("POST /api/trips/{id}/participants", h.addParticipant)
	mux.HandleFunc("GET /api/trips/{id}/participants", h.listParticipants)
	mux.HandleFunc("DELETE /api/participants/{id}", h.removeParticipant)
	mux.HandleFunc("DELETE /api/participants/{id}/user", h.unlinkParticipantUser)

	mux.HandleFunc("POST /api/trips/{id}/expenses", h.submitExpense)
	mux.HandleFunc("GET /api/trips/{id}/expenses", h.listExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", h.getExpense)

	mux.HandleFunc("POST /api/trips/{id}/payments", h.recordPayment)
	mux.HandleFunc("GET /api/trips/{id}/payments", h.listPayments)

	mux.HandleFunc("GET /api/trips/{id}/balances", h.balances)
	mux.HandleFunc("GET /api/trips/{id}/settlement", h.settlement)
}

type createTripRequest struct {
	Name         string `json:"name"`
	OwnerID      string `json:"ownerId"`
	BaseCurrency string `json:"baseCurrency"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
}

func (h *Handler) createTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if !decode(w, r, &req) {
		return
	}
	trip, err := h.svc.CreateTrip(r.Context(), req.Name, req.OwnerID, req.BaseCurrency, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripJSON(trip))
}

func (h *Handler) listTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.svc.ListTrips(r.Context(), r.URL.Query().Get("ownerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]any, 0, len(trips))
	for _, trip := range trips {
		out = append(out, tripJSON(trip))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.svc.GetTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripJSON(trip))
}

type setStatusRequest struct {
	Status  string `json:"status"`
	OwnerID string `json:"ownerId"`
}

func (h *Handler) setTripStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !decode(w, r, &req) {
		return
	}
	trip, err := h.svc.SetTripStatus(r.Context(), r.PathValue("id"), req.OwnerID, models.TripStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripJSON(trip))
}

func (h *Handler) deleteTrip(w http.ResponseWriter, r *http.Request) {
	// Owner asserted via query param; an auth layer in front of this API
	// would supply it from the session instead.
	if err := h.svc.DeleteTrip(r.Context(), r.PathValue("id"), r.URL.Query().Get("ownerId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addParticipantRequest struct {
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) addParticipant(w http.ResponseWriter, r *http.Request) {
	var req addParticipantRequest
	if !decode(w, r, &req) {
		return
	}
	participant, err := h.svc.AddParticipant(r.Context(), r.PathValue("id"), req.UserID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participantJSON(participant))
}

func (h *Handler) listParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.svc.ListParticipants(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]any, 0, len(participants))
	for _, p := range participants {
		out = append(out, participantJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) removeParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveParticipant(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unlinkParticipantUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.UnlinkParticipantUser(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type splitRequest struct {
	ParticipantID string `json:"participantId"`
	AmountOwed    int64  `json:"amountOwed"`
}

type submitExpenseRequest struct {
	PayerID  string         `json:"payerId"`
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Date     string         `json:"date"`
	Category string         `json:"category,omitempty"`
	ClientID string         `json:"clientId,omitempty"`
	Splits   []splitRequest `json:"splits"`
}

func (h *Handler) submitExpense(w http.ResponseWriter, r *http.Request) {
	var req submitExpenseRequest
	if !decode(w, r, &req) {
		return
	}
	splits := make([]models.ExpenseSplit, len(req.Splits))
	for i, s := range req.Splits {
		splits[i] = models.ExpenseSplit{ParticipantID: s.ParticipantID, Amount: s.AmountOwed}
	}

	expense, created, err := h.svc.SubmitExpense(r.Context(), service.ExpenseSubmission{
		TripID:   r.PathValue("id"),
		PayerID:  req.PayerID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Date:     req.Date,
		Category: req.Category,
		ClientID: req.ClientID,
		Splits:   splits,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// 201 for a fresh expense, 200 for an idempotent replay: clients can
	// tell retry-success apart from first success.
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, expenseJSON(expense))
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.svc.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseJSON(expense))
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpenses(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]any, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type recordPaymentRequest struct {
	PayerID    string `json:"payerId"`
	ReceiverID string `json:"receiverId"`
	Amount     int64  `json:"amount"`
	Date       string `json:"date"`
	Note       string `json:"note,omitempty"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	payment, err := h.svc.RecordPayment(r.Context(), r.PathValue("id"), req.PayerID, req.ReceiverID, req.Amount, req.Date, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentJSON(payment))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPayments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]any, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.svc.Balances(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	type balanceJSON struct {
		ParticipantID   string `json:"participantId"`
		Paid            int64  `json:"paid"`
		Owed            int64  `json:"owed"`
		SettledPaid     int64  `json:"settledPaid"`
		SettledReceived int64  `json:"settledReceived"`
		Net             int64  `json:"net"`
	}
	out := make([]balanceJSON, len(balances))
	for i, b := range balances {
		out[i] = balanceJSON{b.ParticipantID, b.Paid, b.Owed, b.SettledPaid, b.SettledReceived, b.Net}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) settlement(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.SettlementPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	type transferJSON struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount int64  `json:"amount"`
	}
	out := make([]transferJSON, len(plan))
	for i, t := range plan {
		out[i] = transferJSON{t.From, t.To, t.Amount}
	}
	writeJSON(w, http.StatusOK, out)
}

func tripJSON(t *models.Trip) map[string]any {
	return map[string]any{
		"id":           t.ID,
		"name":         t.Name,
		"ownerId":      t.OwnerID,
		"baseCurrency": t.BaseCurrency,
		"startDate":    t.StartDate,
		"endDate":      t.EndDate,
		"status":       string(t.Status),
		"createdAt":    t.CreatedAt,
		"updatedAt":    t.UpdatedAt,
	}
}

func participantJSON(p *models.Participant) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"tripId":      p.TripID,
		"userId":      p.UserID,
		"displayName": p.DisplayName,
		"createdAt":   p.CreatedAt,
	}
}

func expenseJSON(e *models.Expense) map[string]any {
	splits := make([]map[string]any, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = map[string]any{"participantId": s.ParticipantID, "amountOwed": s.Amount}
	}
	return map[string]any{
		"id":       e.ID,
		"tripId":   e.TripID,
		"payerId":  e.PayerID,
		"amount":   e.Amount,
		"currency": e.Currency,
		"date":     e.Date,
		"category": e.Category,
		"clientId": e.ClientID,
		"splits":   splits,
	}
}

func paymentJSON(p *models.Payment) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"tripId":     p.TripID,
		"payerId":    p.PayerID,
		"receiverId": p.ReceiverID,
		"amount":     p.Amount,
		"date":       p.Date,
		"note":       p.Note,
	}
}

// decode parses the JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps ledger error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateParticipant),
		errors.Is(err, models.ErrParticipantInUse),
		errors.Is(err, models.ErrConflictingRetry):
		status = http.StatusConflict
	case errors.Is(err, models.ErrNotTripOwner):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidCurrency),
		errors.Is(err, models.ErrCurrencyMismatch),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrInvalidDateRange),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrSplitMismatch),
		errors.Is(err, models.ErrEmptySplits),
		errors.Is(err, models.ErrDuplicateSplit),
		errors.Is(err, models.ErrSelfPayment),
		errors.Is(err, models.ErrEmptyName),
		errors.Is(err, models.ErrUnknownPayer),
		errors.Is(err, models.ErrUnknownParticipant),
		errors.Is(err, models.ErrTripNotActive):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnbalancedLedger):
		// Precondition failure: an upstream bug, not bad input.
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
