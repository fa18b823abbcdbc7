package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/auction"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/history"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

// Handler carries the service dependencies for all REST endpoints.
type Handler struct {
	auction    *auction.Service
	settlement *settlement.Service
	history    *history.Service
	validate   *validator.Validate
	logger     *slog.Logger
	currency   string
}

// NewHandler creates the REST handler.
func NewHandler(
	auctionSvc *auction.Service,
	settlementSvc *settlement.Service,
	historySvc *history.Service,
	logger *slog.Logger,
	currency string,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auction:    auctionSvc,
		settlement: settlementSvc,
		history:    historySvc,
		validate:   validator.New(),
		logger:     logger,
		currency:   currency,
	}
}

// POST /api/v1/listings
func (h *Handler) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if !h.decode(w, r, &req) {
		return
	}

	svcReq := auction.CreateListingRequest{ItemID: req.ItemID, Expiry: req.Expiry}
	if req.InitialPrice != nil {
		price, err := values.NewMoneyFromString(*req.InitialPrice, h.currency)
		if err != nil {
			h.writeError(w, r, apperrors.NewValidationError("INVALID_AMOUNT", "initial_price must be a decimal string"))
			return
		}
		svcReq.InitialPrice = &price
	}

	l, err := h.auction.CreateListing(r.Context(), svcReq)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toListingResponse(l))
}

// GET /api/v1/listings/{itemID}
func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.auction.GetListing(r.Context(), r.PathValue("itemID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toListingResponse(l))
}

// DELETE /api/v1/listings/{itemID}
func (h *Handler) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	if err := h.auction.CancelListing(r.Context(), r.PathValue("itemID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/listings/{itemID}/bids
func (h *Handler) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var req placeBidRequest
	if !h.decode(w, r, &req) {
		return
	}

	bidderID, err := uuid.Parse(req.BidderID)
	if err != nil {
		h.writeError(w, r, apperrors.ErrMissingBidderID)
		return
	}

	svcReq := auction.PlaceBidRequest{
		ItemID:   r.PathValue("itemID"),
		BidderID: bidderID,
	}
	if req.Amount != nil {
		amount, err := values.NewMoneyFromString(*req.Amount, h.currency)
		if err != nil {
			h.writeError(w, r, apperrors.NewValidationError("INVALID_AMOUNT", "amount must be a decimal string"))
			return
		}
		svcReq.Amount = &amount
	}

	b, err := h.auction.PlaceBid(r.Context(), svcReq)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toBidResponse(b))
}

// GET /api/v1/listings/{itemID}/bids
func (h *Handler) handleListBids(w http.ResponseWriter, r *http.Request) {
	bids, err := h.auction.ListBids(r.Context(), r.PathValue("itemID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]bidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, toBidResponse(b))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// POST /api/v1/settlements
func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}

	var (
		reports []settlement.Report
		err     error
	)
	if req.Now != nil {
		reports, err = h.settlement.Settle(r.Context(), req.Now.UTC())
	} else {
		reports, err = h.settlement.SettleNow(r.Context())
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settleResponse{Settled: reports})
}

// GET /api/v1/history?bidder_id=&start=&end=&active_only=
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bidderID, err := uuid.Parse(q.Get("bidder_id"))
	if err != nil {
		h.writeError(w, r, apperrors.ErrMissingBidderID)
		return
	}

	start, err := parseTimeParam(q.Get("start"), time.Time{})
	if err != nil {
		h.writeError(w, r, apperrors.NewValidationError("INVALID_RANGE", "start must be RFC3339"))
		return
	}
	end, err := parseTimeParam(q.Get("end"), time.Now().UTC())
	if err != nil {
		h.writeError(w, r, apperrors.NewValidationError("INVALID_RANGE", "end must be RFC3339"))
		return
	}

	activeOnly := true
	if v := q.Get("active_only"); v == "false" {
		activeOnly = false
	}

	entries, err := h.history.List(r.Context(), history.Query{
		BidderID:   bidderID,
		Start:      start,
		End:        end,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toHistoryResponse(entries))
}

func parseTimeParam(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, v)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("INVALID_BODY", "request body is not valid JSON"))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("INVALID_BODY", err.Error()))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.ErrorContext(r.Context(), "unhandled error", "error", err)
		appErr = apperrors.NewInternalError("internal error")
	}
	h.writeJSON(w, appErr.StatusCode, errorResponse{Error: errorBody{
		Type:    string(appErr.Type),
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}})
}
