// Package server exposes the cart over HTTP for the storefront UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nikolayk812/cartstore-demo/internal/cartstore"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"golang.org/x/text/currency"
)

const requestIDHeader = "X-Request-ID"

// CartService is the part of cartstore.Store the handlers use.
type CartService interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
	UpdateProductAmount(ctx context.Context, update cartstore.UpdateProductAmount) error
	Clear(ctx context.Context) error
}

// Feed hands out pending user notifications.
type Feed interface {
	Drain() []string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc    CartService
	feed   Feed
	health Pinger
	unit   currency.Unit
	log    logrus.FieldLogger
}

func NewHandler(svc CartService, feed Feed, health Pinger, unit currency.Unit, log logrus.FieldLogger) *Handler {
	return &Handler{
		svc:    svc,
		feed:   feed,
		health: health,
		unit:   unit,
		log:    log,
	}
}

// Router returns the routes wrapped with tracing, request ids and access logging.
func (h *Handler) Router(serviceName string) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName), h.requestID, h.accessLog)

	r.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/cart/products/{id}", h.AddProduct).Methods(http.MethodPost)
	r.HandleFunc("/cart/products/{id}", h.RemoveProduct).Methods(http.MethodDelete)
	r.HandleFunc("/cart/products/{id}", h.UpdateProductAmount).Methods(http.MethodPut)
	r.HandleFunc("/notifications", h.Notifications).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	return r
}

// --- response shapes ---

type itemView struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Amount   int             `json:"amount"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	Items    []itemView      `json:"items"`
	Size     int             `json:"size"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type updateAmountReq struct {
	Amount int `json:"amount"`
}

func (h *Handler) view(cart domain.Cart) cartView {
	items := make([]itemView, 0, len(cart.Items))
	for _, p := range cart.Items {
		items = append(items, itemView{
			ID:       p.ID,
			Title:    p.Title,
			Price:    p.Price,
			Image:    p.Image,
			Amount:   p.Amount,
			Subtotal: p.Subtotal(),
		})
	}

	total := cart.Total(h.unit)

	return cartView{
		Items:    items,
		Size:     cart.Size(),
		Total:    total.Amount,
		Currency: total.Currency.String(),
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeOpErr maps a cart error to a status code; msg is the user-facing text for the operation.
func writeOpErr(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		writeErr(w, http.StatusConflict, domain.MsgOutOfStock)
	case errors.Is(err, domain.ErrProductNotFound):
		writeErr(w, http.StatusNotFound, msg)
	case errors.Is(err, domain.ErrStockUnavailable), errors.Is(err, domain.ErrCatalogUnavailable):
		writeErr(w, http.StatusBadGateway, msg)
	default:
		writeErr(w, http.StatusInternalServerError, msg)
	}
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// --- handlers ---

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view(h.svc.Cart()))
}

// AddProduct handles POST /cart/products/{id}
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.svc.AddProduct(r.Context(), id); err != nil {
		writeOpErr(w, err, domain.MsgAddProduct)
		return
	}
	writeJSON(w, http.StatusOK, h.view(h.svc.Cart()))
}

// RemoveProduct handles DELETE /cart/products/{id}
func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.svc.RemoveProduct(r.Context(), id); err != nil {
		writeOpErr(w, err, domain.MsgRemoveProduct)
		return
	}
	writeJSON(w, http.StatusOK, h.view(h.svc.Cart()))
}

// UpdateProductAmount handles PUT /cart/products/{id}
// body: { "amount": 3 }
func (h *Handler) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateAmountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	update := cartstore.UpdateProductAmount{ProductID: id, Amount: req.Amount}
	if err := h.svc.UpdateProductAmount(r.Context(), update); err != nil {
		writeOpErr(w, err, domain.MsgUpdateAmount)
		return
	}
	writeJSON(w, http.StatusOK, h.view(h.svc.Cart()))
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		writeOpErr(w, err, domain.MsgRemoveProduct)
		return
	}
	writeJSON(w, http.StatusOK, h.view(h.svc.Cart()))
}

// Notifications handles GET /notifications
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"messages": h.feed.Drain()})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("storage ping failed")
		writeErr(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- middleware ---

type ctxKey struct{}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		id, _ := r.Context().Value(ctxKey{}).(string)
		h.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start),
		}).Info("request served")
	})
}
