package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/factory-stock/internal/domain/history"
	"github.com/Spok95/factory-stock/internal/domain/inventory"
	"github.com/Spok95/factory-stock/internal/domain/orders"
	"github.com/Spok95/factory-stock/internal/report"
	"github.com/Spok95/factory-stock/internal/stock"
)

const (
	defaultRecent  = 20
	maxImportBytes = 10 << 20
)

// Ledger is what the API needs from the stock service.
type Ledger interface {
	report.Source
	ApplyMovement(ctx context.Context, kind inventory.Kind, product string, qty int64, note string) (inventory.Transaction, error)
	CurrentStock(product string) (int64, error)
	History(product string) ([]history.Point, error)
	OrdersFor(product string) []orders.Order
	AddOrder(o orders.Order) error
	Summary(now time.Time) stock.Summary
}

type api struct {
	log *slog.Logger
	svc Ledger
	now func() time.Time
}

// NewHandler builds the HTTP routes. metrics may be nil.
func NewHandler(log *slog.Logger, svc Ledger, metrics http.Handler) http.Handler {
	a := &api{log: log, svc: svc, now: time.Now}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.HandleFunc("GET /api/products", a.products)
	mux.HandleFunc("GET /api/products/{name}/stock", a.stock)
	mux.HandleFunc("GET /api/products/{name}/history", a.history)
	mux.HandleFunc("GET /api/products/{name}/orders", a.orders)
	mux.HandleFunc("POST /api/movements", a.movement)
	mux.HandleFunc("GET /api/transactions", a.transactions)
	mux.HandleFunc("GET /api/summary", a.summary)
	mux.HandleFunc("GET /api/export.xlsx", a.export)
	mux.HandleFunc("POST /api/orders/import", a.importOrders)
	return mux
}

func (a *api) products(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Products())
}

func (a *api) stock(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	qty, err := a.svc.CurrentStock(name)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": name, "stock": qty})
}

func (a *api) history(w http.ResponseWriter, r *http.Request) {
	points, err := a.svc.History(r.PathValue("name"))
	if err != nil {
		a.fail(w, err)
		return
	}
	if points == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (a *api) orders(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := a.svc.CurrentStock(name); err != nil {
		a.fail(w, err)
		return
	}
	list := a.svc.OrdersFor(name)
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product": name,
		"pending": a.svc.PendingQuantity(name),
		"orders":  list,
	})
}

type movementRequest struct {
	Kind     inventory.Kind `json:"kind"`
	Product  string         `json:"product"`
	Quantity int64          `json:"quantity"`
	Note     string         `json:"note"`
}

func (a *api) movement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}
	tx, err := a.svc.ApplyMovement(r.Context(), req.Kind, req.Product, req.Quantity, req.Note)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (a *api) transactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecent
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}
	list := a.svc.Recent(limit)
	if list == nil {
		list = []inventory.Transaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *api) summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Summary(a.now()))
}

func (a *api) export(w http.ResponseWriter, _ *http.Request) {
	buf, err := report.Export(a.svc)
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="stock_%s.xlsx"`, a.now().Format("20060102_150405")))
	_, _ = buf.WriteTo(w)
}

func (a *api) importOrders(w http.ResponseWriter, r *http.Request) {
	list, err := report.ImportOrders(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// all products must exist before anything is added
	for _, o := range list {
		if _, err := a.svc.CurrentStock(o.Product); err != nil {
			a.fail(w, err)
			return
		}
	}
	for _, o := range list {
		if err := a.svc.AddOrder(o); err != nil {
			a.fail(w, err)
			return
		}
	}
	a.log.Info("orders imported", "count", len(list))
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(list)})
}

func (a *api) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stock.ErrUnknownProduct):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, stock.ErrInvalidKind),
		errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, orders.ErrInvalidStatus):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		a.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
