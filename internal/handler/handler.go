// Package handler exposes the ledger engine over HTTP: sale recording and
// lookup, filtered listings, bulk deletes, aggregate reports, and CSV export.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/xenking/sales-ledger/internal/domain/customer"
	"github.com/xenking/sales-ledger/internal/domain/product"
	"github.com/xenking/sales-ledger/internal/domain/sale"
	"github.com/xenking/sales-ledger/internal/ledger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler serves the ledger API. All business logic lives in the ledger
// service; the handler parses requests, maps domain errors to status codes,
// and shapes responses.
type Handler struct {
	svc       *ledger.Service
	catalog   product.Catalog
	customers customer.Registry
	metrics   *Metrics
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(svc *ledger.Service, catalog product.Catalog, customers customer.Registry, metrics *Metrics) *Handler {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Handler{
		svc:       svc,
		catalog:   catalog,
		customers: customers,
		metrics:   metrics,
	}
}

// Router builds the API route table.
//
// The CSV export lives under /api/export because httprouter cannot register
// both /api/sales/:id and a literal /api/sales/export on the same method.
func (h *Handler) Router() *httprouter.Router {
	rt := httprouter.New()

	rt.HandlerFunc(http.MethodPost, "/api/sales", h.createSale)
	rt.HandlerFunc(http.MethodGet, "/api/sales", h.listSales)
	rt.HandlerFunc(http.MethodGet, "/api/sales/:id", h.getSale)
	rt.HandlerFunc(http.MethodDelete, "/api/sales/:id", h.deleteSale)
	rt.HandlerFunc(http.MethodPost, "/api/sales/bulk-delete", h.bulkDelete)

	rt.HandlerFunc(http.MethodGet, "/api/export/sales", h.exportCSV)

	rt.HandlerFunc(http.MethodGet, "/api/reports/summary", h.reportSummary)
	rt.HandlerFunc(http.MethodGet, "/api/reports/weekly", h.reportWeekly)
	rt.HandlerFunc(http.MethodGet, "/api/reports/monthly", h.reportMonthly)

	rt.HandlerFunc(http.MethodGet, "/api/products", h.listProducts)
	rt.HandlerFunc(http.MethodGet, "/api/customers", h.listCustomers)

	return rt
}

// errorBody is the uniform error response shape.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorBody{Code: status, Message: msg})
}

// writeDomainError maps ledger errors to HTTP responses: 400 for an empty
// item list, 422 for the remaining validation errors, 404 for a missing
// sale, and 500 otherwise.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sale.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case sale.IsValidation(err):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, sale.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		zctx.From(r.Context()).Error("internal error", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// pathID extracts the :id route parameter as an int64.
func pathID(r *http.Request) (int64, bool) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parseCriteria reads the filter request surface: start_date, end_date
// (RFC 3339 or YYYY-MM-DD, inclusive), customer_id, product_id. Absent
// parameters impose no constraint.
func parseCriteria(r *http.Request) (sale.FilterCriteria, error) {
	var criteria sale.FilterCriteria
	q := r.URL.Query()

	if v := q.Get("start_date"); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return criteria, err
		}
		criteria.Start = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return criteria, err
		}
		criteria.End = &t
	}
	if v := q.Get("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return criteria, errBadParam{"customer_id", v}
		}
		criteria.CustomerID = &id
	}
	if v := q.Get("product_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return criteria, errBadParam{"product_id", v}
		}
		criteria.ProductID = &id
	}
	return criteria, nil
}

func parseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, errBadParam{"timestamp", v}
}

type errBadParam struct {
	name  string
	value string
}

func (e errBadParam) Error() string {
	return "invalid " + e.name + ": " + e.value
}
