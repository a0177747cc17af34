package handler

import (
	"net/http"
	"time"

	"github.com/xenking/sales-ledger/internal/domain/sale"
	"github.com/xenking/sales-ledger/internal/ledger"
)

// createSaleRequest is the JSON body for recording a sale.
type createSaleRequest struct {
	CustomerID *int64              `json:"customer_id"`
	Items      []createItemRequest `json:"items"`
}

type createItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type saleResponse struct {
	ID          int64              `json:"id"`
	CustomerID  *int64             `json:"customer_id"`
	Items       []saleItemResponse `json:"items"`
	TotalAmount string             `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
}

type saleItemResponse struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func toSaleResponse(s *sale.Sale) saleResponse {
	items := make([]saleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = saleItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		}
	}
	return saleResponse{
		ID:          s.ID,
		CustomerID:  s.CustomerID,
		Items:       items,
		TotalAmount: s.Total.StringFixed(2),
		CreatedAt:   s.CreatedAt,
	}
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]ledger.CreateItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = ledger.CreateItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	created, err := h.svc.CreateSale(r.Context(), ledger.CreateSaleRequest{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.metrics.SaleCreated(r.Context())
	writeJSON(w, r, http.StatusCreated, toSaleResponse(created))
}

// listSalesResponse carries the filtered sales plus the metadata the
// dashboard shows alongside them.
type listSalesResponse struct {
	Sales       []saleResponse `json:"sales"`
	Count       int            `json:"count"`
	TotalAmount string         `json:"total_amount"`
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sales, err := h.svc.Query(r.Context(), criteria)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := listSalesResponse{
		Sales:       make([]saleResponse, len(sales)),
		Count:       len(sales),
		TotalAmount: ledger.SumTotal(sales).StringFixed(2),
	}
	for i := range sales {
		resp.Sales[i] = toSaleResponse(&sales[i])
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid sale id")
		return
	}
	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSaleResponse(s))
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid sale id")
		return
	}
	if err := h.svc.DeleteSale(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.metrics.SalesDeleted(r.Context(), 1)
	w.WriteHeader(http.StatusNoContent)
}

// bulkDeleteRequest is the JSON body for a multi-target delete.
type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type bulkDeleteResponse struct {
	Deleted      []int64               `json:"deleted"`
	Failed       []bulkFailureResponse `json:"failed"`
	AllSucceeded bool                  `json:"all_succeeded"`
}

type bulkFailureResponse struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// bulkDelete always answers 200 when the coordinator completes: partial
// failure is a first-class result the caller must inspect, not a transport
// error.
func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "ids required")
		return
	}

	result, err := h.svc.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.metrics.SalesDeleted(r.Context(), int64(len(result.Deleted)))
	resp := bulkDeleteResponse{
		Deleted:      result.Deleted,
		Failed:       make([]bulkFailureResponse, len(result.Failed)),
		AllSucceeded: result.AllSucceeded(),
	}
	for i, f := range result.Failed {
		resp.Failed[i] = bulkFailureResponse{ID: f.ID, Reason: f.Reason}
	}
	writeJSON(w, r, http.StatusOK, resp)
}
