package handler

import (
	"net/http"
	"time"

	"github.com/xenking/sales-ledger/internal/ledger"
)

type productTotalResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Amount    string `json:"amount"`
}

func toProductTotals(entries []ledger.ProductTotal) []productTotalResponse {
	out := make([]productTotalResponse, len(entries))
	for i, e := range entries {
		out[i] = productTotalResponse{
			ProductID: e.ProductID,
			Name:      e.Name,
			Quantity:  e.Quantity,
			Amount:    e.Amount.StringFixed(2),
		}
	}
	return out
}

// summaryResponse is the running total plus the per-product purchase summary
// over the same filtered subset.
type summaryResponse struct {
	Count       int                    `json:"count"`
	TotalAmount string                 `json:"total_amount"`
	Products    []productTotalResponse `json:"products"`
}

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) {
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
	products, err := h.svc.ProductSummary(r.Context(), sales)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, summaryResponse{
		Count:       len(sales),
		TotalAmount: ledger.SumTotal(sales).StringFixed(2),
		Products:    toProductTotals(products),
	})
}

type reportResponse struct {
	Period struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"period"`
	Summary struct {
		TotalSales         string `json:"total_sales"`
		NumTransactions    int    `json:"num_transactions"`
		AverageTransaction string `json:"average_transaction"`
	} `json:"summary"`
	TopProducts []productTotalResponse `json:"top_products"`
	DailySales  []dailyTotalResponse   `json:"daily_sales"`
}

type dailyTotalResponse struct {
	Date  string `json:"date"`
	Total string `json:"total"`
}

func toReportResponse(rep *ledger.SalesReport) reportResponse {
	var resp reportResponse
	resp.Period.Start = rep.Period.Start
	resp.Period.End = rep.Period.End
	resp.Summary.TotalSales = rep.Summary.TotalSales.StringFixed(2)
	resp.Summary.NumTransactions = rep.Summary.NumTransactions
	resp.Summary.AverageTransaction = rep.Summary.AverageTransaction.StringFixed(2)
	resp.TopProducts = toProductTotals(rep.TopProducts)
	resp.DailySales = make([]dailyTotalResponse, len(rep.DailySales))
	for i, d := range rep.DailySales {
		resp.DailySales[i] = dailyTotalResponse{Date: d.Date, Total: d.Total.StringFixed(2)}
	}
	return resp
}

func (h *Handler) reportWeekly(w http.ResponseWriter, r *http.Request) {
	h.trailingReport(w, r, 7*24*time.Hour)
}

func (h *Handler) reportMonthly(w http.ResponseWriter, r *http.Request) {
	h.trailingReport(w, r, 30*24*time.Hour)
}

func (h *Handler) trailingReport(w http.ResponseWriter, r *http.Request, span time.Duration) {
	end := time.Now().UTC()
	start := end.Add(-span)
	rep, err := h.svc.BuildReport(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toReportResponse(rep))
}

type productResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = productResponse{ID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2), Stock: p.Stock}
	}
	writeJSON(w, r, http.StatusOK, out)
}

type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]customerResponse, len(customers))
	for i, c := range customers {
		out[i] = customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
	}
	writeJSON(w, r, http.StatusOK, out)
}
