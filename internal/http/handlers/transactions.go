package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"viaqris/internal/domain"
)

type createRequest struct {
	Key   string        `json:"kunciEntri"`
	Entry *domain.Entry `json:"dataBaru"`
}

type createResponse struct {
	Message    string `json:"message"`
	Key        string `json:"kunciEntri"`
	PaymentURL string `json:"url_pambayaran"`
	ExpiresAt  string `json:"kedaluwarsa"`
}

type statusRequest struct {
	Status domain.Status `json:"statusBaru"`
}

type statusResponse struct {
	Message string       `json:"message"`
	Entry   domain.Entry `json:"updatedData"`
}

type checkResponse struct {
	Message string `json:"message"`
	Match   bool   `json:"match"`
	Status  string `json:"status_pembayaran_transaksi,omitempty"`
}

func (a *App) ListTransactions(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Donations.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = domain.Entries{}
	}
	a.json(w, http.StatusOK, entries)
}

func (a *App) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !a.decode(w, r, defaultMaxBody, &req) {
		return
	}
	a.create(w, r, req)
}

func (a *App) create(w http.ResponseWriter, r *http.Request, req createRequest) {
	if strings.TrimSpace(req.Key) == "" || req.Entry == nil {
		a.error(w, r, http.StatusBadRequest, msgInvalidRequest, "kunciEntri and dataBaru are required")
		return
	}
	res, err := a.Donations.Create(r.Context(), req.Key, *req.Entry)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, createResponse{
		Message:    a.printer(r).Sprintf(msgCreated, res.Key),
		Key:        res.Key,
		PaymentURL: res.Entry.PaymentURL,
		ExpiresAt:  res.Entry.ExpiresAt,
	})
}

func (a *App) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !a.decode(w, r, defaultMaxBody, &req) {
		return
	}
	a.updateStatus(w, r, chi.URLParam(r, "key"), req.Status)
}

func (a *App) updateStatus(w http.ResponseWriter, r *http.Request, key string, status domain.Status) {
	if strings.TrimSpace(key) == "" || status == "" {
		a.error(w, r, http.StatusBadRequest, msgInvalidRequest, "kunciEntri and statusBaru are required")
		return
	}
	entry, err := a.Donations.UpdateStatus(r.Context(), key, status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, statusResponse{
		Message: a.printer(r).Sprintf(msgStatusUpdated, key),
		Entry:   entry,
	})
}

func (a *App) CheckPayment(w http.ResponseWriter, r *http.Request) {
	a.checkPayment(w, r, chi.URLParam(r, "key"))
}

func (a *App) checkPayment(w http.ResponseWriter, r *http.Request, key string) {
	if strings.TrimSpace(key) == "" {
		a.error(w, r, http.StatusBadRequest, msgInvalidRequest, "kunciEntri is required")
		return
	}
	res, err := a.Donations.CheckPayment(r.Context(), key)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	msg := msgPaymentMissing
	if res.Matched {
		msg = msgPaymentFound
	}
	a.json(w, http.StatusOK, checkResponse{
		Message: a.printer(r).Sprintf(msg),
		Match:   res.Matched,
		Status:  string(res.Entry.Status),
	})
}

func (a *App) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := a.Donations.Summary(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sum)
}

func (a *App) Quote(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("amount")
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		amount = domain.ParseDigits(raw)
	}
	q, err := a.Donations.Quote(r.Context(), amount)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, q)
}
