package handlers

import (
	"net/http"

	"viaqris/internal/domain"
)

// legacyRequest is the body accepted by the single-endpoint API the donation
// page was first written against.
type legacyRequest struct {
	Action string        `json:"aksi"`
	Key    string        `json:"kunciEntri"`
	Entry  *domain.Entry `json:"dataBaru"`
	Status domain.Status `json:"statusBaru"`
}

const (
	actionUpdateStatus = "updateStatus"
	actionCheckPayment = "cekPembayaran"
)

// LegacyList serves GET /api/v2.
func (a *App) LegacyList(w http.ResponseWriter, r *http.Request) {
	a.ListTransactions(w, r)
}

// LegacyDispatch serves POST /api/v2, routing on the aksi field. Status
// changes require operator credentials here as well.
func (a *App) LegacyDispatch(w http.ResponseWriter, r *http.Request) {
	var req legacyRequest
	if !a.decode(w, r, defaultMaxBody, &req) {
		return
	}
	switch req.Action {
	case actionUpdateStatus:
		if !a.Admin.Check(r) {
			if a.Admin.Enabled() {
				w.Header().Set("WWW-Authenticate", `Basic realm="Dashboard", charset="UTF-8"`)
			}
			a.Unauthorized(w, r)
			return
		}
		a.updateStatus(w, r, req.Key, req.Status)
	case actionCheckPayment:
		a.checkPayment(w, r, req.Key)
	default:
		a.create(w, r, createRequest{Key: req.Key, Entry: req.Entry})
	}
}
