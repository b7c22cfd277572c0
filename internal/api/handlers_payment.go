// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/payment"
	"github.com/tomtom215/assesslink/internal/zpay"
)

// ReconcileOutcomeHeader tells a retrying caller whether this delivery
// changed anything. The gateway ignores it.
const ReconcileOutcomeHeader = "X-Reconcile-Outcome"

// Gateway reply bodies.
const (
	notifySuccess     = "success"
	notifyIgnored     = "ignored"
	notifyInvalidSign = "invalid sign"
	notifyFail        = "fail"
)

// CreatePayment stores a pending order and returns the signed gateway
// URL. Anonymous buyers are allowed; a signed-in buyer owns the order and
// the link it produces.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req payment.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	var buyer *models.Principal
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		buyer = &p
	}
	checkout, err := h.svc.Payments.CreateCheckout(r.Context(), buyer, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteCreated(w, r, checkout)
}

// PaymentNotify is the gateway's asynchronous callback. It answers in the
// plain-text dialect the gateway understands; anything but "success" makes
// it retry.
func (h *Handler) PaymentNotify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writePlain(w, http.StatusBadRequest, notifyFail)
		return
	}
	params := zpay.ParamsFromValues(r.Form)

	outcome, err := h.svc.Payments.Reconcile(r.Context(), params, r.RemoteAddr)
	switch {
	case errors.Is(err, models.ErrInvalidSignature):
		writePlain(w, http.StatusBadRequest, notifyInvalidSign)
	case err != nil:
		// The reconciler has already logged the failure.
		writePlain(w, http.StatusInternalServerError, notifyFail)
	case outcome.Acknowledged():
		w.Header().Set(ReconcileOutcomeHeader, string(outcome))
		writePlain(w, http.StatusOK, notifySuccess)
	default:
		writePlain(w, http.StatusOK, notifyIgnored)
	}
}

// OrderStatus lets a buyer poll an order by its business reference.
func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	outTradeNo := strings.TrimSpace(r.URL.Query().Get("out_trade_no"))
	if outTradeNo == "" {
		WriteBadRequest(w, r, "out_trade_no is required")
		return
	}
	view, err := h.svc.Payments.OrderStatus(r.Context(), outTradeNo)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, view)
}
