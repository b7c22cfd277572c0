// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
	"github.com/tomtom215/assesslink/internal/validation"
	"github.com/tomtom215/assesslink/internal/zpay"
)

// CheckoutRequest starts a purchase of one link.
type CheckoutRequest struct {
	Name              string `json:"name" validate:"max=128"`
	Money             string `json:"money" validate:"required,money"`
	QuestionnaireType string `json:"questionnaireType" validate:"required,max=64"`
	PayType           string `json:"type" validate:"omitempty,oneof=alipay wxpay"`
	OutTradeNo        string `json:"outTradeNo" validate:"omitempty,max=64"`
	ReturnURL         string `json:"returnUrl" validate:"omitempty,url"`
}

// Checkout is a created order and the gateway URL to pay it.
type Checkout struct {
	Order  *models.Order `json:"order"`
	PayURL string        `json:"payUrl"`
}

// parseMoney accepts a positive decimal with at most two fraction digits,
// e.g. "9.9" or "12.00".
func parseMoney(s string) (string, error) {
	if !validation.IsMoney(s) {
		return "", fmt.Errorf("%w: money must be a positive amount with at most two decimals", models.ErrInvalidInput)
	}
	return s, nil
}

// CreateCheckout stores a pending order and returns the signed payment URL.
// p is nil for anonymous buyers; their paid links have no owner.
func (r *Reconciler) CreateCheckout(ctx context.Context, p *models.Principal, req CheckoutRequest) (*Checkout, error) {
	if err := r.opts.Merchant.Usable(); err != nil {
		r.security.LogConfigurationError("checkout", err.Error())
		return nil, err
	}
	money, err := parseMoney(req.Money)
	if err != nil {
		return nil, err
	}
	payType := req.PayType
	if payType == "" {
		payType = "alipay"
	}
	outTradeNo := strings.TrimSpace(req.OutTradeNo)
	if outTradeNo == "" {
		outTradeNo = database.NewOutTradeNo()
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = r.opts.ReturnURL
	}

	q, err := r.db.Questionnaires.Get(ctx, req.QuestionnaireType)
	if err != nil {
		return nil, err
	}
	if !q.IsPublished {
		return nil, fmt.Errorf("%w: questionnaire %q is not published", models.ErrInvalidInput, q.Type)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = q.Title
	}

	payURL, err := r.opts.Merchant.PaymentURL(zpay.PaymentRequest{
		Money:      money,
		Name:       name,
		NotifyURL:  r.opts.NotifyURL,
		ReturnURL:  returnURL,
		OutTradeNo: outTradeNo,
		Param:      q.Type,
		Type:       payType,
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OutTradeNo:        outTradeNo,
		Name:              name,
		Status:            models.OrderPending,
		Money:             money,
		QuestionnaireType: q.Type,
		PayType:           payType,
	}
	if p != nil {
		order.UserID = p.UserID
	}
	if err := r.db.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	metrics.RecordOrderCreated()
	logging.Ctx(ctx).Info().
		Str("out_trade_no", outTradeNo).
		Str("questionnaire", q.Type).
		Str("money", money).
		Msg("Checkout created")
	return &Checkout{Order: order, PayURL: payURL}, nil
}

// OrderStatus returns the polling view of an order.
func (r *Reconciler) OrderStatus(ctx context.Context, outTradeNo string) (*models.OrderStatusView, error) {
	outTradeNo = strings.TrimSpace(outTradeNo)
	if outTradeNo == "" {
		return nil, fmt.Errorf("%w: out_trade_no is required", models.ErrInvalidInput)
	}
	o, err := r.db.Orders.GetByBusinessReference(ctx, outTradeNo)
	if err != nil {
		return nil, err
	}
	v := o.StatusView()
	return &v, nil
}

var errNotStale = errors.New("order no longer stale")

// ExpireStale marks pending orders created more than ttl ago as failed and
// returns how many changed. A late verified notification can still settle
// a failed order.
func (r *Reconciler) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	orders, err := r.db.Orders.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := r.db.Now().Add(-ttl)
	stale := func(o *models.Order) bool {
		return o.Status == models.OrderPending && !o.CreatedAt.After(cutoff)
	}

	failed := 0
	for _, o := range orders {
		if !stale(o) {
			continue
		}
		err := r.db.Update(ctx, func(tx *store.Tx) error {
			_, err := r.db.Orders.UpdateTx(tx, o.ID, func(cur *models.Order) error {
				if !stale(cur) {
					return errNotStale
				}
				cur.Status = models.OrderFailed
				return nil
			})
			return err
		})
		switch {
		case err == nil:
			failed++
		case errors.Is(err, errNotStale), errors.Is(err, models.ErrNotFound):
		default:
			metrics.RecordSweep("orders", failed)
			return failed, err
		}
	}
	metrics.RecordSweep("orders", failed)
	if failed > 0 {
		logging.Ctx(ctx).Info().Int("failed", failed).Msg("Expired stale orders")
	}
	return failed, nil
}
