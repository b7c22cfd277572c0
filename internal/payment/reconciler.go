// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/assesslink/internal/cache"
	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/events"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
	"github.com/tomtom215/assesslink/internal/zpay"
)

// Outcome is the result of reconciling one notification.
type Outcome string

const (
	// OutcomeProcessed: the order was pending (or failed) and is now paid.
	OutcomeProcessed Outcome = "processed"
	// OutcomeAlreadyPaid: a replay; nothing changed.
	OutcomeAlreadyPaid Outcome = "already_paid"
	// OutcomeUnknownOrder: no order matches out_trade_no. Acknowledged so
	// the gateway stops retrying.
	OutcomeUnknownOrder Outcome = "unknown_order"
	// OutcomeIgnored: trade_status was not TRADE_SUCCESS.
	OutcomeIgnored Outcome = "ignored"
)

// Acknowledged reports whether the gateway should be told "success".
func (o Outcome) Acknowledged() bool {
	return o == OutcomeProcessed || o == OutcomeAlreadyPaid || o == OutcomeUnknownOrder
}

// Options configures a Reconciler.
type Options struct {
	Merchant      zpay.Merchant
	NotifyURL     string
	ReturnURL     string
	PublicBaseURL string
}

// OptionsFrom builds Options from application config.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Merchant: zpay.Merchant{
			PID:        cfg.Payment.PID,
			Key:        cfg.Payment.Key,
			GatewayURL: cfg.Payment.GatewayURL,
		},
		NotifyURL:     cfg.Payment.NotifyURL,
		ReturnURL:     cfg.Payment.ReturnURL,
		PublicBaseURL: cfg.Server.PublicBaseURL,
	}
}

// Reconciler turns gateway notifications into paid orders and links.
type Reconciler struct {
	db        *database.DB
	opts      Options
	publisher events.Publisher
	security  *logging.SecurityLogger
	// settled remembers recently paid out_trade_no values so gateway
	// retries are acknowledged without a store transaction.
	settled *cache.LRU[string]
}

// NewReconciler returns a Reconciler. A nil publisher drops events.
func NewReconciler(db *database.DB, publisher events.Publisher, opts Options) *Reconciler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Reconciler{
		db:        db,
		opts:      opts,
		publisher: publisher,
		security:  logging.NewSecurityLogger(),
		settled:   cache.NewLRU[string](4096, 15*time.Minute),
	}
}

// SetSecurityLogger replaces the security event sink. Tests only.
func (r *Reconciler) SetSecurityLogger(l *logging.SecurityLogger) {
	r.security = l
}

func (r *Reconciler) linkURL(id string) string {
	return r.opts.PublicBaseURL + "/test/" + id
}

// Reconcile verifies and applies one notification. remoteIP is only logged.
//
// The signature is checked before any state is read. A verified
// TRADE_SUCCESS for a pending or failed order creates a prepaid link and
// marks the order paid in the same transaction.
func (r *Reconciler) Reconcile(ctx context.Context, params zpay.Params, remoteIP string) (Outcome, error) {
	outTradeNo := strings.TrimSpace(params.Get(zpay.FieldOutTradeNo))

	if err := r.opts.Merchant.Usable(); err != nil {
		r.security.LogConfigurationError("reconcile", err.Error())
		metrics.RecordPaymentNotification("config_error")
		return "", err
	}
	if err := r.opts.Merchant.Verify(params); err != nil {
		r.security.LogInvalidSignature(outTradeNo, params.Get(zpay.FieldSign), remoteIP)
		metrics.RecordPaymentNotification("invalid_signature")
		return "", err
	}
	if params.Get(zpay.FieldTradeStatus) != zpay.TradeSuccess {
		metrics.RecordPaymentNotification(string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}
	if outTradeNo == "" {
		metrics.RecordPaymentNotification(string(OutcomeUnknownOrder))
		return OutcomeUnknownOrder, nil
	}
	if _, ok := r.settled.Get(outTradeNo); ok {
		metrics.RecordPaymentNotification(string(OutcomeAlreadyPaid))
		return OutcomeAlreadyPaid, nil
	}

	var (
		outcome Outcome
		paid    events.OrderPaid
	)
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		order, err := r.db.Orders.GetByBusinessReferenceTx(tx, outTradeNo)
		if errors.Is(err, models.ErrNotFound) {
			outcome = OutcomeUnknownOrder
			return nil
		}
		if err != nil {
			return err
		}
		if order.Status == models.OrderPaid {
			outcome = OutcomeAlreadyPaid
			return nil
		}
		if money := params.Get("money"); money != "" && money != order.Money {
			logging.Ctx(ctx).Warn().
				Str("out_trade_no", outTradeNo).
				Str("order_money", order.Money).
				Str("notified_money", money).
				Msg("Notified amount differs from order")
		}

		// Paid orders buy exactly one link; the quota ledger is not involved.
		id := r.db.Links.NewLinkID()
		link := &models.Link{
			ID:                id,
			URL:               r.linkURL(id),
			QuestionnaireType: order.QuestionnaireType,
			Status:            models.LinkUnused,
			CreatedBy:         order.UserID,
			Source:            models.SourcePayment,
			OrderID:           order.ID,
		}
		if err := r.db.Links.CreateTx(tx, link); err != nil {
			return err
		}

		now := r.db.Now()
		tradeNo := params.Get(zpay.FieldTradeNo)
		updated, err := r.db.Orders.UpdateTx(tx, order.ID, func(o *models.Order) error {
			o.Status = models.OrderPaid
			o.TradeNo = tradeNo
			o.PaidAt = &now
			o.LinkID = link.ID
			return nil
		})
		if err != nil {
			return err
		}

		outcome = OutcomeProcessed
		paid = events.OrderPaid{
			OrderID:           updated.ID,
			OutTradeNo:        updated.OutTradeNo,
			UserID:            updated.UserID,
			LinkID:            link.ID,
			QuestionnaireType: updated.QuestionnaireType,
			Money:             updated.Money,
			PaidAt:            now,
		}
		tx.OnCommit(func() {
			metrics.RecordLinksIssued(string(models.SourcePayment), 1)
		})
		return nil
	})
	if err != nil {
		metrics.RecordPaymentNotification("error")
		logging.Ctx(ctx).Error().Err(err).Str("out_trade_no", outTradeNo).Msg("Failed to reconcile payment")
		return "", err
	}

	if outcome == OutcomeProcessed || outcome == OutcomeAlreadyPaid {
		r.settled.Add(outTradeNo, params.Get(zpay.FieldTradeNo))
	}
	metrics.RecordPaymentNotification(string(outcome))
	log := logging.Ctx(ctx).Info().Str("out_trade_no", outTradeNo).Str("outcome", string(outcome))
	if outcome == OutcomeProcessed {
		log = log.Str("link_id", paid.LinkID)
		if err := r.publisher.Publish(ctx, events.TopicOrderPaid, paid); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("out_trade_no", outTradeNo).Msg("Failed to publish order.paid")
		}
	}
	log.Msg("Payment notification reconciled")
	return outcome, nil
}
