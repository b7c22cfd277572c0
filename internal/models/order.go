// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package models

import "time"

// OrderStatus is the payment state of an order.
type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// Order is a checkout awaiting (or having received) gateway confirmation.
// LinkID is set if and only if Status is OrderPaid.
type Order struct {
	ID                string      `json:"id"`
	OutTradeNo        string      `json:"outTradeNo"`
	Name              string      `json:"name"`
	Status            OrderStatus `json:"status"`
	Money             string      `json:"money"`
	QuestionnaireType string      `json:"questionnaireType"`
	PayType           string      `json:"payType"`
	UserID            string      `json:"userId,omitempty"`
	TradeNo           string      `json:"tradeNo,omitempty"`
	LinkID            string      `json:"linkId,omitempty"`
	PaidAt            *time.Time  `json:"paidAt,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// OrderStatusView is the polling response for an order.
type OrderStatusView struct {
	OutTradeNo        string      `json:"outTradeNo"`
	Status            OrderStatus `json:"status"`
	QuestionnaireType string      `json:"questionnaireType"`
	LinkID            *string     `json:"linkId"`
}

// StatusView projects the order for polling clients; linkId is null until paid.
func (o *Order) StatusView() OrderStatusView {
	v := OrderStatusView{
		OutTradeNo:        o.OutTradeNo,
		Status:            o.Status,
		QuestionnaireType: o.QuestionnaireType,
	}
	if o.LinkID != "" {
		id := o.LinkID
		v.LinkID = &id
	}
	return v
}
