// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package zpay

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/assesslink/internal/models"
)

// DefaultGatewayURL is the zpay checkout endpoint.
const DefaultGatewayURL = "https://zpayz.cn/submit.php"

// Merchant holds the credentials used to sign outbound and verify inbound parameters.
type Merchant struct {
	PID        string
	Key        string
	GatewayURL string
}

// PaymentRequest describes one checkout.
type PaymentRequest struct {
	Money      string
	Name       string
	NotifyURL  string
	ReturnURL  string
	OutTradeNo string
	// Param is echoed back by the gateway; it carries the questionnaire type.
	Param string
	// Type is the payment channel: alipay or wxpay.
	Type string
}

// Usable reports whether the merchant key passes CheckSecret.
func (m Merchant) Usable() error {
	return CheckSecret(m.Key)
}

// Sign signs p with the merchant key after checking the key is usable.
func (m Merchant) Sign(p Params) (string, error) {
	if err := m.Usable(); err != nil {
		return "", err
	}
	return Sign(p, m.Key), nil
}

// Verify checks the merchant key, then the signature on p.
// It returns models.ErrConfiguration or models.ErrInvalidSignature on failure.
func (m Merchant) Verify(p Params) error {
	if err := m.Usable(); err != nil {
		return err
	}
	if !Verify(p, m.Key) {
		return models.ErrInvalidSignature
	}
	return nil
}

// PaymentURL builds the signed submit.php URL the buyer is redirected to.
func (m Merchant) PaymentURL(req PaymentRequest) (string, error) {
	payType := req.Type
	if payType == "" {
		payType = "alipay"
	}
	params := Params{
		"money":        req.Money,
		"name":         req.Name,
		"notify_url":   req.NotifyURL,
		"out_trade_no": req.OutTradeNo,
		"param":        req.Param,
		"pid":          m.PID,
		"return_url":   req.ReturnURL,
		"type":         payType,
	}
	sign, err := m.Sign(params)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set(FieldSign, sign)
	q.Set(FieldSignType, SignTypeMD5)

	gateway := m.GatewayURL
	if gateway == "" {
		gateway = DefaultGatewayURL
	}
	u, err := url.Parse(gateway)
	if err != nil {
		return "", fmt.Errorf("%w: gateway url: %w", models.ErrConfiguration, err)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
