package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/CampusDine/utils"
	razorpay "github.com/razorpay/razorpay-go"
)

// DefaultTimeout bounds every gateway call when the caller's context carries
// no deadline of its own.
const DefaultTimeout = 10 * time.Second

// RazorpayClient implements Client on the Razorpay REST API.
type RazorpayClient struct {
	client  *razorpay.Client
	timeout time.Duration
}

// NewRazorpayClient creates a RazorpayClient with the given API credentials.
func NewRazorpayClient(key, secret string) *RazorpayClient {
	return &RazorpayClient{
		client:  razorpay.NewClient(key, secret),
		timeout: DefaultTimeout,
	}
}

type callResult struct {
	data map[string]interface{}
	err  error
}

// call runs fn bounded by the context deadline. A deadline that fires while
// the request is in flight yields an Unknown error: the gateway may have
// applied the mutation even though we never saw the response.
func (r *RazorpayClient) call(ctx context.Context, op string, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ch := make(chan callResult, 1)
	go func() {
		data, err := fn()
		ch <- callResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		utils.LogWarn("Gateway call %s abandoned: %v", op, ctx.Err())
		return nil, &Error{Op: op, Unknown: true, Err: ctx.Err()}
	case res := <-ch:
		if res.err != nil {
			return nil, &Error{Op: op, Err: res.err}
		}
		return res.data, nil
	}
}

// CreateOrder creates a payment order on the gateway.
func (r *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := r.call(ctx, "order.create", func() (map[string]interface{}, error) {
		return r.client.Order.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}
	return decodeOrder(body), nil
}

// FetchPayment reads the live payment state from the gateway.
func (r *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	body, err := r.call(ctx, "payment.fetch", func() (map[string]interface{}, error) {
		return r.client.Payment.Fetch(paymentID, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return DecodePayment(body), nil
}

// CapturePayment issues an explicit capture for an authorized payment.
func (r *RazorpayClient) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*Payment, error) {
	data := map[string]interface{}{
		"currency": currency,
	}
	body, err := r.call(ctx, "payment.capture", func() (map[string]interface{}, error) {
		return r.client.Payment.Capture(paymentID, int(amount), data, nil)
	})
	if err != nil {
		return nil, err
	}
	return DecodePayment(body), nil
}

// RefundPayment issues a refund for a captured payment.
func (r *RazorpayClient) RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]interface{}) (*Refund, error) {
	data := map[string]interface{}{}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	body, err := r.call(ctx, "payment.refund", func() (map[string]interface{}, error) {
		return r.client.Payment.Refund(paymentID, int(amount), data, nil)
	})
	if err != nil {
		return nil, err
	}
	return decodeRefund(body), nil
}

// CreatePlan creates a recurring-billing plan on the gateway.
func (r *RazorpayClient) CreatePlan(ctx context.Context, period string, interval int, name string, amount int64, currency string) (*Plan, error) {
	data := map[string]interface{}{
		"period":   period,
		"interval": interval,
		"item": map[string]interface{}{
			"name":     name,
			"amount":   amount,
			"currency": currency,
		},
	}
	body, err := r.call(ctx, "plan.create", func() (map[string]interface{}, error) {
		return r.client.Plan.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}
	return decodePlan(body), nil
}

// CreateSubscription creates a subscription against a plan.
func (r *RazorpayClient) CreateSubscription(ctx context.Context, planID string, totalCount int, notes map[string]interface{}) (*Subscription, error) {
	data := map[string]interface{}{
		"plan_id":         planID,
		"total_count":     totalCount,
		"customer_notify": 1,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	body, err := r.call(ctx, "subscription.create", func() (map[string]interface{}, error) {
		return r.client.Subscription.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}
	return decodeSubscription(body), nil
}

func decodeOrder(body map[string]interface{}) *Order {
	return &Order{
		ID:       asString(body["id"]),
		Status:   asString(body["status"]),
		Amount:   asInt64(body["amount"]),
		Currency: asString(body["currency"]),
		Receipt:  asString(body["receipt"]),
	}
}

// DecodePayment decodes a gateway payment entity. The webhook processor
// reuses it for the payment entities embedded in event payloads.
func DecodePayment(body map[string]interface{}) *Payment {
	return &Payment{
		ID:        asString(body["id"]),
		OrderID:   asString(body["order_id"]),
		Status:    asString(body["status"]),
		Amount:    asInt64(body["amount"]),
		Currency:  asString(body["currency"]),
		Method:    DecodeMethod(body),
		Fee:       asInt64(body["fee"]),
		Tax:       asInt64(body["tax"]),
		Email:     asString(body["email"]),
		Contact:   asString(body["contact"]),
		CreatedAt: time.Unix(asInt64(body["created_at"]), 0),
	}
}

func decodeRefund(body map[string]interface{}) *Refund {
	return &Refund{
		ID:        asString(body["id"]),
		PaymentID: asString(body["payment_id"]),
		Amount:    asInt64(body["amount"]),
		Currency:  asString(body["currency"]),
		Status:    asString(body["status"]),
	}
}

func decodePlan(body map[string]interface{}) *Plan {
	plan := &Plan{
		ID:       asString(body["id"]),
		Period:   asString(body["period"]),
		Interval: int(asInt64(body["interval"])),
	}
	if item, ok := body["item"].(map[string]interface{}); ok {
		plan.Name = asString(item["name"])
		plan.Amount = asInt64(item["amount"])
		plan.Currency = asString(item["currency"])
	}
	return plan
}

func decodeSubscription(body map[string]interface{}) *Subscription {
	return &Subscription{
		ID:         asString(body["id"]),
		PlanID:     asString(body["plan_id"]),
		Status:     asString(body["status"]),
		TotalCount: int(asInt64(body["total_count"])),
	}
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		var out int64
		fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}
