package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/models"
)

// fakeGateway implements gateway.Client in memory. Each operation counts
// its calls so tests can assert that a rejected request never reached the
// gateway.
type fakeGateway struct {
	mu sync.Mutex

	createOrderCalls int
	fetchCalls       int
	captureCalls     int
	refundCalls      int

	createOrderFunc func(amount int64, currency, receipt string) (*gateway.Order, error)
	fetchFunc       func(paymentID string) (*gateway.Payment, error)
	captureFunc     func(paymentID string, amount int64) (*gateway.Payment, error)
	refundFunc      func(paymentID string, amount int64) (*gateway.Refund, error)
	planFunc        func(period string, interval int, name string, amount int64) (*gateway.Plan, error)
	subFunc         func(planID string, totalCount int) (*gateway.Subscription, error)
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*gateway.Order, error) {
	f.mu.Lock()
	f.createOrderCalls++
	f.mu.Unlock()
	if f.createOrderFunc != nil {
		return f.createOrderFunc(amount, currency, receipt)
	}
	return &gateway.Order{ID: "order_fake001", Status: gateway.OrderStatusCreated, Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (f *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.fetchFunc != nil {
		return f.fetchFunc(paymentID)
	}
	return &gateway.Payment{ID: paymentID, Status: gateway.PaymentAuthorized}, nil
}

func (f *fakeGateway) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*gateway.Payment, error) {
	f.mu.Lock()
	f.captureCalls++
	f.mu.Unlock()
	if f.captureFunc != nil {
		return f.captureFunc(paymentID, amount)
	}
	return &gateway.Payment{ID: paymentID, Status: gateway.PaymentCaptured, Amount: amount, Currency: currency}, nil
}

func (f *fakeGateway) RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]interface{}) (*gateway.Refund, error) {
	f.mu.Lock()
	f.refundCalls++
	n := f.refundCalls
	f.mu.Unlock()
	if f.refundFunc != nil {
		return f.refundFunc(paymentID, amount)
	}
	return &gateway.Refund{ID: fmt.Sprintf("rfnd_fake%03d", n), PaymentID: paymentID, Amount: amount, Status: gateway.RefundPending}, nil
}

func (f *fakeGateway) CreatePlan(ctx context.Context, period string, interval int, name string, amount int64, currency string) (*gateway.Plan, error) {
	if f.planFunc != nil {
		return f.planFunc(period, interval, name, amount)
	}
	return &gateway.Plan{ID: "plan_fake001", Period: period, Interval: interval, Name: name, Amount: amount, Currency: currency}, nil
}

func (f *fakeGateway) CreateSubscription(ctx context.Context, planID string, totalCount int, notes map[string]interface{}) (*gateway.Subscription, error) {
	if f.subFunc != nil {
		return f.subFunc(planID, totalCount)
	}
	return &gateway.Subscription{ID: "sub_fake001", PlanID: planID, Status: "created", TotalCount: totalCount}, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uint]models.User
}

func newMemUserRepo(users ...models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uint]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNoRows
	}
	out := u
	return &out, nil
}

type memPaymentOrderRepo struct {
	mu        sync.Mutex
	nextID    uint
	rows      map[uint]models.PaymentOrder
	createErr error
}

func newMemPaymentOrderRepo() *memPaymentOrderRepo {
	return &memPaymentOrderRepo{rows: make(map[uint]models.PaymentOrder)}
}

func (r *memPaymentOrderRepo) Create(ctx context.Context, order *models.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	order.ID = r.nextID
	r.rows[order.ID] = *order
	return nil
}

func (r *memPaymentOrderRepo) ByID(ctx context.Context, id uint) (*models.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNoRows
	}
	out := row
	return &out, nil
}

func (r *memPaymentOrderRepo) ByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GatewayOrderID == gatewayOrderID {
			out := row
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

func (r *memPaymentOrderRepo) SetStatus(ctx context.Context, gatewayOrderID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.GatewayOrderID == gatewayOrderID {
			row.Status = status
			r.rows[id] = row
			return nil
		}
	}
	return ErrNoRows
}

func (r *memPaymentOrderRepo) ExpireCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []models.PaymentOrder
	for id, row := range r.rows {
		if row.Status == models.PaymentOrderStatusCreated && row.ExpiresAt.Before(cutoff) {
			row.Status = models.PaymentOrderStatusExpired
			r.rows[id] = row
			expired = append(expired, row)
		}
	}
	return expired, nil
}

type memTransactionRepo struct {
	mu            sync.Mutex
	nextID        uint
	rows          map[uint]models.PaymentTransaction
	paymentOrders *memPaymentOrderRepo
}

func newMemTransactionRepo(paymentOrders *memPaymentOrderRepo) *memTransactionRepo {
	return &memTransactionRepo{rows: make(map[uint]models.PaymentTransaction), paymentOrders: paymentOrders}
}

func (r *memTransactionRepo) ByID(ctx context.Context, id uint) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNoRows
	}
	out := row
	return &out, nil
}

func (r *memTransactionRepo) ByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GatewayPaymentID == gatewayPaymentID {
			out := row
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

func (r *memTransactionRepo) Upsert(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GatewayPaymentID == txn.GatewayPaymentID {
			out := row
			return &out, false, nil
		}
	}
	r.nextID++
	txn.ID = r.nextID
	txn.Version = 1
	r.rows[txn.ID] = *txn
	out := *txn
	return &out, true, nil
}

func (r *memTransactionRepo) ApplyStatusIfNewer(ctx context.Context, gatewayPaymentID, status string, eventTime time.Time, refundedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.GatewayPaymentID != gatewayPaymentID {
			continue
		}
		if eventTime.Before(row.EventTime) {
			return false, nil
		}
		row.Status = status
		row.EventTime = eventTime
		if refundedAt != nil {
			row.RefundedAt = refundedAt
		}
		row.Version++
		r.rows[id] = row
		return true, nil
	}
	return false, ErrNoRows
}

func (r *memTransactionRepo) CapturedForOrder(ctx context.Context, orderID uint) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	rows := make([]models.PaymentTransaction, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row)
	}
	r.mu.Unlock()

	for _, row := range rows {
		if row.Status != models.TransactionStatusCaptured {
			continue
		}
		po, err := r.paymentOrders.ByID(ctx, row.PaymentOrderID)
		if err != nil {
			continue
		}
		if po.OrderID != nil && *po.OrderID == orderID {
			out := row
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

type memRefundRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.PaymentRefund
}

func newMemRefundRepo() *memRefundRepo {
	return &memRefundRepo{rows: make(map[uint]models.PaymentRefund)}
}

func (r *memRefundRepo) Create(ctx context.Context, refund *models.PaymentRefund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	refund.ID = r.nextID
	r.rows[refund.ID] = *refund
	return nil
}

func (r *memRefundRepo) ByGatewayRefundID(ctx context.Context, gatewayRefundID string) (*models.PaymentRefund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GatewayRefundID == gatewayRefundID {
			out := row
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

func (r *memRefundRepo) TotalRefunded(ctx context.Context, paymentID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, row := range r.rows {
		if row.PaymentID == paymentID && row.Status != models.RefundStatusFailed {
			total += row.Amount
		}
	}
	return total, nil
}

func (r *memRefundRepo) Settle(ctx context.Context, gatewayRefundID, status string, processedAt time.Time) (*models.PaymentRefund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.GatewayRefundID != gatewayRefundID {
			continue
		}
		if row.Status == models.RefundStatusPending {
			row.Status = status
			row.ProcessedAt = &processedAt
			r.rows[id] = row
		}
		out := r.rows[id]
		return &out, nil
	}
	return nil, ErrNoRows
}

type memOrderRepo struct {
	mu   sync.Mutex
	rows map[uint]models.Order
}

func newMemOrderRepo(orders ...models.Order) *memOrderRepo {
	r := &memOrderRepo{rows: make(map[uint]models.Order)}
	for _, o := range orders {
		r.rows[o.ID] = o
	}
	return r
}

func (r *memOrderRepo) ByID(ctx context.Context, id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNoRows
	}
	out := row
	return &out, nil
}

func (r *memOrderRepo) CompareAndSetStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return false, ErrNoRows
	}
	if row.Status != from {
		return false, nil
	}
	row.Status = to
	r.rows[id] = row
	return true, nil
}

func (r *memOrderRepo) SetCancellationReason(ctx context.Context, id uint, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return ErrNoRows
	}
	row.CancellationReason = reason
	r.rows[id] = row
	return nil
}

type memWebhookEventRepo struct {
	mu   sync.Mutex
	rows map[string]models.WebhookEvent
}

func newMemWebhookEventRepo() *memWebhookEventRepo {
	return &memWebhookEventRepo{rows: make(map[string]models.WebhookEvent)}
}

func (r *memWebhookEventRepo) Record(ctx context.Context, event *models.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[event.EventID]; exists {
		return nil
	}
	r.rows[event.EventID] = *event
	return nil
}

func (r *memWebhookEventRepo) Finish(ctx context.Context, eventID, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[eventID]
	if !ok {
		return ErrNoRows
	}
	now := time.Now()
	row.ProcessedAt = &now
	row.ProcessingError = processingError
	r.rows[eventID] = row
	return nil
}

type memPlanRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{rows: make(map[uint]models.Plan)}
}

func (r *memPlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	plan.ID = r.nextID
	r.rows[plan.ID] = *plan
	return nil
}

func (r *memPlanRepo) ByGatewayPlanID(ctx context.Context, gatewayPlanID string) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GatewayPlanID == gatewayPlanID {
			out := row
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

type memSubscriptionRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.Subscription
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{rows: make(map[uint]models.Subscription)}
}

func (r *memSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	sub.ID = r.nextID
	r.rows[sub.ID] = *sub
	return nil
}

func (r *memSubscriptionRepo) ByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GatewaySubscriptionID == gatewaySubscriptionID {
			out := row
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

func (r *memSubscriptionRepo) ApplyCharge(ctx context.Context, gatewaySubscriptionID string, chargedAt time.Time, paidCount int, currentStart, currentEnd *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.GatewaySubscriptionID != gatewaySubscriptionID {
			continue
		}
		if row.ChargedAt != nil && chargedAt.Before(*row.ChargedAt) {
			return false, nil
		}
		row.ChargedAt = &chargedAt
		row.PaidCount = paidCount
		row.CurrentStart = currentStart
		row.CurrentEnd = currentEnd
		row.Status = models.SubscriptionStatusActive
		r.rows[id] = row
		return true, nil
	}
	return false, ErrNoRows
}

// recordingNotifier records every notification instead of sending email.
type recordingNotifier struct {
	mu            sync.Mutex
	statusChanges []string
	captures      []string
	refunds       []string
	err           error
}

func (n *recordingNotifier) OrderStatusChanged(order *models.Order, previous string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusChanges = append(n.statusChanges, previous+"->"+order.Status)
	return n.err
}

func (n *recordingNotifier) PaymentCaptured(user *models.User, txn *models.PaymentTransaction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.captures = append(n.captures, txn.GatewayPaymentID)
	return n.err
}

func (n *recordingNotifier) RefundSettled(user *models.User, refund *models.PaymentRefund) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunds = append(n.refunds, refund.GatewayRefundID)
	return n.err
}

func testUser(id uint) models.User {
	u := models.User{
		Username:  fmt.Sprintf("student%d", id),
		Email:     fmt.Sprintf("student%d@campus.edu", id),
		FirstName: "Asha",
		LastName:  "Nair",
		StudentID: fmt.Sprintf("S%04d", id),
	}
	u.ID = id
	return u
}
