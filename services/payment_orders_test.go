package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/Govind-619/CampusDine/cache"
	"github.com/Govind-619/CampusDine/gateway"
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentOrderFixture() (*PaymentOrderService, *fakeGateway, *memPaymentOrderRepo) {
	gw := &fakeGateway{}
	orders := newMemPaymentOrderRepo()
	users := newMemUserRepo(testUser(1))
	svc := NewPaymentOrderService(gw, orders, users, cache.NewMemoryStore(), 100)
	return svc, gw, orders
}

func TestCreatePaymentOrder(t *testing.T) {
	svc, gw, orders := newPaymentOrderFixture()

	order, appErr := svc.Create(context.Background(), CreateParams{
		UserID: 1,
		Amount: 1000000, // Rs 10,000 in paise
	})
	require.Nil(t, appErr)

	assert.Equal(t, "order_fake001", order.GatewayOrderID)
	assert.Equal(t, int64(1000000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, models.PaymentOrderStatusCreated, order.Status)
	assert.False(t, order.ExpiresAt.IsZero())
	assert.Equal(t, 1, gw.createOrderCalls)

	stored, err := orders.ByGatewayOrderID(context.Background(), "order_fake001")
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
}

func TestCreatePaymentOrderBelowMinimum(t *testing.T) {
	svc, gw, orders := newPaymentOrderFixture()

	_, appErr := svc.Create(context.Background(), CreateParams{UserID: 1, Amount: 50})
	require.NotNil(t, appErr)
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Equal(t, 0, gw.createOrderCalls, "amount check happens before any gateway call")
	assert.Empty(t, orders.rows)
}

func TestCreatePaymentOrderUnknownUser(t *testing.T) {
	svc, gw, _ := newPaymentOrderFixture()

	_, appErr := svc.Create(context.Background(), CreateParams{UserID: 42, Amount: 1000})
	require.NotNil(t, appErr)
	assert.Equal(t, utils.KindNotFound, appErr.Kind)
	assert.Equal(t, 0, gw.createOrderCalls)
}

func TestCreatePaymentOrderBlockedUser(t *testing.T) {
	gw := &fakeGateway{}
	blocked := testUser(2)
	blocked.IsBlocked = true
	svc := NewPaymentOrderService(gw, newMemPaymentOrderRepo(), newMemUserRepo(blocked), cache.NewMemoryStore(), 100)

	_, appErr := svc.Create(context.Background(), CreateParams{UserID: 2, Amount: 1000})
	require.NotNil(t, appErr)
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Equal(t, 0, gw.createOrderCalls)
}

func TestCreatePaymentOrderGatewayFailure(t *testing.T) {
	svc, gw, orders := newPaymentOrderFixture()
	gw.createOrderFunc = func(amount int64, currency, receipt string) (*gateway.Order, error) {
		return nil, errors.New("gateway 500")
	}

	_, appErr := svc.Create(context.Background(), CreateParams{UserID: 1, Amount: 1000})
	require.NotNil(t, appErr)
	assert.Equal(t, utils.KindGateway, appErr.Kind)
	assert.Empty(t, orders.rows, "gateway failure before persistence leaves no local row")
}

func TestCreatePaymentOrderTimeoutIsUnknown(t *testing.T) {
	svc, gw, _ := newPaymentOrderFixture()
	gw.createOrderFunc = func(amount int64, currency, receipt string) (*gateway.Order, error) {
		return nil, &gateway.Error{Op: "order.create", Unknown: true, Err: context.DeadlineExceeded}
	}

	_, appErr := svc.Create(context.Background(), CreateParams{UserID: 1, Amount: 1000})
	require.NotNil(t, appErr)
	assert.Equal(t, utils.KindUnknown, appErr.Kind, "a timed-out create is unresolved, not failed")
}

func TestCreatePaymentOrderLocalInsertFailure(t *testing.T) {
	svc, _, orders := newPaymentOrderFixture()
	orders.createErr = errors.New("db down")

	_, appErr := svc.Create(context.Background(), CreateParams{UserID: 1, Amount: 1000})
	require.NotNil(t, appErr)
	assert.Equal(t, utils.KindTransient, appErr.Kind)
}

func TestGeneratedReceiptFormat(t *testing.T) {
	svc, _, _ := newPaymentOrderFixture()

	order, appErr := svc.Create(context.Background(), CreateParams{UserID: 1, Amount: 1000})
	require.Nil(t, appErr)
	assert.Regexp(t, regexp.MustCompile(`^receipt_\d+_[0-9a-f]{8}$`), order.Receipt)
}

func TestGetPaymentOrderCacheThrough(t *testing.T) {
	svc, _, orders := newPaymentOrderFixture()

	created, appErr := svc.Create(context.Background(), CreateParams{UserID: 1, Amount: 1000})
	require.Nil(t, appErr)

	// Mutate storage behind the cache; the cached copy should answer.
	require.NoError(t, orders.SetStatus(context.Background(), created.GatewayOrderID, models.PaymentOrderStatusExpired))

	got, appErr := svc.Get(context.Background(), created.GatewayOrderID)
	require.Nil(t, appErr)
	assert.Equal(t, models.PaymentOrderStatusCreated, got.Status, "served from cache")

	// After invalidation the read falls through to storage.
	svc.Invalidate(context.Background(), created.GatewayOrderID)
	got, appErr = svc.Get(context.Background(), created.GatewayOrderID)
	require.Nil(t, appErr)
	assert.Equal(t, models.PaymentOrderStatusExpired, got.Status)
}

func TestGetPaymentOrderNotFound(t *testing.T) {
	svc, _, _ := newPaymentOrderFixture()

	_, appErr := svc.Get(context.Background(), "order_missing")
	require.NotNil(t, appErr)
	assert.Equal(t, utils.KindNotFound, appErr.Kind)
}

func TestMarkPaidInvalidatesCache(t *testing.T) {
	svc, _, _ := newPaymentOrderFixture()

	created, appErr := svc.Create(context.Background(), CreateParams{UserID: 1, Amount: 1000})
	require.Nil(t, appErr)

	require.NoError(t, svc.MarkPaid(context.Background(), created.GatewayOrderID))

	got, appErr := svc.Get(context.Background(), created.GatewayOrderID)
	require.Nil(t, appErr)
	assert.Equal(t, models.PaymentOrderStatusPaid, got.Status)
}
