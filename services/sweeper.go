package services

import (
	"context"
	"time"

	"github.com/Govind-619/CampusDine/cache"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/robfig/cron/v3"
)

// ExpirySweeper periodically marks `created` payment orders past their
// expiry as expired and drops their cache entries. It doubles as the
// reconciliation hook for gateway orders that never got paid.
type ExpirySweeper struct {
	orders PaymentOrderRepo
	store  cache.Store
	cron   *cron.Cron
}

// NewExpirySweeper creates an ExpirySweeper.
func NewExpirySweeper(orders PaymentOrderRepo, store cache.Store) *ExpirySweeper {
	return &ExpirySweeper{orders: orders, store: store}
}

// Sweep runs one pass and returns how many rows it expired.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.orders.ExpireCreatedBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, order := range expired {
		utils.LogInfo("Expired payment order - ID: %d, Gateway Order ID: %s", order.ID, order.GatewayOrderID)
		if derr := s.store.Delete(ctx, paymentOrderCacheKey(order.GatewayOrderID)); derr != nil {
			utils.LogWarn("Failed to drop cache for expired order %s: %v", order.GatewayOrderID, derr)
		}
	}
	return len(expired), nil
}

// Start schedules the sweep every minute. Call Stop to shut it down.
func (s *ExpirySweeper) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if n, serr := s.Sweep(ctx); serr != nil {
			utils.LogError("Expiry sweep failed: %v", serr)
		} else if n > 0 {
			utils.LogInfo("Expiry sweep marked %d payment orders expired", n)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	utils.LogInfo("Expiry sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
