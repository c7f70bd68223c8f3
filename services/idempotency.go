package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Govind-619/CampusDine/cache"
	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/utils"
)

// DefaultIdempotencyTTL is how long a key guards against replays. Gateways
// redeliver webhooks for about a day; client retries are much shorter.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyService deduplicates repeated requests and webhook deliveries
// on top of the TTL key-value store. Register is atomic: of any number of
// concurrent callers with the same key, exactly one observes isNew=true.
type IdempotencyService struct {
	store cache.Store
}

// NewIdempotencyService creates an IdempotencyService on the given store.
func NewIdempotencyService(store cache.Store) *IdempotencyService {
	return &IdempotencyService{store: store}
}

func idempotencyKey(scope, key string) string {
	return "idem:" + scope + ":" + key
}

// Register claims key within scope. If the key is new a pending placeholder
// is written and isNew is true; otherwise the live record is returned for
// replay (or for the caller to reject as in-flight if not yet completed).
func (s *IdempotencyService) Register(ctx context.Context, scope, key string, ttl time.Duration) (bool, *models.IdempotencyRecord, error) {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	now := time.Now()
	pending := models.IdempotencyRecord{
		Key:       key,
		Scope:     scope,
		Completed: false,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return false, nil, err
	}

	storeKey := idempotencyKey(scope, key)

	// SetNX is the whole point: a read-then-write here would let two
	// concurrent callers both see "not found".
	isNew, err := s.store.SetNX(ctx, storeKey, payload, ttl)
	if err != nil {
		return false, nil, err
	}
	if isNew {
		utils.LogDebug("Registered idempotency key %s in scope %s", key, scope)
		return true, &pending, nil
	}

	raw, err := s.store.Get(ctx, storeKey)
	if err == cache.ErrNotFound {
		// The record expired between SetNX and Get. Claim it fresh.
		isNew, err = s.store.SetNX(ctx, storeKey, payload, ttl)
		if err != nil {
			return false, nil, err
		}
		if isNew {
			return true, &pending, nil
		}
		raw, err = s.store.Get(ctx, storeKey)
	}
	if err != nil {
		return false, nil, err
	}

	var record models.IdempotencyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return false, nil, err
	}
	utils.LogInfo("Duplicate idempotency key %s in scope %s (completed=%v)", key, scope, record.Completed)
	return false, &record, nil
}

// Complete attaches the final outcome to the record so later duplicates
// replay it instead of reprocessing.
func (s *IdempotencyService) Complete(ctx context.Context, scope, key string, statusCode int, response []byte, remaining time.Duration) error {
	if remaining <= 0 {
		remaining = DefaultIdempotencyTTL
	}

	now := time.Now()
	record := models.IdempotencyRecord{
		Key:        key,
		Scope:      scope,
		StatusCode: statusCode,
		Response:   string(response),
		Completed:  true,
		CreatedAt:  now,
		ExpiresAt:  now.Add(remaining),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, idempotencyKey(scope, key), payload, remaining)
}

// Release drops a pending claim so a later retry can reprocess. Used when
// processing failed transiently and redelivery should be allowed through.
func (s *IdempotencyService) Release(ctx context.Context, scope, key string) error {
	return s.store.Delete(ctx, idempotencyKey(scope, key))
}
