package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// upsertScript writes the values and updated_at only when the values changed.
// KEYS[1] = row key, ARGV[1] = encoded values, ARGV[2] = updated_at, ARGV[3] = ttl ms (0 = none).
var upsertScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'v')
if current == ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'updated_at', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// rowValues is the encoded form of a row's cached values.
type rowValues struct {
	MaxRed     [domain.CachedAttempts]int `json:"max_red"`
	MaxGreen   [domain.CachedAttempts]int `json:"max_green"`
	TotalSpins int                        `json:"total_spins"`
}

// DailyStreakStore implements storage.DailyStreakStore on Redis hashes.
type DailyStreakStore struct {
	client *Client
	ttl    time.Duration
}

// NewDailyStreakStore creates a new DailyStreakStore. A zero ttl keeps rows forever.
func NewDailyStreakStore(client *Client, ttl time.Duration) *DailyStreakStore {
	return &DailyStreakStore{client: client, ttl: ttl}
}

// Compile-time interface check.
var _ storage.DailyStreakStore = (*DailyStreakStore)(nil)

// Get retrieves a row by its composite key. Returns ErrNotFound if not exists.
func (s *DailyStreakStore) Get(ctx context.Context, key domain.DailyStreakKey) (*domain.DailyStreakRow, error) {
	fields, err := s.client.HMGet(ctx, s.rowKey(key), "v", "updated_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get daily streak: %w", err)
	}

	encoded, ok := fields[0].(string)
	if !ok {
		return nil, storage.ErrNotFound
	}

	var v rowValues
	if err := json.Unmarshal([]byte(encoded), &v); err != nil {
		return nil, fmt.Errorf("decode daily streak: %w", err)
	}

	row := &domain.DailyStreakRow{
		RouletteID: key.RouletteID,
		StrategyID: key.StrategyID,
		Day:        key.Day,
		MaxRed:     v.MaxRed,
		MaxGreen:   v.MaxGreen,
		TotalSpins: v.TotalSpins,
	}
	if updated, ok := fields[1].(string); ok {
		row.UpdatedAt, _ = strconv.ParseInt(updated, 10, 64)
	}
	return row, nil
}

// Upsert replaces the row for its key. Identical values leave the row untouched.
func (s *DailyStreakStore) Upsert(ctx context.Context, row *domain.DailyStreakRow) error {
	if row == nil || row.RouletteID == "" || row.StrategyID == "" || !domain.ValidDay(row.Day) {
		return storage.ErrInvalidInput
	}

	encoded, err := json.Marshal(rowValues{
		MaxRed:     row.MaxRed,
		MaxGreen:   row.MaxGreen,
		TotalSpins: row.TotalSpins,
	})
	if err != nil {
		return fmt.Errorf("encode daily streak: %w", err)
	}

	err = upsertScript.Run(ctx, s.client, []string{s.rowKey(row.Key())},
		string(encoded), time.Now().UnixMilli(), s.ttl.Milliseconds(),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("upsert daily streak: %w", err)
	}
	return nil
}

func (s *DailyStreakStore) rowKey(key domain.DailyStreakKey) string {
	return s.client.wrapKey("daily", key.RouletteID, key.StrategyID, key.Day)
}
