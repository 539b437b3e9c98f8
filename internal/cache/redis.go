package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"stayops-backend/internal/models"
)

const (
	balancesKey = "inventory:balances"
	balancesTTL = 5 * time.Minute
)

// Cache is a read-through cache for the inventory balance listing. Every
// method degrades to a miss or a no-op when redis is unreachable; the
// application never depends on it being up.
type Cache struct {
	client *redis.Client
}

// New connects to redis. Returns nil (caching disabled) when addr is
// empty or the server cannot be reached.
func New(ctx context.Context, addr, password string, db int) *Cache {
	if addr == "" {
		log.Println("[Cache] redis not configured, caching disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("[Cache] redis unreachable, caching disabled: %v", err)
		return nil
	}
	log.Println("[Cache] connected to redis")
	return &Cache{client: client}
}

func (c *Cache) GetBalances(ctx context.Context) ([]*models.BalanceView, bool) {
	raw, err := c.client.Get(ctx, balancesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var balances []*models.BalanceView
	if err := json.Unmarshal(raw, &balances); err != nil {
		return nil, false
	}
	return balances, true
}

func (c *Cache) SetBalances(ctx context.Context, balances []*models.BalanceView) {
	raw, err := json.Marshal(balances)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, balancesKey, raw, balancesTTL).Err(); err != nil {
		log.Printf("[Cache] set balances failed: %v", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, balancesKey).Err(); err != nil {
		log.Printf("[Cache] invalidate failed: %v", err)
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
