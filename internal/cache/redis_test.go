package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	c := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return c, mr, cleanup
}

func testCart(userID string) *domain.Cart {
	return &domain.Cart{
		UserID: userID,
		Items: []domain.CartLine{
			{Ref: domain.CatalogRef{ID: "p1", Kind: domain.KindPart}, Price: 45.99, Quantity: 2},
			{Ref: domain.CatalogRef{ID: "a7", Kind: domain.KindProduct}, Price: 24.99, Quantity: 1},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGet_Success(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"

	cartJSON, _ := json.Marshal(testCart(userID))
	mr.Set(cacheKey(userID), string(cartJSON))

	result, err := c.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, "p1", result.Items[0].Ref.ID)
	assert.Equal(t, domain.KindPart, result.Items[0].Ref.Kind)
}

func TestGet_CacheMiss(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := c.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(cacheKey("user123"), "not json at all")

	result, err := c.Get(context.Background(), "user123")
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSet_ThenGet(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cart := testCart("user123")

	require.NoError(t, c.Set(ctx, "user123", cart))

	// TTL is in the 15-20 minute band
	ttl := mr.TTL(cacheKey("user123"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)

	result, err := c.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestDelete(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "user123", testCart("user123")))
	require.NoError(t, c.Delete(ctx, "user123"))

	_, err := c.Get(ctx, "user123")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete_MissingKeyIsFine(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, c.Delete(context.Background(), "nonexistent"))
}
