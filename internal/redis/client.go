package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"restaurant_pos/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client wraps the redis connection used for the kitchen readiness board and
// the menu catalog lookup. Order and idempotency state never live here.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Kitchen readiness board. The kitchen display marks each line item ready;
// the READY transition precondition checks the full set.

func (c *Client) MarkItemReady(orderID, itemID uint) error {
	ctx := context.Background()
	key := fmt.Sprintf("kitchen:ready:%d", orderID)
	return c.rdb.SAdd(ctx, key, strconv.FormatUint(uint64(itemID), 10)).Err()
}

func (c *Client) AllItemsReady(orderID uint, itemIDs []uint) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf("kitchen:ready:%d", orderID)
	for _, itemID := range itemIDs {
		ok, err := c.rdb.SIsMember(ctx, key, strconv.FormatUint(uint64(itemID), 10)).Result()
		if err != nil {
			return false, fmt.Errorf("failed to read kitchen board: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c *Client) ClearOrder(orderID uint) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, fmt.Sprintf("kitchen:ready:%d", orderID)).Err()
}

// Menu catalog lookup. The catalog service owns this data; it is loaded by
// the seed script and read here to price order items.

func (c *Client) SetMenuItem(item *models.MenuItem) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal menu item: %w", err)
	}
	return c.rdb.HSet(ctx, "menu:catalog", item.ID, jsonData).Err()
}

func (c *Client) ResolveMenuItem(menuItemID string) (*models.MenuItem, error) {
	ctx := context.Background()
	val, err := c.rdb.HGet(ctx, "menu:catalog", menuItemID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	var item models.MenuItem
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu item: %w", err)
	}
	return &item, nil
}

func (c *Client) ListMenu() ([]models.MenuItem, error) {
	ctx := context.Background()
	vals, err := c.rdb.HGetAll(ctx, "menu:catalog").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}

	items := make([]models.MenuItem, 0, len(vals))
	for _, val := range vals {
		var item models.MenuItem
		if err := json.Unmarshal([]byte(val), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
