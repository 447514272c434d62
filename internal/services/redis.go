package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// SetDriverLocation stores driver location in Redis
func SetDriverLocation(ctx context.Context, driverID uint, lat, lng float64) error {
	if RedisClient == nil {
		return nil
	}

	locationData := map[string]interface{}{
		"lat":     lat,
		"lng":     lng,
		"updated": time.Now().Unix(),
	}

	data, err := json.Marshal(locationData)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("driver:location:%d", driverID)
	return RedisClient.Set(ctx, key, data, time.Hour).Err()
}

// GetDriverLocation retrieves driver location from Redis
func GetDriverLocation(ctx context.Context, driverID uint) (lat, lng float64, err error) {
	if RedisClient == nil {
		return 0, 0, redis.Nil
	}

	key := fmt.Sprintf("driver:location:%d", driverID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	var locationData map[string]interface{}
	if err := json.Unmarshal([]byte(data), &locationData); err != nil {
		return 0, 0, err
	}

	lat, _ = locationData["lat"].(float64)
	lng, _ = locationData["lng"].(float64)

	return lat, lng, nil
}

// SetDriverAvailability stores driver availability status
func SetDriverAvailability(ctx context.Context, driverID uint, isAvailable bool) error {
	if RedisClient == nil {
		return nil
	}

	key := fmt.Sprintf("driver:availability:%d", driverID)
	value := "true"
	if !isAvailable {
		value = "false"
	}
	return RedisClient.Set(ctx, key, value, time.Hour).Err()
}

// GetDriverAvailability retrieves driver availability status
func GetDriverAvailability(ctx context.Context, driverID uint) (bool, error) {
	if RedisClient == nil {
		return false, redis.Nil
	}

	key := fmt.Sprintf("driver:availability:%d", driverID)
	result, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result == "true", nil
}
