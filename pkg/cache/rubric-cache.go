package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the rubric is not cached.
var ErrCacheMiss = errors.New("cache miss")

type RedisConfig struct {
	Address  string        `json:"address" yaml:"address"`
	Password string        `json:"password" yaml:"password"`
	DB       int           `json:"db" yaml:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

type RubricCache interface {
	Set(ctx context.Context, orgID string, rubric prTypes.Rubric) error
	Get(ctx context.Context, orgID string, rubricID string) (prTypes.Rubric, error)
	Delete(ctx context.Context, orgID string, rubricID string) error
}

type rubricCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(conf RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func NewRubricCache(client *redis.Client, ttl time.Duration) RubricCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &rubricCache{
		client: client,
		ttl:    ttl,
	}
}

func rubricKey(orgID string, rubricID string) string {
	return "rubric:" + orgID + ":" + rubricID
}

func (c *rubricCache) Set(ctx context.Context, orgID string, rubric prTypes.Rubric) error {
	data, err := json.Marshal(rubric)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rubricKey(orgID, rubric.ID.Hex()), data, c.ttl).Err()
}

func (c *rubricCache) Get(ctx context.Context, orgID string, rubricID string) (prTypes.Rubric, error) {
	var rubric prTypes.Rubric
	data, err := c.client.Get(ctx, rubricKey(orgID, rubricID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rubric, ErrCacheMiss
	}
	if err != nil {
		return rubric, err
	}
	err = json.Unmarshal(data, &rubric)
	return rubric, err
}

func (c *rubricCache) Delete(ctx context.Context, orgID string, rubricID string) error {
	return c.client.Del(ctx, rubricKey(orgID, rubricID)).Err()
}
