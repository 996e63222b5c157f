package bcache

import (
	"strconv"

	"github.com/go-redis/redis"
)

// HotboardSource ranks boards by current activity, most active first.
type HotboardSource interface {
	Hotboards() ([]int, error)
}

// StaticHotboards is a fixed ranking, usually from the config file.
type StaticHotboards []int

func (s StaticHotboards) Hotboards() ([]int, error) {
	return s, nil
}

type RedisConfig struct {
	Network  string
	Addr     string
	Password string
	DB       int
	// Key names a list of board ids maintained by the ranking job.
	Key string
}

// RedisHotboards reads the ranking from a Redis list.
type RedisHotboards struct {
	client *redis.Client
	key    string
}

func NewRedisHotboards(c *RedisConfig) *RedisHotboards {
	return &RedisHotboards{
		client: redis.NewClient(&redis.Options{
			Network:  c.Network,
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
		}),
		key: c.Key,
	}
}

func (r *RedisHotboards) Hotboards() ([]int, error) {
	vals, err := r.client.LRange(r.key, 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	bids := make([]int, 0, len(vals))
	for _, v := range vals {
		bid, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

func (r *RedisHotboards) Close() error {
	return r.client.Close()
}
