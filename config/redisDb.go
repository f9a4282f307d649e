package config

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

var ctx = context.Background()

func GetRedisDB() *redis.Client {
	return rdb
}

// ConnectRedisWithRetry connects the summary read cache. Redis is a
// best-effort optimization: when REDIS_ADDRESS is unset or the server
// is unreachable, every cache helper degrades to a no-op and reads go
// straight to the document store.
func ConnectRedisWithRetry() {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		log.Println("redis: REDIS_ADDRESS not set, summary cache disabled")
		return
	}
	client := redis.NewClient(&redis.Options{Addr: address})
	for i := 0; i < 5; i++ {
		if err := client.Ping(ctx).Err(); err == nil {
			rdb = client
			return
		}
		time.Sleep(2 * time.Second)
	}
	log.Printf("redis: could not reach %s, summary cache disabled", address)
}

func GetRedisObject(key string, dest interface{}) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	err = json.Unmarshal([]byte(val), &dest)
	if err != nil {
		return false, err
	}
	return true, nil
}

func SetRedisObject(key string, obj interface{}, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	objInByte, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, objInByte, exp).Err()
}

func RemoveRedisKey(key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key).Err()
}
