package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Storing cache keys in concurrent data structures so that all cached lists
// of one collection can be cleared at once.
var (
	Cache            *ristretto.Cache
	ExpenseCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	IncomeCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

func GetCache(cacheKey string) (interface{}, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(cacheKey)
}

// Expense Cache Functions
func SetExpenseCache(cacheKey string, value interface{}) {
	if Cache == nil {
		return
	}
	ExpenseCacheKeys.Lock()
	ExpenseCacheKeys.m[cacheKey] = struct{}{}
	ExpenseCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelExpenseCache(cacheKey string) {
	if Cache == nil {
		return
	}
	ExpenseCacheKeys.Lock()
	delete(ExpenseCacheKeys.m, cacheKey)
	ExpenseCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllExpenseCaches() {
	if Cache == nil {
		return
	}
	ExpenseCacheKeys.Lock()
	for key := range ExpenseCacheKeys.m {
		Cache.Del(key)
	}
	ExpenseCacheKeys.m = make(map[string]struct{})
	ExpenseCacheKeys.Unlock()
}

// Income Cache Functions
func SetIncomeCache(cacheKey string, value interface{}) {
	if Cache == nil {
		return
	}
	IncomeCacheKeys.Lock()
	IncomeCacheKeys.m[cacheKey] = struct{}{}
	IncomeCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelIncomeCache(cacheKey string) {
	if Cache == nil {
		return
	}
	IncomeCacheKeys.Lock()
	delete(IncomeCacheKeys.m, cacheKey)
	IncomeCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllIncomeCaches() {
	if Cache == nil {
		return
	}
	IncomeCacheKeys.Lock()
	for key := range IncomeCacheKeys.m {
		Cache.Del(key)
	}
	IncomeCacheKeys.m = make(map[string]struct{})
	IncomeCacheKeys.Unlock()
}
