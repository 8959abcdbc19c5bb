// Package iocache is for caching I/O calls.
package iocache

import (
	"sync"

	"github.com/mozdata/probescraper/internal/contract"
)

// CacheStoreManager manages the CacheStore instances used by a scrape run.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	scrape       contract.CacheStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetScrapeStore returns the scrape blob CacheStore.
func (mgr *CacheStoreManager) GetScrapeStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.scrape
}
