package iocache

import (
	"fmt"

	"github.com/mozdata/probescraper/schema"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	if status.Backend == schema.NoneBackend {
		return
	}
	if status.Location != "" {
		fmt.Printf("Location: %s\n", status.Location)
	}
	fmt.Printf("Total Entries: %d\n", status.Entries)
	fmt.Printf("Table Size: %d bytes\n", status.SizeBytes)
}
