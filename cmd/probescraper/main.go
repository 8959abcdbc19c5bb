// Command probescraper scrapes metric, ping and tag definitions out of
// repository histories and publishes their deduplicated change history.
package main

import (
	"fmt"
	"os"

	"github.com/mozdata/probescraper/cmd"
	"github.com/mozdata/probescraper/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run keeps the deferred cache shutdown ahead of the process exit.
func run() int {
	defer iocache.CloseCaching()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
