// Command rfpvault ingests tender documents, anonymizes them and indexes
// them for semantic search.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrapper(bootstrap)
	defer cli.Close()

	if err := cli.Execute(); err != nil {
		cli.Close()
		os.Exit(1)
	}
}
