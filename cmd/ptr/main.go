// Command ptr is a repository-wide test orchestrator: it discovers per-project
// test manifests, provisions a shared interpreter environment, and runs a
// fixed QA pipeline for every discovered project with bounded parallelism.
package main

import (
	"os"

	"github.com/ptrgo/ptr/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
