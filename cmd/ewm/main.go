// Command ewm runs the Explore With Me main service, its stats service and
// supporting maintenance tasks.
package main

import (
	"os"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
