// Command solea-events extracts the Centre Soléa schedule and serves it as JSON.
package main

import (
	_ "time/tzdata"

	"github.com/centresolea/solea-events/internal/cli"
)

func main() {
	cli.Execute()
}
