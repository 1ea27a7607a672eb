// Idiomatic entrypoint for Cobra CLI that delegates handling to the Cobra root command in cmd/root.go

package main

import (
	"github.com/tsn-sched/tsn-sched/cmd"
)

func main() {
	cmd.Execute()
}
