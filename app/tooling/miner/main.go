package main

import (
	"github.com/ardanlabs/powcontest/app/tooling/miner/cmd"
)

func main() {
	cmd.Execute()
}
