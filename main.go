// Package main is the entry point for the tokgrab application.
package main

import (
	"github.com/samber/lo"
	"github.com/tokgrab-cli/tokgrab/cmd"
	"github.com/tokgrab-cli/tokgrab/config"
	"github.com/tokgrab-cli/tokgrab/internal/cache"
	"github.com/tokgrab-cli/tokgrab/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Initialize asynchronous background cache maintenance.
	go cache.CollectGarbage()

	cmd.Execute()
}
