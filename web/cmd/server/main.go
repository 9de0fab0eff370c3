// Package main provides a web service that annotates throw videos with
// detected pose overlays.
package main

import (
	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"github.com/posetrace/posetrace/web/server"
)

var logger = golog.NewDebugLogger("entrypoint")

func main() {
	utils.ContextualMain(server.RunServer, logger)
}
