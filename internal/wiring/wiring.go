// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/asmres/internal/adapters/clr"
	_ "go.trai.ch/asmres/internal/adapters/loader"
	_ "go.trai.ch/asmres/internal/adapters/logger"
	_ "go.trai.ch/asmres/internal/adapters/telemetry"
	_ "go.trai.ch/asmres/internal/adapters/trace"
	_ "go.trai.ch/asmres/internal/adapters/watcher"
	_ "go.trai.ch/asmres/internal/adapters/workspace"
	// Register app and engine nodes.
	_ "go.trai.ch/asmres/internal/app"
	_ "go.trai.ch/asmres/internal/engine/resolver"
)
