// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/debstrap/debstrap/internal/adapters/archive"
	_ "github.com/debstrap/debstrap/internal/adapters/config"
	_ "github.com/debstrap/debstrap/internal/adapters/deb"
	_ "github.com/debstrap/debstrap/internal/adapters/guest"
	_ "github.com/debstrap/debstrap/internal/adapters/logger"
	_ "github.com/debstrap/debstrap/internal/adapters/pkgfetch"
	_ "github.com/debstrap/debstrap/internal/adapters/repofetch"
	_ "github.com/debstrap/debstrap/internal/adapters/skeleton"
	_ "github.com/debstrap/debstrap/internal/adapters/solver"
	_ "github.com/debstrap/debstrap/internal/adapters/telemetry"
	// Register app nodes.
	_ "github.com/debstrap/debstrap/internal/app"
)
