package router

import "go.uber.org/fx"

// Module registers HTTP router construction in the fx container.
var Module = fx.Provide(Setup)
