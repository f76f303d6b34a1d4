package escrow

import "go.uber.org/fx"

// Module provides the escrow listener to the fx container.
var Module = fx.Provide(NewListener)
