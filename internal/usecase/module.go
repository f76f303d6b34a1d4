package usecase

import "go.uber.org/fx"

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewCounterpartyGuard,
		NewMatchUseCase,
		NewSettleUseCase,
		NewFreezeUseCase,
	),
	fx.Provide(func() EligibilityFunc { return AllowAllTakers }),
)
