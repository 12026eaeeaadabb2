package di

import "github.com/google/wire"

// SuperSet combines all provider sets for the complete application.
var SuperSet = wire.NewSet(
	ConfigProviders,
	InfrastructureProviders,
	ApplicationProviders,
	InterfaceProviders,
	wire.Struct(new(Container), "*"),
)

var ConfigProviders = wire.NewSet(
	provideLogLevel,
	provideLogger,
	provideMetrics,
	provideTracer,
)

var InfrastructureProviders = wire.NewSet(
	provideStore,
	providePublisher,
	provideSuggester,
	provideJWTValidator,
)

var ApplicationProviders = wire.NewSet(
	provideKnowledgeService,
	provideStudyService,
)

var InterfaceProviders = wire.NewSet(
	provideRouter,
)
