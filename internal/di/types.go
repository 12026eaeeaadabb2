// Package di wires the application together with Wire.
package di

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/config"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
	"github.com/Raghvendrath3/conceptForge/internal/service/knowledge"
	"github.com/Raghvendrath3/conceptForge/internal/service/study"
)

// Version is the build version reported by /health and the tracer.
type Version string

// Container holds all application dependencies.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	LogLevel  zap.AtomicLevel
	Store     repository.Repository
	Publisher events.Publisher
	Metrics   *observability.Collector
	Tracer    *observability.TracerProvider
	Knowledge *knowledge.Service
	Study     *study.Service
	Router    *chi.Mux
}

// ApplyConfig updates the settings that can change without a restart.
func (c *Container) ApplyConfig(cfg *config.Config) {
	level := cfg.Logging.ZapLevel()
	if c.LogLevel.Level() != level {
		c.Logger.Info("log level changed",
			zap.Stringer("from", c.LogLevel.Level()),
			zap.Stringer("to", level),
		)
		c.LogLevel.SetLevel(level)
	}
}
