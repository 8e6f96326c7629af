// Package app wires the services shared by the HTTP server and the console.
package app

import (
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/config"
	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/model/compound"
	"github.com/chemassist/assistant/backend/internal/service/assets"
	chatservice "github.com/chemassist/assistant/backend/internal/service/chat"
	compoundservice "github.com/chemassist/assistant/backend/internal/service/compound"
	"github.com/chemassist/assistant/backend/internal/service/pubchem"
)

// Services groups the application services.
type Services struct {
	Compounds *compoundservice.Service
	Chat      *chatservice.Service
	Assets    *assets.Resolver
}

// New builds the services on top of the PubChem client.
func New(cfg *config.Config, logger *zap.Logger) *Services {
	logger = logging.OrNop(logger)
	client := pubchem.NewClient(cfg.PubChem, pubchem.WithLogger(logger.Named("pubchem")))
	return NewWithSource(cfg, client, logger)
}

// NewWithSource builds the services on top of an arbitrary compound source.
func NewWithSource(cfg *config.Config, source compoundservice.Source, logger *zap.Logger) *Services {
	logger = logging.OrNop(logger)

	compounds := compoundservice.NewService(source, logger.Named("compound"))

	selectors := make(map[compound.Attribute]chatservice.Selector)
	for attr, selector := range compoundservice.NewSelectors(compounds) {
		selectors[attr] = selector
	}

	chat := chatservice.NewService(selectors, chatservice.Config{
		MenuCommand: cfg.Chat.MenuCommand,
		SessionTTL:  cfg.Chat.SessionTTL,
		Logger:      logger.Named("chat"),
	})

	return &Services{
		Compounds: compounds,
		Chat:      chat,
		Assets:    assets.NewResolver(cfg.Assets, logger.Named("assets")),
	}
}
