package sales

import (
	"github.com/sortelabs/promo/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("sales.client",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Client {
	return NewClient(Config{
		BaseURL:  cfg.SalesAPIBaseURL,
		User:     cfg.SalesAPIUser,
		Password: cfg.SalesAPIPassword,
	}, log)
}
