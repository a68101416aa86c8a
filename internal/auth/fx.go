package auth

import (
	"github.com/sortelabs/promo/internal/auth/service"
	"github.com/sortelabs/promo/internal/auth/tokens"
	"github.com/sortelabs/promo/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(NewTokenService),
	fx.Provide(service.New),
)

func NewTokenService(cfg config.Config) (*tokens.TokenService, error) {
	return tokens.NewTokenService(cfg.AuthJWTSecret, cfg.AuthJWTExpiresIn)
}
