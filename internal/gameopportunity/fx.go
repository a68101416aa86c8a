package gameopportunity

import (
	"github.com/sortelabs/promo/internal/gameopportunity/repository"
	"github.com/sortelabs/promo/internal/gameopportunity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gameopportunity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
