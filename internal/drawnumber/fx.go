package drawnumber

import (
	"github.com/sortelabs/promo/internal/drawnumber/repository"
	"github.com/sortelabs/promo/internal/drawnumber/service"
	"go.uber.org/fx"
)

var Module = fx.Module("drawnumber.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
