package client

import (
	"github.com/sortelabs/promo/internal/client/repository"
	"github.com/sortelabs/promo/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
