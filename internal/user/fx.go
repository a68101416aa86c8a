package user

import (
	"github.com/sortelabs/promo/internal/user/repository"
	"github.com/sortelabs/promo/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
