package luck

import (
	"github.com/sortelabs/promo/internal/luck/repository"
	"github.com/sortelabs/promo/internal/luck/service"
	"go.uber.org/fx"
)

var Module = fx.Module("luck.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
