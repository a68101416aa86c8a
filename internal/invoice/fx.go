package invoice

import (
	"github.com/sortelabs/promo/internal/invoice/repository"
	"github.com/sortelabs/promo/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
