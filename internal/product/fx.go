package product

import (
	"github.com/sortelabs/promo/internal/product/repository"
	"github.com/sortelabs/promo/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
