package voucher

import (
	"github.com/sortelabs/promo/internal/voucher/repository"
	"github.com/sortelabs/promo/internal/voucher/service"
	"go.uber.org/fx"
)

var Module = fx.Module("voucher.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
