package audit

import (
	"github.com/sortelabs/promo/internal/audit/repository"
	"github.com/sortelabs/promo/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
