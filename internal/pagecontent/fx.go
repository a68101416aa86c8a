package pagecontent

import (
	"github.com/sortelabs/promo/internal/pagecontent/repository"
	"github.com/sortelabs/promo/internal/pagecontent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pagecontent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
