package migration

import (
	"github.com/sortelabs/promo/internal/config"
	"github.com/sortelabs/promo/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if err := seed.EnsureRoles(conn); err != nil {
			return err
		}
		if cfg.Bootstrap.EnsureDefaultAdmin {
			return seed.EnsureDefaultAdmin(
				conn,
				cfg.Bootstrap.AdminUsername,
				cfg.Bootstrap.AdminEmail,
				cfg.Bootstrap.AdminPassword,
				cfg.BcryptCost,
			)
		}
		return nil
	}),
)
