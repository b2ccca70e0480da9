package migration

import (
	"fmt"

	"github.com/smallbiznis/civitas/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			return nil
		}

		switch conn.Dialector.Name() {
		case "postgres":
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		case "sqlite":
			if err := ApplySQL(conn); err != nil {
				return err
			}
		default:
			return fmt.Errorf("auto migration is not supported for %s, set DATABASE_AUTO_MIGRATE=false", conn.Dialector.Name())
		}

		log.Info("schema up to date", zap.String("dialect", conn.Dialector.Name()))
		return nil
	}),
)
