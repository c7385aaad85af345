// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. Here it
// applies handler deadlines and starts the background jobs (credential
// sweep, OAuth state cleanup).
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if deps.Scheduler != nil {
		deps.Scheduler.Start()
	}
	logger.Info("projectorhub started",
		zap.String("binding_mode", appCfg.BindingMode),
		zap.String("storage_type", appCfg.StorageType),
		zap.Duration("credential_retention", appCfg.CredentialRetention))
	return nil
}
