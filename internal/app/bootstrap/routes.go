// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	authgooglefeature "github.com/dalemusser/projectorhub/internal/app/features/authgoogle"
	credentialsfeature "github.com/dalemusser/projectorhub/internal/app/features/credentials"
	errorsfeature "github.com/dalemusser/projectorhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/projectorhub/internal/app/features/health"
	logoutfeature "github.com/dalemusser/projectorhub/internal/app/features/logout"
	mefeature "github.com/dalemusser/projectorhub/internal/app/features/me"
	notificationsfeature "github.com/dalemusser/projectorhub/internal/app/features/notifications"
	projectorsfeature "github.com/dalemusser/projectorhub/internal/app/features/projectors"
	reportsfeature "github.com/dalemusser/projectorhub/internal/app/features/reports"
	reservationsfeature "github.com/dalemusser/projectorhub/internal/app/features/reservations"
	credentialstore "github.com/dalemusser/projectorhub/internal/app/store/credentials"
	notificationstore "github.com/dalemusser/projectorhub/internal/app/store/notifications"
	"github.com/dalemusser/projectorhub/internal/app/store/oauthstate"
	projectorstore "github.com/dalemusser/projectorhub/internal/app/store/projectors"
	reservationstore "github.com/dalemusser/projectorhub/internal/app/store/reservations"
	userstore "github.com/dalemusser/projectorhub/internal/app/store/users"
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/dalemusser/projectorhub/internal/app/system/authz"
	"github.com/dalemusser/projectorhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. ProjectorHub applies session middleware,
// builds the assignment engine over the Mongo stores and mounts the JSON
// feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	mode, err := assignment.ParseBindingMode(appCfg.BindingMode)
	if err != nil {
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// Fresh user data on every request; admin status comes from the allow-list.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))
	sessionMgr.SetAdminCheck(authz.ParseAllowList(appCfg.AdminEmails).Contains)

	users := userstore.New(db)
	notes := notificationstore.New(db)
	creds := credentialstore.New(db)

	engine := assignment.New(
		projectorstore.New(db).WithCodePrefix(appCfg.CodePrefix),
		reservationstore.New(db),
		mode,
		notes,
		logger,
	)

	r := chi.NewRouter()
	r.NotFound(errorsfeature.RouteNotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, string(mode), logger)))

	// Locally stored credential files are served by the app itself.
	if appCfg.StorageType == storageLocal {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	googleHandler := authgooglefeature.NewHandler(
		sessionMgr,
		oauthstate.New(db),
		users,
		appCfg.GoogleClientID,
		appCfg.GoogleClientSecret,
		appCfg.BaseURL,
		logger,
	)
	r.With(ratelimit.Middleware(deps.Limits.SignIn, ratelimit.ByIP)).
		Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	r.Mount("/logout", logoutfeature.Routes(logoutfeature.NewHandler(sessionMgr, logger), sessionMgr))
	r.Mount("/me", mefeature.Routes(mefeature.NewHandler(users, notes, logger), sessionMgr))

	r.Mount("/projectors", projectorsfeature.Routes(projectorsfeature.NewHandler(engine, logger), sessionMgr))
	r.Mount("/reservations", reservationsfeature.Routes(reservationsfeature.NewHandler(engine, logger), sessionMgr))

	credHandler := credentialsfeature.NewHandler(
		creds,
		deps.Files,
		notes,
		appCfg.CredentialMaxBytes,
		appCfg.CredentialRetention,
		logger,
	)
	r.With(ratelimit.Middleware(deps.Limits.Credentials, ratelimit.ByUser)).
		Mount("/credentials", credentialsfeature.Routes(credHandler, sessionMgr))
	r.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(notes, logger), sessionMgr))
	r.Mount("/reports", reportsfeature.Routes(reportsfeature.NewHandler(engine, logger), sessionMgr))

	return r, nil
}
