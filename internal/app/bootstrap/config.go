// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"github.com/dalemusser/projectorhub/internal/app/system/authz"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	storageLocal = "local"
	storageS3    = "s3"
)

// appConfigKeys defines the configuration keys for ProjectorHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: PROJECTORHUB_MONGO_URI, PROJECTORHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "projector_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "projectorhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL (OAuth callback is built from it)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Authorization
	{Name: "admin_emails", Default: "", Desc: "Comma-separated administrator emails"},

	// Assignment engine
	{Name: "binding_mode", Default: "eager", Desc: "When projectors are bound: 'eager' (at request) or 'deferred' (at approval)"},
	{Name: "code_prefix", Default: "PRY", Desc: "Prefix for generated projector codes"},

	// File storage configuration
	{Name: "storage_type", Default: storageLocal, Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for stored objects"},

	// Credential uploads
	{Name: "credential_max_bytes", Default: 2 << 20, Desc: "Largest accepted credential upload in bytes"},
	{Name: "credential_retention", Default: "168h", Desc: "How long credential uploads are kept"},
	{Name: "credential_sweep_interval", Default: "168h", Desc: "How often expired credentials are swept"},

	// Handler deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for lists and reports"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for uploads"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, PROJECTORHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PROJECTORHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		BaseURL:          strings.TrimRight(appValues.String("base_url"), "/"),

		// Google OAuth
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AdminEmails: appValues.String("admin_emails"),

		BindingMode: appValues.String("binding_mode"),
		CodePrefix:  appValues.String("code_prefix"),

		// File storage
		StorageType:      strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  strings.TrimRight(appValues.String("storage_local_url"), "/"),

		// S3
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		// Credentials
		CredentialMaxBytes:      int64(appValues.Int("credential_max_bytes")),
		CredentialRetention:     appValues.Duration("credential_retention", 7*24*time.Hour),
		CredentialSweepInterval: appValues.Duration("credential_sweep_interval", 7*24*time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database is required")
	}
	if _, err := assignment.ParseBindingMode(appCfg.BindingMode); err != nil {
		return err
	}

	switch appCfg.StorageType {
	case storageLocal:
		if appCfg.StorageLocalPath == "" || appCfg.StorageLocalURL == "" {
			return errors.New("local storage requires storage_local_path and storage_local_url")
		}
	case storageS3:
		if appCfg.StorageS3Region == "" || appCfg.StorageS3Bucket == "" {
			return errors.New("s3 storage requires storage_s3_region and storage_s3_bucket")
		}
		if appCfg.StorageS3PublicURL == "" {
			return errors.New("s3 storage requires storage_s3_public_url")
		}
	default:
		return fmt.Errorf("storage_type must be %q or %q, got %q", storageLocal, storageS3, appCfg.StorageType)
	}

	if appCfg.CredentialMaxBytes <= 0 {
		return errors.New("credential_max_bytes must be positive")
	}
	if appCfg.CredentialRetention <= 0 || appCfg.CredentialSweepInterval <= 0 {
		return errors.New("credential_retention and credential_sweep_interval must be positive")
	}

	if authz.ParseAllowList(appCfg.AdminEmails).Len() == 0 {
		logger.Warn("admin_emails is empty; nobody can approve reservations")
	}
	if appCfg.GoogleClientID == "" || appCfg.GoogleClientSecret == "" {
		logger.Warn("Google OAuth is not configured; sign-in is disabled")
	}
	return nil
}
