// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/projectorhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/pantry/jobs"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Files is where credential PDFs are written.
	Files storage.Store

	// Scheduler runs background jobs. Built in ConnectDB, started in
	// Startup, stopped in Shutdown.
	Scheduler *jobs.Scheduler

	Limits Limiters
}

// Limiters throttles the routes that are costly or abusable.
type Limiters struct {
	SignIn      *ratelimit.Limiter // per client IP
	Credentials *ratelimit.Limiter // per user
}

func newLimiters() Limiters {
	return Limiters{
		SignIn:      ratelimit.New(10, time.Minute),
		Credentials: ratelimit.New(30, time.Hour),
	}
}

// Stop ends the limiters' cleanup goroutines.
func (l Limiters) Stop() {
	if l.SignIn != nil {
		l.SignIn.Stop()
	}
	if l.Credentials != nil {
		l.Credentials.Stop()
	}
}
