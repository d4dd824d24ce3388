package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Healthy is true when the database answers; the cache is optional.
func (s HealthStatus) Healthy() bool { return s.Database == "ok" }

type HealthUsecase interface {
	Check(ctx context.Context) HealthStatus
}

type Health struct {
	db     Pinger
	cache  Pinger
	logger *logrus.Logger
}

func NewHealthUsecase(db, cache Pinger, logger *logrus.Logger) *Health {
	return &Health{db: db, cache: cache, logger: orLogger(logger)}
}

func (u *Health) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := HealthStatus{Database: "ok", Cache: "ok"}
	if u.db == nil {
		st.Database = "error"
	} else if err := u.db.Ping(ctx); err != nil {
		u.logger.WithError(err).Warn("database ping failed")
		st.Database = "error"
	}
	if u.cache == nil {
		st.Cache = "unavailable"
	} else if err := u.cache.Ping(ctx); err != nil {
		u.logger.WithError(err).Debug("cache ping failed")
		st.Cache = "unavailable"
	}
	return st
}
