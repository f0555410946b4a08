package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlowQuery is the duration after which queries are logged with warn level.
var SlowQuery = time.Second

type gormLogger logrus.Logger

// NewLogger adapts the logrus logger for gorm.
func NewLogger(log *logrus.Logger) logger.Interface {
	return (*gormLogger)(log)
}

func (l *gormLogger) unmask() *logrus.Logger {
	return (*logrus.Logger)(l)
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

func (l *gormLogger) Info(ctx context.Context, s string, i ...interface{}) {
	l.unmask().WithContext(ctx).Infof(s, i...)
}

func (l *gormLogger) Warn(ctx context.Context, s string, i ...interface{}) {
	l.unmask().WithContext(ctx).Warnf(s, i...)
}

func (l *gormLogger) Error(ctx context.Context, s string, i ...interface{}) {
	l.unmask().WithContext(ctx).Errorf(s, i...)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	entry := l.unmask().WithContext(ctx)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rowsAffected := fc()
		entry.Warnf("execute [%s] (%d rows, %s): %v", sql, rowsAffected, elapsed, err)
	case elapsed > SlowQuery:
		sql, rowsAffected := fc()
		entry.Warnf("execute [%s] (%d rows, %s): slow query", sql, rowsAffected, elapsed)
	case l.unmask().IsLevelEnabled(logrus.TraceLevel):
		sql, rowsAffected := fc()
		entry.Tracef("execute [%s] (%d rows, %s): ok", sql, rowsAffected, elapsed)
	}
}
