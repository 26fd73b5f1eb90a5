package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/config"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// GormTransactionScope implements txn.TransactionScope using GORM transactions.
// Every repository handed to fn shares the one transaction.
type GormTransactionScope struct {
	db          *gorm.DB
	isolation   sql.IsolationLevel
	lockTimeout time.Duration
}

// ScopeOption configures a GormTransactionScope
type ScopeOption func(*GormTransactionScope)

// WithIsolation runs every transaction at level
func WithIsolation(level sql.IsolationLevel) ScopeOption {
	return func(s *GormTransactionScope) {
		s.isolation = level
	}
}

// WithLockTimeout bounds row-lock waits inside each transaction (PostgreSQL only)
func WithLockTimeout(d time.Duration) ScopeOption {
	return func(s *GormTransactionScope) {
		s.lockTimeout = d
	}
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, opts ...ScopeOption) *GormTransactionScope {
	s := &GormTransactionScope{db: db, isolation: sql.LevelDefault}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseIsolation maps a database.tx_isolation setting to a sql isolation level
func ParseIsolation(level string) (sql.IsolationLevel, error) {
	switch level {
	case "", config.IsolationReadCommitted:
		return sql.LevelReadCommitted, nil
	case config.IsolationRepeatableRead:
		return sql.LevelRepeatableRead, nil
	case config.IsolationSerializable:
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unknown isolation level %q", level)
	}
}

// Execute runs fn within a database transaction. A non-nil error from fn
// rolls the transaction back; lock timeouts, deadlocks and serialization
// failures come back as shared.ErrTransient.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.Repositories) error) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "db.transaction",
		attribute.String("db.transaction.isolation", s.isolation.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var opts []*sql.TxOptions
	if s.isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: s.isolation})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applyLockTimeout(tx); err != nil {
			return err
		}
		return fn(&gormRepositories{tx: tx})
	}, opts...)
	return translateError(err, nil)
}

// applyLockTimeout scopes lock_timeout to the current transaction, like SET LOCAL
func (s *GormTransactionScope) applyLockTimeout(tx *gorm.DB) error {
	if s.lockTimeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	timeout := fmt.Sprintf("%dms", s.lockTimeout.Milliseconds())
	return tx.Exec("SELECT set_config('lock_timeout', ?, true)", timeout).Error
}

// gormRepositories provides access to all repositories within a transaction.
type gormRepositories struct {
	tx *gorm.DB
}

// Residents returns the resident repository scoped to the current transaction.
func (r *gormRepositories) Residents() population.ResidentRepository {
	return NewGormResidentRepository(r.tx)
}

// Cards returns the family card repository scoped to the current transaction.
func (r *gormRepositories) Cards() household.CardRepository {
	return NewGormCardRepository(r.tx)
}

// RWs returns the RW repository scoped to the current transaction.
func (r *gormRepositories) RWs() region.RWRepository {
	return NewGormRWRepository(r.tx)
}

// RTs returns the RT repository scoped to the current transaction.
func (r *gormRepositories) RTs() region.RTRepository {
	return NewGormRTRepository(r.tx)
}

// Audit returns the audit repository scoped to the current transaction.
func (r *gormRepositories) Audit() audit.Repository {
	return NewGormAuditRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ txn.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements Repositories
var _ txn.Repositories = (*gormRepositories)(nil)
