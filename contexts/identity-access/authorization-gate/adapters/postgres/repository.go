package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gatekeeper/contexts/identity-access/authorization-gate/domain/entities"
	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
	"gatekeeper/contexts/identity-access/authorization-gate/domain/valueobjects"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores host sessions in PostgreSQL.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the sessions table when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&sessionModel{}); err != nil {
		return r.logError("gate_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string, now time.Time) (entities.SessionRecord, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		Where("(expires_at IS NULL OR expires_at > ?)", now.UTC()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isUndefinedTable(err) {
			return entities.SessionRecord{}, domainerrors.ErrSessionNotFound
		}
		return entities.SessionRecord{}, r.logError("gate_repo_get_session_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveSession(ctx context.Context, record entities.SessionRecord) error {
	if strings.TrimSpace(record.SessionID) == "" {
		return domainerrors.ErrInvalidSession
	}
	row := sessionModelFromEntity(record)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"user_id":    row.UserID,
			"identity":   row.Identity,
			"credential": row.Credential,
			"expires_at": row.ExpiresAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrInvalidSession
		}
		return r.logError("gate_repo_save_session_failed", create.Error,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		Delete(&sessionModel{}).
		Error
	if err != nil {
		return r.logError("gate_repo_delete_session_failed", err)
	}
	return nil
}

func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&sessionModel{})
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return 0, nil
		}
		return 0, r.logError("gate_repo_delete_expired_sessions_failed", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"module", "identity-access/authorization-gate",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("session repository operation failed", fields...)
	return err
}

type sessionModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	UserID     string     `gorm:"column:user_id;not null;index"`
	Identity   string     `gorm:"column:identity"`
	Credential string     `gorm:"column:credential"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	ExpiresAt  *time.Time `gorm:"column:expires_at;index"`
}

func (sessionModel) TableName() string {
	return "sessions"
}

func sessionModelFromEntity(record entities.SessionRecord) sessionModel {
	row := sessionModel{
		ID:         strings.TrimSpace(record.SessionID),
		UserID:     record.UserID.String(),
		Identity:   strings.TrimSpace(record.Identity),
		Credential: record.Credential,
		CreatedAt:  record.CreatedAt.UTC(),
	}
	// A zero expiry means the session never expires.
	if !record.ExpiresAt.IsZero() {
		expiresAt := record.ExpiresAt.UTC()
		row.ExpiresAt = &expiresAt
	}
	return row
}

func (m sessionModel) toEntity() entities.SessionRecord {
	record := entities.SessionRecord{
		SessionID:  m.ID,
		UserID:     valueobjects.UserID(m.UserID),
		Identity:   m.Identity,
		Credential: m.Credential,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.ExpiresAt != nil {
		record.ExpiresAt = m.ExpiresAt.UTC()
	}
	return record
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

var _ ports.SessionStore = (*Repository)(nil)
