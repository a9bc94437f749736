package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenthumb/nursery-api/internal/domains/users/ports"
	platformpg "github.com/greenthumb/nursery-api/internal/platform/postgres"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists user sessions in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	store := &SessionStore{db: db}
	if db != nil {
		_ = db.AutoMigrate(&sessionRecord{})
	}
	return store
}

type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:512"`
	Username  string    `gorm:"column:username;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Save upserts a session token. Any earlier session for the same username is
// removed, so a fresh login invalidates the previous token.
func (s *SessionStore) Save(ctx context.Context, session ports.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	username := strings.TrimSpace(session.Username)
	token := strings.TrimSpace(session.Token)
	if username == "" || token == "" {
		return errors.New("username and token are required")
	}
	if err := s.conn(ctx).Where("username = ? AND token <> ?", username, token).Delete(&sessionRecord{}).Error; err != nil {
		return err
	}
	rec := sessionRecord{Token: token, Username: username, ExpiresAt: session.ExpiresAt}
	return s.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

// Lookup resolves a token to its session, or ErrNotFound when unknown.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*ports.Session, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record sessionRecord
	if err := s.conn(ctx).First(&record, "token = ?", strings.TrimSpace(token)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &ports.Session{Token: record.Token, Username: record.Username, ExpiresAt: record.ExpiresAt}, nil
}

// Delete removes all sessions for a username.
func (s *SessionStore) Delete(ctx context.Context, username string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	return s.conn(ctx).Delete(&sessionRecord{}, "username = ?", username).Error
}

// PurgeExpired removes sessions past their expiry, returning the count.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.conn(ctx).Where("expires_at <= ?", now).Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) conn(ctx context.Context) *gorm.DB {
	return platformpg.Conn(ctx, s.db)
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}
