package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"

	"siams/internal/dbx"
	"siams/internal/logging"
	"siams/internal/server/config"
	"siams/internal/server/mailer"
	"siams/internal/server/metrics"
	"siams/internal/server/models"
	"siams/internal/server/passwords"
	auditrepo "siams/internal/server/repositories/auditlog"
	usersrepo "siams/internal/server/repositories/users"
	"siams/internal/shared"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// fakeUsersRepo keeps users in a slice and implements the repository lookup
// semantics in memory: case-insensitive matches for the uniqueness lookups,
// exact non-deleted match for the login lookup.
type fakeUsersRepo struct {
	users []*models.User

	createErr error
	updateErr error
	forcedErr error

	updated []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (f *fakeUsersRepo) GetActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, u := range f.users {
		if u.Username == username && !u.IsDeleted {
			return u, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmailAndToken(ctx context.Context, email, token string) (*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) &&
			u.EmailConfirmationToken != nil && *u.EmailConfirmationToken == token {
			return u, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, existing := range f.users {
		if existing.ID == u.ID {
			f.users[i] = u
			f.updated = append(f.updated, u)
			return nil
		}
	}
	return shared.ErrorNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	var out []*models.User
	for _, u := range f.users {
		if !u.IsDeleted {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries   []*models.LogEntry
	appendErr error
}

func (f *fakeAuditRepo) Append(ctx context.Context, e *models.LogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	e.ID = int64(len(f.entries) + 1)
	e.Timestamp = time.Now()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	out := make([]*models.LogEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeAuditRepo) lastAction(t *testing.T) string {
	t.Helper()
	if len(f.entries) == 0 {
		t.Fatal("no audit entries recorded")
	}
	return f.entries[len(f.entries)-1].Action
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	a *fakeAuditRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context) error          { return nil }
func (m *fakeRepoManager) Conn() *sql.DB                                { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) AuditLog(db dbx.DBTX) auditrepo.Repository    { return m.a }

type fakeNotifier struct {
	sent []string // recipient addresses
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// testHashParams keeps Argon2 cheap so the suite stays fast.
func testHashParams() passwords.Params {
	return passwords.Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 32, SaltLen: 16}
}

func newTestService(t *testing.T, db *sql.DB, rm *fakeRepoManager, notifier mailer.Notifier) *AccountService {
	t.Helper()
	cfg := &config.Config{
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		Pepper:        "test-pepper",
		BaseURL:       "http://localhost:8080",
		HashParams:    testHashParams(),
	}
	if rm.u == nil {
		rm.u = &fakeUsersRepo{}
	}
	if rm.a == nil {
		rm.a = &fakeAuditRepo{}
	}
	if notifier == nil {
		notifier = &fakeNotifier{}
	}
	m := metrics.NewCollector(prometheus.NewRegistry())
	hasher := passwords.NewHasher(cfg.Pepper, cfg.HashParams)
	return NewAccountService(db, rm, hasher, notifier, nopLogger{}, m, cfg)
}

// seedUser builds a confirmed active user whose password is pw.
func seedUser(t *testing.T, id, username, email, pw string, role models.Role) *models.User {
	t.Helper()
	hasher := passwords.NewHasher("test-pepper", testHashParams())
	hash, salt, err := hasher.Hash(pw)
	if err != nil {
		t.Fatalf("seed hash error: %v", err)
	}
	return &models.User{
		ID:               id,
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		Salt:             salt,
		Role:             role,
		IsEmailConfirmed: true,
	}
}
