package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siams/internal/server/models"
	"siams/internal/shared"
)

func TestRequestAdmin_FromNormal(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	user := seedUser(t, "u1", "alice", "alice@example.com", strongPassword, models.RoleUser)
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{user}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	require.NoError(t, s.RequestAdmin(context.Background(), "alice"))
	assert.Equal(t, models.AdminStatePending, user.ElevationState())
	assert.Equal(t, "User 'alice' requested admin access.", rm.a.lastAction(t))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestAdmin_NoOpStates(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	admin := seedUser(t, "u1", "root", "root@example.com", strongPassword, models.RoleAdmin)
	pending := seedUser(t, "u2", "bob", "bob@example.com", strongPassword, models.RoleUser)
	pending.IsAdminRequested = true
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{admin, pending}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	assert.ErrorIs(t, s.RequestAdmin(context.Background(), "root"), shared.ErrorAlreadyAdmin)
	assert.ErrorIs(t, s.RequestAdmin(context.Background(), "bob"), shared.ErrorRequestPending)

	// no mutation and no audit entry for either no-op
	assert.Equal(t, models.AdminStateAdmin, admin.ElevationState())
	assert.Equal(t, models.AdminStatePending, pending.ElevationState())
	assert.Empty(t, rm.a.entries)
	assert.Empty(t, rm.u.updated)
}

func TestRequestAdmin_UnknownUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	assert.ErrorIs(t, s.RequestAdmin(context.Background(), "ghost"), shared.ErrorUserNotFound)
}

func TestApproveAdminRequest_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	admin := seedUser(t, "u1", "root", "root@example.com", strongPassword, models.RoleAdmin)
	target := seedUser(t, "u2", "bob", "bob@example.com", strongPassword, models.RoleUser)
	target.IsAdminRequested = true
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{admin, target}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	require.NoError(t, s.ApproveAdminRequest(context.Background(), "root", "u2"))
	assert.Equal(t, models.RoleAdmin, target.Role)
	assert.False(t, target.IsAdminRequested)
	assert.Equal(t, "User 'bob' was approved for admin access by 'root'.", rm.a.lastAction(t))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectAdminRequest_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	admin := seedUser(t, "u1", "root", "root@example.com", strongPassword, models.RoleAdmin)
	target := seedUser(t, "u2", "bob", "bob@example.com", strongPassword, models.RoleUser)
	target.IsAdminRequested = true
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{admin, target}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	require.NoError(t, s.RejectAdminRequest(context.Background(), "root", "u2"))
	assert.Equal(t, models.RoleUser, target.Role)
	assert.False(t, target.IsAdminRequested)
	assert.Equal(t, "User 'bob' was rejected for admin access by 'root'.", rm.a.lastAction(t))

	// the cycle can restart: Normal → Pending again
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.RequestAdmin(context.Background(), "bob"))
	assert.Equal(t, models.AdminStatePending, target.ElevationState())
}

func TestDecideAdminRequest_InvalidState(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	admin := seedUser(t, "u1", "root", "root@example.com", strongPassword, models.RoleAdmin)
	normal := seedUser(t, "u2", "bob", "bob@example.com", strongPassword, models.RoleUser)
	already := seedUser(t, "u3", "carol", "carol@example.com", strongPassword, models.RoleAdmin)
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{admin, normal, already}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	assert.ErrorIs(t, s.ApproveAdminRequest(context.Background(), "root", "u2"), shared.ErrorInvalidState)
	assert.ErrorIs(t, s.RejectAdminRequest(context.Background(), "root", "u2"), shared.ErrorInvalidState)
	assert.ErrorIs(t, s.ApproveAdminRequest(context.Background(), "root", "u3"), shared.ErrorInvalidState)
	assert.Equal(t, models.RoleUser, normal.Role)
}

func TestDecideAdminRequest_Authorization(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	user := seedUser(t, "u1", "alice", "alice@example.com", strongPassword, models.RoleUser)
	target := seedUser(t, "u2", "bob", "bob@example.com", strongPassword, models.RoleUser)
	target.IsAdminRequested = true
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{user, target}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	// a non-admin actor and an unknown actor are both refused before the
	// target is even looked at
	assert.ErrorIs(t, s.ApproveAdminRequest(context.Background(), "alice", "u2"), shared.ErrorUnauthorized)
	assert.ErrorIs(t, s.ApproveAdminRequest(context.Background(), "ghost", "u2"), shared.ErrorUnauthorized)
	assert.True(t, target.IsAdminRequested)
}

func TestDecideAdminRequest_UnknownTarget(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	admin := seedUser(t, "u1", "root", "root@example.com", strongPassword, models.RoleAdmin)
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{admin}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	assert.ErrorIs(t, s.ApproveAdminRequest(context.Background(), "root", "missing"), shared.ErrorUserNotFound)
}
