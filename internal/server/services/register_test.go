package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siams/internal/server/models"
	"siams/internal/shared"
)

const strongPassword = "Str0ng!pass"

func TestRegister_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, a: &fakeAuditRepo{}}
	notifier := &fakeNotifier{}
	s := newTestService(t, db, rm, notifier)

	res, err := s.Register(context.Background(), "alice", strongPassword, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, res.User)

	assert.True(t, res.EmailSent)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.False(t, res.User.IsEmailConfirmed)
	require.NotNil(t, res.User.EmailConfirmationToken)
	// 16 random bytes, hex-encoded
	assert.Len(t, *res.User.EmailConfirmationToken, 32)
	assert.NotEmpty(t, res.User.PasswordHash)
	assert.NotEmpty(t, res.User.Salt)
	assert.NotEqual(t, strongPassword, res.User.PasswordHash)

	require.Len(t, rm.u.users, 1)
	assert.Equal(t, "User 'alice' registered.", rm.a.lastAction(t))
	assert.Equal(t, []string{"alice@example.com"}, notifier.sent)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_WeakPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	cases := []string{
		"short1!",     // too short
		"alllower1!",  // no upper
		"ALLUPPER1!",  // no lower
		"NoDigits!!",  // no digit
		"NoSymbol11",  // no symbol
	}
	for _, pw := range cases {
		_, err := s.Register(context.Background(), "alice", pw, "alice@example.com")
		assert.ErrorIs(t, err, shared.ErrorWeakPassword, "password %q", pw)
	}

	// nothing persisted, every rejection audited
	assert.Empty(t, rm.u.users)
	assert.Len(t, rm.a.entries, len(cases))
}

func TestRegister_UsernameTakenBeforeEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	existing := seedUser(t, "u1", "Alice", "alice@example.com", strongPassword, models.RoleUser)
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{existing}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	// same username (different case) AND same email: username check wins
	_, err := s.Register(context.Background(), "alice", strongPassword, "ALICE@example.com")
	require.ErrorIs(t, err, shared.ErrorUsernameTaken)
	assert.Contains(t, rm.a.lastAction(t), "username already exists")
}

func TestRegister_EmailTaken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	existing := seedUser(t, "u1", "alice", "alice@example.com", strongPassword, models.RoleUser)
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{existing}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	_, err := s.Register(context.Background(), "bob", strongPassword, "Alice@Example.com")
	require.ErrorIs(t, err, shared.ErrorEmailTaken)
	assert.Contains(t, rm.a.lastAction(t), "email already exists")
	assert.Len(t, rm.u.users, 1)
}

func TestRegister_DeletedUserStillReservesNames(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	gone := seedUser(t, "u1", "alice", "alice@example.com", strongPassword, models.RoleUser)
	gone.IsDeleted = true
	rm := &fakeRepoManager{u: &fakeUsersRepo{users: []*models.User{gone}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	_, err := s.Register(context.Background(), "alice", strongPassword, "new@example.com")
	assert.ErrorIs(t, err, shared.ErrorUsernameTaken)
}

func TestRegister_InvalidRequest(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	_, err := s.Register(context.Background(), "", strongPassword, "a@example.com")
	assert.ErrorIs(t, err, shared.ErrorInvalidRequest)

	_, err = s.Register(context.Background(), "alice", strongPassword, "")
	assert.ErrorIs(t, err, shared.ErrorInvalidRequest)

	long := make([]byte, maxUsernameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = s.Register(context.Background(), string(long), strongPassword, "a@example.com")
	assert.ErrorIs(t, err, shared.ErrorInvalidRequest)
}

func TestRegister_CommitRaceSurfacesAsTaken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	// pre-checks see a free name, the insert loses the race
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{createErr: shared.ErrorUsernameTaken},
		a: &fakeAuditRepo{},
	}
	s := newTestService(t, db, rm, nil)

	_, err := s.Register(context.Background(), "alice", strongPassword, "alice@example.com")
	require.ErrorIs(t, err, shared.ErrorUsernameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_NotifierFailureDoesNotRollBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, &fakeNotifier{err: errBoom{}})

	res, err := s.Register(context.Background(), "alice", strongPassword, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Len(t, rm.u.users, 1)
}

func TestRegister_StoreFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: errBoom{}}, a: &fakeAuditRepo{}}
	s := newTestService(t, db, rm, nil)

	_, err := s.Register(context.Background(), "alice", strongPassword, "alice@example.com")
	assert.ErrorIs(t, err, shared.ErrorDependencyFailure)
}
