package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"regnify/internal/domain"
	"regnify/internal/notify"
	"regnify/internal/port"
	"regnify/internal/service"
	"regnify/internal/session/memory"
	"regnify/mocks"
)

type userFixture struct {
	repo       *mocks.MockUserRepo
	audit      *mocks.MockAuditRepo
	email      *mocks.MockEmailSender
	sessions   port.SessionStore
	dispatcher *notify.Dispatcher
	svc        service.UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		repo:       new(mocks.MockUserRepo),
		audit:      new(mocks.MockAuditRepo),
		email:      new(mocks.MockEmailSender),
		sessions:   memory.New(),
		dispatcher: notify.NewDispatcher(1, time.Second),
	}
	f.svc = service.NewUserService(f.repo, f.audit, f.sessions, f.email, f.dispatcher)
	return f
}

var rootAdmin = service.Actor{Username: "root", Role: domain.RoleAdminModerator, IPAddress: "10.0.0.1"}

func userAudit(action domain.AuditAction, oldValue, newValue string) interface{} {
	return mock.MatchedBy(func(e *domain.AuditLog) bool {
		return e.Action == action && e.EntityType == domain.AuditEntityUser &&
			e.OldValue == oldValue && e.NewValue == newValue &&
			e.PerformedBy == "root" && e.IPAddress == "10.0.0.1"
	})
}

func TestUserService_Create(t *testing.T) {
	f := newUserFixture()

	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	f.audit.On("Create", mock.Anything, userAudit(domain.AuditUserCreate, "", "User bob created")).Return(nil)
	f.email.On("SendWelcomeEmail", mock.Anything, "bob@example.com", "Bob", "bob").Return(nil)

	user, err := f.svc.Create(context.Background(), service.CreateUserInput{
		Username:  "bob",
		Email:     "bob@example.com",
		Password:  "password123",
		FirstName: "Bob",
		Role:      domain.RoleViewer,
	}, rootAdmin)
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	f.email.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestUserService_Create_InvalidRole(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Create(context.Background(), service.CreateUserInput{
		Username: "bob", Email: "bob@example.com", Password: "password123", FirstName: "Bob", Role: "ROOT",
	}, rootAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create_InvalidUsername(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Create(context.Background(), service.CreateUserInput{
		Username: "bob smith", Email: "bob@example.com", Password: "password123", FirstName: "Bob", Role: domain.RoleViewer,
	}, rootAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_ResetPassword_ClearsLock(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()

	user := &domain.User{ID: uuid.New(), Username: "bob"}
	f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)
	f.audit.On("Create", mock.Anything, userAudit(domain.AuditPasswordReset, "", "Password reset for bob")).Return(nil)
	require.NoError(t, f.sessions.Lock(ctx, "bob", time.Hour))

	require.NoError(t, f.svc.ResetPassword(ctx, user.ID, "new-password", rootAdmin))

	remaining, err := f.sessions.LockedFor(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, remaining)
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestUserService_Unlock(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()

	user := &domain.User{ID: uuid.New(), Username: "carol", Email: "carol@example.com", FirstName: "Carol"}
	f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.audit.On("Create", mock.Anything, userAudit(domain.AuditAccountUnlock, "", "Account unlocked for carol")).Return(nil)
	f.email.On("SendAccountUnlockedEmail", mock.Anything, "carol@example.com", "Carol").Return(nil)
	_, err := f.sessions.IncrementFailures(ctx, "carol", time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Lock(ctx, "carol", time.Hour))

	require.NoError(t, f.svc.Unlock(ctx, user.ID, rootAdmin))
	f.dispatcher.Wait()

	remaining, err := f.sessions.LockedFor(ctx, "carol")
	require.NoError(t, err)
	assert.Zero(t, remaining)
	n, err := f.sessions.IncrementFailures(ctx, "carol", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	f.email.AssertExpectations(t)
}

func TestUserService_Unlock_UnknownUser(t *testing.T) {
	f := newUserFixture()
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.Unlock(context.Background(), id, rootAdmin), domain.ErrNotFound)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Update(t *testing.T) {
	f := newUserFixture()
	user := &domain.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", Role: domain.RoleViewer, Status: domain.UserStatusActive}
	f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "bobby" && u.Email == "bobby@example.com" && u.Role == domain.RoleSuperUser
	})).Return(nil)
	f.audit.On("Create", mock.Anything, userAudit(domain.AuditUserUpdate,
		"Role: VIEWER, Status: ACTIVE", "Role: SUPER_USER, Status: ACTIVE")).Return(nil)

	name, mail, role := "bobby", "bobby@example.com", domain.RoleSuperUser
	got, err := f.svc.Update(context.Background(), user.ID, service.UpdateUserInput{
		Username: &name, Email: &mail, Role: &role,
	}, rootAdmin)
	require.NoError(t, err)
	assert.Equal(t, "bobby", got.Username)
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestUserService_Update_Rejections(t *testing.T) {
	short, badName := "short", "no spaces"
	superUser := domain.RoleSuperUser
	bogusStatus := domain.UserStatus("GONE")
	tests := []struct {
		name  string
		input service.UpdateUserInput
		actor service.Actor
		want  error
	}{
		{"short password", service.UpdateUserInput{Password: &short}, rootAdmin, domain.ErrPasswordTooShort},
		{"bad username", service.UpdateUserInput{Username: &badName}, rootAdmin, domain.ErrInvalidUsername},
		{"role change needs admin moderator", service.UpdateUserInput{Role: &superUser},
			service.Actor{Username: "su", Role: domain.RoleSuperUser}, domain.ErrForbidden},
		{"bad status", service.UpdateUserInput{Status: &bogusStatus}, rootAdmin, domain.ErrInvalidUserStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture()
			user := &domain.User{ID: uuid.New(), Username: "bob", Role: domain.RoleViewer, Status: domain.UserStatusActive}
			f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

			_, err := f.svc.Update(context.Background(), user.ID, tt.input, tt.actor)
			assert.ErrorIs(t, err, tt.want)
			f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_Update_DuplicateEmail(t *testing.T) {
	f := newUserFixture()
	user := &domain.User{ID: uuid.New(), Username: "bob", Role: domain.RoleViewer}
	f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)

	mail := "alice@example.com"
	_, err := f.svc.Update(context.Background(), user.ID, service.UpdateUserInput{Email: &mail}, rootAdmin)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Delete_Deactivates(t *testing.T) {
	f := newUserFixture()
	user := &domain.User{ID: uuid.New(), Username: "bob", Status: domain.UserStatusActive}
	f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Status == domain.UserStatusInactive
	})).Return(nil)
	f.audit.On("Create", mock.Anything, userAudit(domain.AuditUserDelete, "Status: ACTIVE", "User bob deactivated")).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), user.ID, rootAdmin))
	f.repo.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestUserService_ToggleStatus(t *testing.T) {
	tests := []struct {
		from, to domain.UserStatus
	}{
		{domain.UserStatusActive, domain.UserStatusInactive},
		{domain.UserStatusInactive, domain.UserStatusActive},
		{domain.UserStatusSuspended, domain.UserStatusActive},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			f := newUserFixture()
			user := &domain.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", FirstName: "Bob", Status: tt.from}
			f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
			f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
			f.audit.On("Create", mock.Anything, userAudit(domain.AuditUserStatusChange,
				"Status: "+string(tt.from), "Status: "+string(tt.to))).Return(nil)
			f.email.On("SendAccountStatusEmail", mock.Anything, "bob@example.com", "Bob", tt.to).Return(nil)

			got, err := f.svc.ToggleStatus(context.Background(), user.ID, rootAdmin)
			require.NoError(t, err)
			f.dispatcher.Wait()

			assert.Equal(t, tt.to, got.Status)
			f.audit.AssertExpectations(t)
			f.email.AssertExpectations(t)
		})
	}
}

func TestUserService_ChangeRole(t *testing.T) {
	f := newUserFixture()
	user := &domain.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", FirstName: "Bob", Role: domain.RoleViewer}
	f.repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Create", mock.Anything, userAudit(domain.AuditUserRoleChange, "Role: VIEWER", "Role: SUPER_USER")).Return(nil)
	f.email.On("SendRoleChangeEmail", mock.Anything, "bob@example.com", "Bob", domain.RoleSuperUser).Return(nil)

	got, err := f.svc.ChangeRole(context.Background(), user.ID, domain.RoleSuperUser, rootAdmin)
	require.NoError(t, err)
	f.dispatcher.Wait()

	assert.Equal(t, domain.RoleSuperUser, got.Role)
	f.email.AssertExpectations(t)
}

func TestUserService_ChangeRole_Invalid(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.ChangeRole(context.Background(), uuid.New(), "OWNER", rootAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserService_Queries(t *testing.T) {
	f := newUserFixture()
	f.repo.On("Search", mock.Anything, "bo", 10).Return([]domain.User{{Username: "bob"}}, nil)
	f.repo.On("ListByStatus", mock.Anything, domain.UserStatusActive, 50).Return([]domain.User{{Username: "alice"}}, nil)
	f.repo.On("Count", mock.Anything).Return(int64(7), nil)
	f.repo.On("CountByStatus", mock.Anything, domain.UserStatusActive).Return(int64(5), nil)
	ctx := context.Background()

	found, err := f.svc.Search(ctx, "  bo ")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	empty, err := f.svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	active, err := f.svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", active[0].Username)

	n, err := f.svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = f.svc.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	f.repo.AssertExpectations(t)
}
