package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"regnify/internal/domain"
	"regnify/internal/notify"
	"regnify/internal/port"
)

// bcryptCost is shared with the CLI user seeding.
const bcryptCost = 12

const (
	minPasswordLength = 8
	userSearchLimit   = 10
	activeUsersLimit  = 50
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// CreateUserInput is the DTO for creating a user.
type CreateUserInput struct {
	Username  string          `json:"username" binding:"required,min=3"`
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=8"`
	FirstName string          `json:"first_name" binding:"required"`
	LastName  string          `json:"last_name"`
	Role      domain.UserRole `json:"role" binding:"required"`
}

// UpdateUserInput carries the editable user fields. Nil fields keep their value.
type UpdateUserInput struct {
	Username  *string            `json:"username"`
	Email     *string            `json:"email" binding:"omitempty,email"`
	Password  *string            `json:"password"`
	FirstName *string            `json:"first_name"`
	LastName  *string            `json:"last_name"`
	Role      *domain.UserRole   `json:"role"`
	Status    *domain.UserStatus `json:"status"`
}

// ResetPasswordInput is the DTO for an administrative password reset.
type ResetPasswordInput struct {
	Password string `json:"password" binding:"required,min=8"`
}

// UserService defines the user management contract.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput, actor Actor) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput, actor Actor) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	ToggleStatus(ctx context.Context, id uuid.UUID, actor Actor) (*domain.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role domain.UserRole, actor Actor) (*domain.User, error)
	ResetPassword(ctx context.Context, id uuid.UUID, password string, actor Actor) error
	Unlock(ctx context.Context, id uuid.UUID, actor Actor) error
	Search(ctx context.Context, query string) ([]domain.User, error)
	Active(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	ActiveCount(ctx context.Context) (int64, error)
}

type userService struct {
	repo       port.UserRepository
	auditRepo  port.AuditRepository
	sessions   port.SessionStore
	email      port.EmailSender
	dispatcher *notify.Dispatcher
}

// NewUserService creates a new UserService implementation.
func NewUserService(
	repo port.UserRepository,
	auditRepo port.AuditRepository,
	sessions port.SessionStore,
	email port.EmailSender,
	dispatcher *notify.Dispatcher,
) UserService {
	return &userService{repo: repo, auditRepo: auditRepo, sessions: sessions, email: email, dispatcher: dispatcher}
}

// HashPassword returns the bcrypt hash stored for a user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// ValidUserRole reports whether r is an assignable role.
func ValidUserRole(r domain.UserRole) bool {
	switch r {
	case domain.RoleAdminModerator, domain.RoleSuperUser, domain.RoleViewer:
		return true
	}
	return false
}

func (s *userService) Create(ctx context.Context, input CreateUserInput, actor Actor) (*domain.User, error) {
	if !ValidUserRole(input.Role) {
		return nil, domain.ErrForbidden
	}
	if !usernamePattern.MatchString(input.Username) {
		return nil, domain.ErrInvalidUsername
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		Status:       domain.UserStatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.audit(ctx, domain.AuditUserCreate, user, actor, "", "User "+user.Username+" created")

	toName := user.FirstName
	s.dispatcher.Go("welcome email", func(ctx context.Context) error {
		return s.email.SendWelcomeEmail(ctx, user.Email, toName, user.Username)
	})
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *userService) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// Update applies the non-nil fields of input. Changing the role this way needs
// the same privilege as ChangeRole.
func (s *userService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput, actor Actor) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := roleAndStatus(user)

	if input.Username != nil {
		if !usernamePattern.MatchString(*input.Username) {
			return nil, domain.ErrInvalidUsername
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < minPasswordLength {
			return nil, domain.ErrPasswordTooShort
		}
		if user.PasswordHash, err = HashPassword(*input.Password); err != nil {
			return nil, err
		}
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Role != nil && *input.Role != user.Role {
		if !ValidUserRole(*input.Role) {
			return nil, domain.ErrInvalidRole
		}
		if actor.Role != domain.RoleAdminModerator {
			return nil, domain.ErrForbidden
		}
		user.Role = *input.Role
	}
	if input.Status != nil {
		if !domain.ValidUserStatuses[*input.Status] {
			return nil, domain.ErrInvalidUserStatus
		}
		user.Status = *input.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("userService.Update: %w", err)
	}
	s.audit(ctx, domain.AuditUserUpdate, user, actor, before, roleAndStatus(user))
	return user, nil
}

// Delete deactivates the account. Users are never removed.
func (s *userService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	old := "Status: " + string(user.Status)
	user.Status = domain.UserStatusInactive
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("userService.Delete: %w", err)
	}
	s.audit(ctx, domain.AuditUserDelete, user, actor, old, "User "+user.Username+" deactivated")
	return nil
}

// ToggleStatus deactivates an active account and reactivates any other.
func (s *userService) ToggleStatus(ctx context.Context, id uuid.UUID, actor Actor) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := user.Status
	if user.Status == domain.UserStatusActive {
		user.Status = domain.UserStatusInactive
	} else {
		user.Status = domain.UserStatusActive
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("userService.ToggleStatus: %w", err)
	}
	s.audit(ctx, domain.AuditUserStatusChange, user, actor, "Status: "+string(old), "Status: "+string(user.Status))

	to, name, status := user.Email, user.FirstName, user.Status
	s.dispatcher.Go("account status email", func(ctx context.Context) error {
		return s.email.SendAccountStatusEmail(ctx, to, name, status)
	})
	return user, nil
}

func (s *userService) ChangeRole(ctx context.Context, id uuid.UUID, role domain.UserRole, actor Actor) (*domain.User, error) {
	if !ValidUserRole(role) {
		return nil, domain.ErrInvalidRole
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := user.Role
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("userService.ChangeRole: %w", err)
	}
	s.audit(ctx, domain.AuditUserRoleChange, user, actor, "Role: "+string(old), "Role: "+string(role))

	to, name := user.Email, user.FirstName
	s.dispatcher.Go("role change email", func(ctx context.Context) error {
		return s.email.SendRoleChangeEmail(ctx, to, name, role)
	})
	return user, nil
}

// ResetPassword sets a new password and clears any login lockout.
func (s *userService) ResetPassword(ctx context.Context, id uuid.UUID, password string, actor Actor) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.clearLockout(ctx, user.Username); err != nil {
		log.Printf("userService.ResetPassword: %v", err)
	}
	s.audit(ctx, domain.AuditPasswordReset, user, actor, "", "Password reset for "+user.Username)
	return nil
}

// Unlock lifts a login lockout before it expires.
func (s *userService) Unlock(ctx context.Context, id uuid.UUID, actor Actor) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clearLockout(ctx, user.Username); err != nil {
		return fmt.Errorf("userService.Unlock: %w", err)
	}
	s.audit(ctx, domain.AuditAccountUnlock, user, actor, "", "Account unlocked for "+user.Username)

	to, name := user.Email, user.FirstName
	s.dispatcher.Go("account unlocked email", func(ctx context.Context) error {
		return s.email.SendAccountUnlockedEmail(ctx, to, name)
	})
	return nil
}

func (s *userService) Search(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.User{}, nil
	}
	return s.repo.Search(ctx, query, userSearchLimit)
}

func (s *userService) Active(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListByStatus(ctx, domain.UserStatusActive, activeUsersLimit)
}

func (s *userService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *userService) ActiveCount(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, domain.UserStatusActive)
}

func (s *userService) clearLockout(ctx context.Context, username string) error {
	if err := s.sessions.Unlock(ctx, username); err != nil {
		return fmt.Errorf("clearing lock for %s: %w", username, err)
	}
	if err := s.sessions.ResetFailures(ctx, username); err != nil {
		return fmt.Errorf("resetting failures for %s: %w", username, err)
	}
	return nil
}

func (s *userService) audit(ctx context.Context, action domain.AuditAction, user *domain.User, actor Actor, oldValue, newValue string) {
	id := user.ID
	recordAudit(ctx, s.auditRepo, "userService.audit", actor, &domain.AuditLog{
		Action:     action,
		EntityType: domain.AuditEntityUser,
		EntityID:   &id,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

func roleAndStatus(u *domain.User) string {
	return fmt.Sprintf("Role: %s, Status: %s", u.Role, u.Status)
}
