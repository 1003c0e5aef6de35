package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/config"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// Session is the outcome of a successful register or login: the account, its
// resolved role and the dashboard route the client should land on.
type Session struct {
	User      *domain.User
	Role      domain.Role
	Token     string
	ExpiresAt time.Time
	Dashboard string
}

// AuthService coordinates registration, login, verification and password flows.
type AuthService struct {
	users        repository.UserRepository
	roles        repository.RoleAssignmentRepository
	resets       repository.PasswordResetRepository
	verification repository.VerificationStore
	dispatcher   events.Dispatcher
	tokenMgr     *auth.TokenManager
	bcryptCost   int
	resetTTL     time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	RoleRepo          repository.RoleAssignmentRepository
	PasswordResetRepo repository.PasswordResetRepository
	VerificationStore repository.VerificationStore
	Dispatcher        events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:        deps.UserRepo,
		roles:        deps.RoleRepo,
		resets:       deps.PasswordResetRepo,
		verification: deps.VerificationStore,
		dispatcher:   deps.Dispatcher,
		tokenMgr:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:   cfg.Auth.BcryptCost,
		resetTTL:     time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// Register creates a new account with the complainer role. The user and role
// rows are written in one transaction; validation failures persist nothing.
func (s *AuthService) Register(ctx context.Context, name, email, password, passwordConfirmation string) (*Session, error) {
	fields := auth.ValidatePassword(password, passwordConfirmation)
	if fields == nil {
		fields = map[string][]string{}
	}
	if strings.TrimSpace(name) == "" {
		fields["name"] = append(fields["name"], "name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = append(fields["email"], "email is not a valid address")
	} else if _, err := s.users.GetByEmail(ctx, email); err == nil {
		fields["email"] = append(fields["email"], "email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidation(fields)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	// Every self-registered account starts as a complainer, unscoped.
	assignment := &domain.RoleAssignment{Role: domain.RoleComplainer}
	if err := s.users.CreateWithAssignment(ctx, user, assignment); err != nil {
		// A concurrent registration can slip past the uniqueness check above.
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewFieldValidation(map[string][]string{"email": {"email already registered"}})
		}
		return nil, apperrors.MapError(err)
	}

	verificationToken, err := s.verification.Issue(ctx, user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishRegistered(ctx, user, verificationToken)

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, assignment.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Session{
		User:      user,
		Role:      assignment.Role,
		Token:     token,
		ExpiresAt: exp,
		Dashboard: assignment.Role.DashboardRoute(),
	}, nil
}

// Login authenticates an account and resolves its primary role.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	assignment, err := s.resolvePrimaryRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, assignment.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Session{
		User:      user,
		Role:      assignment.Role,
		Token:     token,
		ExpiresAt: exp,
		Dashboard: assignment.Role.DashboardRoute(),
	}, nil
}

// VerifyEmail consumes a verification token and stamps the account.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.verification.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationTokenUnknown) {
			return apperrors.NewValidationError("verification token invalid or expired", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewConflict("email already verified", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// RequestPasswordReset persists a reset token for the account email.
// The token is mailed out of band; the mail dispatch is a stub.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword, confirmation string) error {
	if fields := auth.ValidatePassword(newPassword, confirmation); fields != nil {
		return apperrors.NewFieldValidation(fields)
	}

	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("reset token invalid", nil)
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("reset token expired or used", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.resets.MarkUsed(ctx, token.ID))
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmation string) error {
	if fields := auth.ValidatePassword(newPassword, confirmation); fields != nil {
		return apperrors.NewFieldValidation(fields)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) resolvePrimaryRole(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	assignment, err := s.roles.PrimaryForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewRoleMissing(userID)
		}
		return nil, apperrors.MapError(err)
	}
	return assignment, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, user *domain.User, verificationToken string) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		Actor:     events.Actor{UserID: user.ID, Role: domain.RoleComplainer},
		Timestamp: time.Now(),
		Payload: events.UserRegisteredPayload{
			UserID:            user.ID,
			Email:             user.Email,
			VerificationToken: verificationToken,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
