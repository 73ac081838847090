package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/config"
	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/mailer"
	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

const (
	msgMissingCredentials = "Please provide email and password!"
	msgIncorrectLogin     = "Incorrect email or password"
	msgNotLoggedIn        = "You are not logged in! Please log in to get access."
	msgInvalidToken       = "Invalid token. Please log in again!"
	msgExpiredToken       = "Your token has expired! Please log in again."
	msgUserGone           = "The user belonging to this token does no longer exist."
	msgPasswordChanged    = "User recently changed password! Please log in again."
	msgNoUserWithEmail    = "There is no user with that email address."
	msgMailFailed         = "There was an error sending the email. Try again later!"
	msgResetTokenInvalid  = "Token is invalid or has expired"
	msgWrongPassword      = "Your current password is wrong."
	msgNotPasswordRoute   = "This route is not for password updates. Please use /updateMyPassword."
)

// Service implements user use cases
type Service struct {
	userRepo domainUser.Repository
	mailer   mailer.Sender
	config   *config.Config
	now      func() time.Time
}

// NewService creates a new user service
func NewService(userRepo domainUser.Repository, sender mailer.Sender, cfg *config.Config) *Service {
	return &Service{
		userRepo: userRepo,
		mailer:   sender,
		config:   cfg,
		now:      time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResult, error) {
	user := req.ToEntity()

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("Signup attempt with existing email",
				zap.String("email", user.Email),
				zap.String("event", "signup_failed_duplicate_email"),
			)
		}
		return nil, err
	}

	logger.Info("User signed up",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("event", "user_registered"),
	)

	return s.signIn(user)
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, appErrors.BadRequest(msgMissingCredentials, appErrors.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByEmailWithPassword(ctx, utils.SanitizeEmail(req.Email))
	if err != nil && !errors.Is(err, resource.ErrNotFound) {
		return nil, err
	}

	if user == nil || !domainUser.CorrectPassword(req.Password, user.Password) {
		logger.Warn("Login failed",
			zap.String("email", req.Email),
			zap.String("event", "login_failed"),
		)
		return nil, appErrors.NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", msgIncorrectLogin, appErrors.ErrInvalidCredentials)
	}

	logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("event", "login_success"),
	)

	return s.signIn(user)
}

// Authenticate resolves a bearer token to a current, active user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domainUser.User, error) {
	if token == "" {
		return nil, appErrors.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", msgNotLoggedIn, appErrors.ErrUnauthorized)
	}

	claims, err := utils.ValidateToken(token, s.config.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.NewAppError(http.StatusUnauthorized, "TOKEN_EXPIRED", msgExpiredToken, appErrors.ErrTokenExpired)
		}
		return nil, appErrors.NewAppError(http.StatusUnauthorized, "INVALID_TOKEN", msgInvalidToken, appErrors.ErrInvalidToken)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		var invalid *resource.InvalidIDError
		if errors.Is(err, resource.ErrNotFound) || errors.As(err, &invalid) {
			return nil, appErrors.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", msgUserGone, appErrors.ErrUnauthorized)
		}
		return nil, err
	}

	if claims.IssuedAt == nil {
		return nil, appErrors.NewAppError(http.StatusUnauthorized, "INVALID_TOKEN", msgInvalidToken, appErrors.ErrInvalidToken)
	}
	if user.ChangedPasswordAfter(claims.IssuedAt.Unix()) {
		return nil, appErrors.NewAppError(http.StatusUnauthorized, "PASSWORD_CHANGED", msgPasswordChanged, appErrors.ErrPasswordChanged)
	}

	return user, nil
}

// ForgotPassword issues a reset token and mails a link built from baseURL.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest, baseURL string) error {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return appErrors.NotFound(msgNoUserWithEmail)
		}
		return err
	}

	token, err := user.CreatePasswordResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", baseURL, token)
	email := mailer.Email{
		To:      []string{user.Email},
		Subject: "Your password reset token (valid for 10 min)",
		Body: fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\n"+
			"If you didn't forget your password, please ignore this email!", resetURL),
	}

	if err := s.mailer.Send(ctx, email); err != nil {
		logger.Error("Failed to send password reset email",
			zap.String("user_id", user.ID),
			zap.String("event", "password_reset_mail_failed"),
			zap.Error(err),
		)

		user.ClearPasswordResetToken()
		if saveErr := s.userRepo.Save(ctx, user); saveErr != nil {
			logger.Error("Failed to clear password reset token", zap.String("user_id", user.ID), zap.Error(saveErr))
		}
		return appErrors.Internal(msgMailFailed, err)
	}

	logger.Info("Password reset token issued",
		zap.String("user_id", user.ID),
		zap.String("event", "password_reset_requested"),
	)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByResetToken(ctx, utils.HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			logger.Warn("Password reset attempt with invalid token", zap.String("event", "password_reset_invalid_token"))
			return nil, appErrors.BadRequest(msgResetTokenInvalid, domainUser.ErrTokenInvalid)
		}
		return nil, err
	}

	user.SetPassword(req.Password, req.PasswordConfirm)
	user.ClearPasswordResetToken()

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Password reset",
		zap.String("user_id", user.ID),
		zap.String("event", "password_reset"),
	)

	return s.signIn(user)
}

func (s *Service) UpdatePassword(ctx context.Context, userID string, req *UpdatePasswordRequest) (*AuthResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByIDWithPassword(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !domainUser.CorrectPassword(req.PasswordCurrent, user.Password) {
		logger.Warn("Password change with wrong current password",
			zap.String("user_id", userID),
			zap.String("event", "password_change_failed"),
		)
		return nil, appErrors.NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", msgWrongPassword, appErrors.ErrInvalidCredentials)
	}

	user.SetPassword(req.Password, req.PasswordConfirm)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Password changed",
		zap.String("user_id", userID),
		zap.String("event", "password_changed"),
	)

	return s.signIn(user)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*domainUser.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *Service) UpdateMe(ctx context.Context, userID string, req *UpdateMeRequest) (*domainUser.User, error) {
	if req.HasPassword() {
		return nil, appErrors.BadRequest(msgNotPasswordRoute, appErrors.ErrInvalidInput)
	}

	req.Normalize()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	patch := req.ToPatch()
	if len(patch) == 0 {
		return nil, appErrors.BadRequest("Please provide at least one field to update.", appErrors.ErrEmptyUpdate)
	}

	return s.userRepo.UpdateByID(ctx, userID, patch)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return err
	}

	logger.Info("User deactivated",
		zap.String("user_id", userID),
		zap.String("event", "user_deactivated"),
	)
	return nil
}

func (s *Service) signIn(user *domainUser.User) (*AuthResult, error) {
	token, err := utils.GenerateToken(user.ID, user.Role, s.config.JWT.Secret, s.config.JWT.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return &AuthResult{Token: token, User: user}, nil
}
