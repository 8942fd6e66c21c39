package service

import (
	"context"
	"fmt"
	"strings"

	"aspen/config"
	"aspen/infras/jwt"
	"aspen/infras/otel"
	"aspen/internal/domains/auth/model/dto"
	userModel "aspen/internal/domains/user/model"
	userRepo "aspen/internal/domains/user/repository"
	"aspen/shared"
	"aspen/shared/constant"
	"aspen/shared/failure"
	"aspen/shared/password"
	"aspen/shared/timezone"

	"github.com/rs/zerolog/log"
)

const msgInvalidCredentials = "invalid email or password"

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.TokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) error
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(userRepo userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

// Register creates a self-service account. It always gets the guest role;
// staff roles are granted through user management.
func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer scope.TraceIfError(&err)

	exists, err := s.userRepo.Exist(ctx, shared.FilterByID(strings.ToLower(strings.TrimSpace(req.Email)), userModel.FieldEmail, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return failure.StorageUnavailable(fmt.Errorf("failed to check if user exists: %w", err)) // nolint:wrapcheck
	}

	if exists {
		return failure.Conflict("email already registered")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return failure.BadRequest(fmt.Errorf("failed to hash password: %w", err))
	}

	if err = s.userRepo.Insert(ctx, req.ToUserModel(constant.SystemUser, hashedPassword)); err != nil {
		log.Error().Err(err).Msg("failed to create user")

		if shared.IsUniqueViolation(err) {
			return failure.Conflict("email already registered")
		}

		return failure.StorageUnavailable(fmt.Errorf("failed to create user: %w", err)) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to get user: %w", err)) // nolint:wrapcheck
	}

	if user.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with non-existent email")

		return res, failure.Unauthorized(msgInvalidCredentials)
	}

	if err := password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, failure.Unauthorized(msgInvalidCredentials)
	}

	if !user.Active {
		return res, failure.Forbidden("user account is deactivated")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email, user.Level)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, failure.InternalError(fmt.Errorf("failed to generate tokens: %w", err))
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, timezone.Now()); err != nil {
		log.Warn().Err(err).Str("userID", user.ID).Msg("failed to update last login")
	}

	return dto.NewTokenResponse(tokenPair, user.Level), nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.TokenResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(&err)

	tokenPair, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token")
	}

	return dto.NewTokenResponse(tokenPair, constant.Empty), nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := shared.FilterByID(userID, userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return failure.StorageUnavailable(fmt.Errorf("failed to get user: %w", err)) // nolint:wrapcheck
	}

	if user.ID == constant.Empty {
		return failure.NotFound("user not found")
	}

	if err := password.Verify(req.CurrentPassword, user.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return failure.BadRequest(fmt.Errorf("failed to hash new password: %w", err))
	}

	update := dto.PasswordUpdate{Password: hashedPassword}

	if err = s.userRepo.Update(ctx, shared.TransformFields(update, userID), filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return failure.StorageUnavailable(fmt.Errorf("failed to update password: %w", err)) // nolint:wrapcheck
	}

	return nil
}
