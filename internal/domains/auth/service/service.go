package service

import (
	"context"
	"errors"
	"fmt"
	"miyabi/config"
	"miyabi/infras/jwt"
	"miyabi/infras/otel"
	accessLogModel "miyabi/internal/domains/accesslog/model"
	accessLogDto "miyabi/internal/domains/accesslog/model/dto"
	accessLogRepo "miyabi/internal/domains/accesslog/repository"
	"miyabi/internal/domains/auth/model/dto"
	guestModel "miyabi/internal/domains/guest/model"
	guestDto "miyabi/internal/domains/guest/model/dto"
	guestRepo "miyabi/internal/domains/guest/repository"
	userModel "miyabi/internal/domains/user/model"
	userRepo "miyabi/internal/domains/user/repository"
	"miyabi/shared"
	"miyabi/shared/constant"
	gDto "miyabi/shared/dto"
	"miyabi/shared/failure"
	"miyabi/shared/password"
	"miyabi/shared/timezone"

	"github.com/rs/zerolog/log"
)

var errInvalidCredentials = failure.Unauthorized("invalid email or password")

type Auth interface {
	StaffLogin(ctx context.Context, req dto.LoginRequest, clientIP string) (dto.LoginResponse, error)
	Register(ctx context.Context, req guestDto.CreateGuestRequest) (string, error)
	GuestLogin(ctx context.Context, req dto.LoginRequest, clientIP string) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, caller gDto.Caller, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	userRepo      userRepo.User
	guestRepo     guestRepo.Guest
	accessLogRepo accessLogRepo.AccessLog
	cfg           *config.Config
	otel          otel.Otel
	jwtService    jwt.JWT
}

func New(userRepo userRepo.User, guestRepo guestRepo.Guest, accessLogRepo accessLogRepo.AccessLog, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		userRepo:      userRepo,
		guestRepo:     guestRepo,
		accessLogRepo: accessLogRepo,
		cfg:           cfg,
		otel:          otel,
		jwtService:    jwt,
	}
}

func emailFilter(email, table string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    "email",
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    table,
			},
		},
	}
}

// checkCredentials hides whether the account exists behind the same error as a wrong password.
func checkCredentials(plain, hash string, active bool) error {
	if hash == constant.Empty {
		return errInvalidCredentials
	}

	if err := password.Verify(plain, hash); err != nil {
		if errors.Is(err, password.ErrInvalidPassword) {
			return errInvalidCredentials
		}

		return fmt.Errorf("failed to verify password: %w", err)
	}

	if !active {
		return failure.Forbidden("account is deactivated")
	}

	return nil
}

// completeLogin issues the token pair and writes the audit trail shared by every login.
func (s *serviceImpl) completeLogin(ctx context.Context, subjectID, email, role, userType, clientIP string, touch func(fields map[string]any) error) (res dto.LoginResponse, err error) {
	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, subjectID, email, role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	lastLogin := dto.UpdateLastLoginRequest{LastLogin: timezone.Now()}

	if err = touch(shared.TransformFields(lastLogin, subjectID)); err != nil {
		log.Warn().Err(err).Str("subject_id", subjectID).Msg("failed to update last login")
	}

	record := accessLogDto.RecordAccessRequest{SubjectID: subjectID, UserType: userType, AccessIP: clientIP}

	if err = s.accessLogRepo.Insert(ctx, record.ToModel()); err != nil {
		log.Error().Err(err).Str("subject_id", subjectID).Msg("failed to record access")

		return res, fmt.Errorf("failed to record access: %w", err)
	}

	res.FromTokenPair(tokenPair, subjectID, role)

	return res, nil
}

func (s *serviceImpl) StaffLogin(ctx context.Context, req dto.LoginRequest, clientIP string) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.StaffLogin")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := emailFilter(req.Email, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if err = checkCredentials(req.Password, user.Password, user.Active); err != nil {
		log.Warn().Str("email", req.Email).Msg("rejected staff login")

		return res, err
	}

	return s.completeLogin(ctx, user.ID, user.Email, user.Role, accessLogModel.UserTypeStaff, clientIP, func(fields map[string]any) error {
		return s.userRepo.Update(ctx, fields, shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName))
	})
}

func (s *serviceImpl) Register(ctx context.Context, req guestDto.CreateGuestRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exists, err := s.guestRepo.Exist(ctx, emailFilter(req.Email, guestModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if guest exists")

		return constant.Empty, fmt.Errorf("failed to check if guest exists: %w", err)
	}

	if exists {
		return constant.Empty, failure.Conflict("email already registered")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return constant.Empty, fmt.Errorf("failed to hash password: %w", err)
	}

	guest := req.ToModel(constant.Empty, hashedPassword)

	if err = s.guestRepo.Insert(ctx, guest); err != nil {
		log.Error().Err(err).Msg("failed to register guest")

		if shared.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
			return constant.Empty, failure.Conflict("a guest with this dni or email already exists")
		}

		return constant.Empty, fmt.Errorf("failed to register guest: %w", err)
	}

	return guest.ID, nil
}

func (s *serviceImpl) GuestLogin(ctx context.Context, req dto.LoginRequest, clientIP string) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.GuestLogin")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	guest, err := s.guestRepo.Get(ctx, emailFilter(req.Email, guestModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get guest")

		return res, fmt.Errorf("failed to get guest: %w", err)
	}

	if err = checkCredentials(req.Password, guest.Password, guest.Active); err != nil {
		log.Warn().Str("email", req.Email).Msg("rejected guest login")

		return res, err
	}

	return s.completeLogin(ctx, guest.ID, guest.Email, constant.RoleGuest, accessLogModel.UserTypeGuest, clientIP, func(fields map[string]any) error {
		return s.guestRepo.Update(ctx, fields, shared.FilterByID(guest.ID, guestModel.FieldID, guestModel.TableName))
	})
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tokenPair, err := s.jwtService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token")
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, caller gDto.Caller, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var (
		current string
		update  func(fields map[string]any) error
	)

	if caller.IsGuest() {
		filter := shared.FilterByID(caller.ID, guestModel.FieldID, guestModel.TableName)

		guest, err := s.guestRepo.Get(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get guest")

			return fmt.Errorf("failed to get guest: %w", err)
		}

		if guest.ID == constant.Empty {
			return failure.NotFound("guest not found")
		}

		current = guest.Password
		update = func(fields map[string]any) error { return s.guestRepo.Update(ctx, fields, filter) }
	} else {
		filter := shared.FilterByID(caller.ID, userModel.FieldID, userModel.TableName)

		user, err := s.userRepo.Get(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get user")

			return fmt.Errorf("failed to get user: %w", err)
		}

		if user.ID == constant.Empty {
			return failure.NotFound("user not found")
		}

		current = user.Password
		update = func(fields map[string]any) error { return s.userRepo.Update(ctx, fields, filter) }
	}

	if err = password.Verify(req.CurrentPassword, current); err != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err = update(shared.TransformFields(dto.UpdatePasswordRequest{Password: hashedPassword}, caller.Name())); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
