package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/mailer"
	"notekeeper-be/internal/pkg/token"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/pkg/events"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	msgEmailTaken         = "user with this email already exists"
	msgInvalidCredentials = "Invalid Credentials!"
	minPasswordChars      = 6
	maxPasswordBytes      = 72
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	tokenIssuer  token.Issuer
	emailService mailer.IEmailService
	activity     IActivityPublisher
	logger       logger.ILogger
	bcryptCost   int
	// compared against when the email is unknown so both login failures cost the same
	dummyHash []byte
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	tokenIssuer token.Issuer,
	emailService mailer.IEmailService,
	activity IActivityPublisher,
	log logger.ILogger,
	bcryptCost int,
) IAuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)

	return &authService{
		uowFactory:   uowFactory,
		tokenIssuer:  tokenIssuer,
		emailService: emailService,
		activity:     activity,
		logger:       log,
		bcryptCost:   bcryptCost,
		dummyHash:    dummyHash,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" {
		return nil, apperror.Validation("email is required")
	}
	if fullName == "" {
		return nil, apperror.Validation("fullName is required")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordChars {
		return nil, apperror.Validation("password must be at least 6 characters")
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, apperror.Validation("password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, s.internal("failed to hash password", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, s.internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, s.internal("failed to look up email", err)
	}
	if existing != nil {
		return nil, apperror.Conflict(msgEmailTaken)
	}

	// Id and CreatedAt are filled in by the database.
	user := &entity.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		return nil, s.internal("failed to create user", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, s.internal("failed to commit registration", err)
	}

	accessToken, err := s.tokenIssuer.Issue(user.Id)
	if err != nil {
		return nil, s.internal("failed to issue token", err)
	}

	go func(email, fullName string) {
		_ = s.emailService.SendWelcome(email, fullName)
	}(user.Email, user.FullName)

	s.activity.Publish(ctx, events.New(events.UserRegistered, map[string]interface{}{
		"user_id": user.Id.String(),
		"email":   user.Email,
	}))
	s.logger.Info("auth_service", "user registered", map[string]interface{}{"user_id": user.Id.String()})

	return &dto.RegisterResponse{
		User:        toUserResponse(user),
		AccessToken: accessToken,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, s.internal("failed to look up user", err)
	}

	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	compareErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password))
	// bcrypt ignores everything past 72 bytes, and no stored password is longer.
	tooLong := len(req.Password) > maxPasswordBytes
	if user == nil || compareErr != nil || tooLong {
		s.logger.Warn("auth_service", "login rejected", map[string]interface{}{"known_email": user != nil})
		return nil, apperror.NotFound(msgInvalidCredentials)
	}

	accessToken, err := s.tokenIssuer.Issue(user.Id)
	if err != nil {
		return nil, s.internal("failed to issue token", err)
	}

	s.activity.Publish(ctx, events.New(events.UserLogin, map[string]interface{}{
		"user_id": user.Id.String(),
	}))

	return &dto.LoginResponse{
		Email:       user.Email,
		AccessToken: accessToken,
	}, nil
}

func (s *authService) internal(message string, err error) error {
	s.logger.Error("auth_service", message, map[string]interface{}{"error": err})
	return apperror.Internal(err)
}

func toUserResponse(user *entity.User) dto.UserResponse {
	return dto.UserResponse{
		FullName:  user.FullName,
		Email:     user.Email,
		Id:        user.Id,
		CreatedOn: user.CreatedAt,
	}
}
