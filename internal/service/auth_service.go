package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/config"
	"ai-webchat-be/internal/dto"
	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/pkg/logger"
	"ai-webchat-be/internal/pkg/mailer"
	"ai-webchat-be/internal/repository/specification"
	"ai-webchat-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

// GenerateUserID derives the stable user identifier from the credential
// triple. Pure and deterministic: the same inputs always produce the same
// identifier, which is what keeps membership joins correct when the caller
// resolves the current user from stored credentials instead of a token.
func GenerateUserID(name, email, password string) string {
	sum := sha256.Sum256([]byte(name + email + password))
	return hex.EncodeToString(sum[:])
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	authCfg      config.AuthConfig
	logger       logger.ILogger
	// Pending verification codes, keyed by email. Codes expire after 15
	// minutes; automatic purge every 5.
	verificationCodes *cache.Cache
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	authCfg config.AuthConfig,
	sysLogger logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:        uowFactory,
		emailService:      emailService,
		authCfg:           authCfg,
		logger:            sysLogger,
		verificationCodes: cache.New(15*time.Minute, 5*time.Minute),
	}
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if existing != nil {
		return nil, apperror.Wrapf(apperror.ErrIdentityConflict, "email %s already registered", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		UserId:       GenerateUserID(req.Name, req.Email, req.Password),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &hashStr,
		Verified:     false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		s.logger.Error("auth", "failed to create user", map[string]interface{}{"email": req.Email, "error": err.Error()})
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}
	s.verificationCodes.Set(user.Email, code, cache.DefaultExpiration)

	go func() {
		if emailErr := s.emailService.SendVerificationCode(user.Email, code); emailErr != nil {
			s.logger.Warn("auth", "failed to send verification email", map[string]interface{}{"email": user.Email, "error": emailErr.Error()})
		}
	}()

	return &dto.RegisterResponse{UserId: user.UserId, Email: user.Email}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	if len(req.Code) != 6 {
		return apperror.Wrapf(apperror.ErrValidationFailure, "verification code must be 6 digits")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if user == nil {
		return apperror.Wrapf(apperror.ErrValidationFailure, "unknown email")
	}
	if user.Verified {
		return nil
	}

	stored, found := s.verificationCodes.Get(req.Email)
	if !found || stored.(string) != req.Code {
		return apperror.Wrapf(apperror.ErrValidationFailure, "invalid or expired verification code")
	}

	if err := uow.UserRepository().MarkVerified(ctx, user.UserId); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	s.verificationCodes.Delete(req.Email)

	return nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	if user == nil || user.PasswordHash == nil {
		return nil, apperror.Wrapf(apperror.ErrNotAuthenticated, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Wrapf(apperror.ErrNotAuthenticated, "invalid credentials")
	}

	// Verification is checked after the password so an unverified response
	// never confirms credentials for a probing caller.
	if !user.Verified {
		return nil, apperror.Wrapf(apperror.ErrUnverifiedAccount, "email not verified, check your inbox for the code")
	}

	// Explicit opaque session credential. The derived identifier is never
	// handed out as a token.
	claims := jwt.MapClaims{
		"user_id": user.UserId,
		"exp":     time.Now().Add(s.authCfg.TokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.authCfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			UserId:    user.UserId,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}
