package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AnthoniusHendriyanto/blogger-auth/config"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blogger-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/blogger-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/blogger-auth/pkg/constant"
)

// AccountService owns registration, email confirmation and password
// recovery. One-time codes are opaque random identifiers; their delivery is
// fire-and-forget and never blocks the flow that issued them.
type AccountService struct {
	users    domain.UserRepository
	recovery domain.RecoveryCodeRepository
	notifier domain.Notifier
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewAccountService(
	users domain.UserRepository,
	recovery domain.RecoveryCodeRepository,
	notifier domain.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		users:    users,
		recovery: recovery,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an unconfirmed user with a pending confirmation code and
// dispatches the code by email.
func (s *AccountService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	existing, err := s.users.GetByLogin(ctx, input.Login)
	if err != nil {
		return nil, storeFailure(err)
	}
	if existing != nil {
		return nil, autherror.ErrLoginAlreadyInUse
	}

	existing, err = s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, storeFailure(err)
	}
	if existing != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now()

	user := &domain.User{
		ID:               uuid.NewString(),
		Login:            input.Login,
		Email:            input.Email,
		PasswordHash:     string(hash),
		IsConfirmed:      false,
		ConfirmationCode: uuid.NewString(),
		CodeExpiresAt:    now.Add(constant.ConfirmationCodeTTL),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeFailure(err)
	}

	s.dispatchConfirmationCode(user.Email, user.ConfirmationCode)

	return user, nil
}

// ConfirmAccount flips the confirmed flag exactly once. Unknown, expired and
// mismatched codes all report plain false.
func (s *AccountService) ConfirmAccount(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	user, err := s.users.GetByConfirmationCode(ctx, code)
	if err != nil {
		return false, storeFailure(err)
	}

	if user == nil || user.IsConfirmed {
		return false, nil
	}

	if s.now().After(user.CodeExpiresAt) {
		return false, nil
	}

	if code != user.ConfirmationCode {
		return false, nil
	}

	confirmed, err := s.users.SetConfirmed(ctx, user.ID)
	if err != nil {
		return false, storeFailure(err)
	}

	return confirmed, nil
}

// ResendConfirmationCode supersedes any pending code for the account.
// Already-confirmed accounts report false.
func (s *AccountService) ResendConfirmationCode(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, storeFailure(err)
	}

	if user == nil || user.IsConfirmed {
		return false, nil
	}

	code := uuid.NewString()
	expiresAt := s.now().Add(constant.ConfirmationCodeTTL)

	if err := s.users.SetConfirmationCode(ctx, user.ID, code, expiresAt); err != nil {
		return false, storeFailure(err)
	}

	s.dispatchConfirmationCode(user.Email, code)

	return true, nil
}

// SendRecoveryCode always issues a fresh time-boxed code, superseding any
// outstanding one. An unknown email is a silent no-op so callers cannot
// probe which addresses exist.
func (s *AccountService) SendRecoveryCode(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return storeFailure(err)
	}

	if user == nil {
		return nil
	}

	now := s.now()
	code := &domain.RecoveryCode{
		Code:      uuid.NewString(),
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(constant.RecoveryCodeTTL),
	}

	if err := s.recovery.Upsert(ctx, code); err != nil {
		return storeFailure(err)
	}

	s.dispatchRecoveryCode(user.Email, code.Code)

	return nil
}

// ConfirmPasswordRecovery consumes the code and overwrites the password
// hash. Consumption is a single conditional update, so replaying the same
// code can only succeed once, and an expired code fails exactly like an
// unknown one.
func (s *AccountService) ConfirmPasswordRecovery(ctx context.Context, input dto.NewPasswordInput) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	userID, err := s.recovery.Consume(ctx, input.RecoveryCode, s.now())
	if err != nil {
		return storeFailure(err)
	}

	if userID == "" {
		return autherror.ErrInvalidCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return storeFailure(err)
	}

	s.logger.Info("password recovered", zap.String("user_id", userID))

	return nil
}

func (s *AccountService) dispatchConfirmationCode(email, code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StoreTimeout)
		defer cancel()

		if err := s.notifier.SendConfirmationCode(ctx, email, code); err != nil {
			s.logger.Warn("failed to send confirmation code", zap.Error(err))
		}
	}()
}

func (s *AccountService) dispatchRecoveryCode(email, code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StoreTimeout)
		defer cancel()

		if err := s.notifier.SendRecoveryCode(ctx, email, code); err != nil {
			s.logger.Warn("failed to send recovery code", zap.Error(err))
		}
	}()
}
