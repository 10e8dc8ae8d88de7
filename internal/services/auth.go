package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/internal/mq"
	"github.com/cargoline/apiserver/internal/store"
	"github.com/cargoline/apiserver/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUserNotFound is returned by Login for an unknown username.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned by Login for any password verification
	// failure, including a corrupt stored hash.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUsernameTaken is returned by Register when the username already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetLoginRecord(ctx context.Context, username string) (types.LoginRecord, error)
	CreateClientAccount(ctx context.Context, account types.ClientAccount) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) error
}

// AuthService implements login and registration.
type AuthService struct {
	repo    UserRepository
	hasher  PasswordHasher
	admin   config.AdminConfig
	events  EventPublisher
	channel string
	now     func() time.Time
}

func NewAuthService(
	repo UserRepository,
	hasher PasswordHasher,
	admin config.AdminConfig,
	events EventPublisher,
	channel string,
) *AuthService {
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		admin:   admin,
		events:  events,
		channel: channel,
		now:     timestamp,
	}
}

// Login resolves credentials to a session. The configured admin pair is
// checked first, byte for byte, and never touches the database. Stored
// usernames are trimmed at registration, so the lookup trims too.
func (s *AuthService) Login(ctx context.Context, username, password string) (types.Session, error) {
	if s.isAdmin(username, password) {
		return types.Session{UserID: uuid.New(), Role: types.RoleAdmin}, nil
	}

	username = strings.TrimSpace(username)
	record, err := s.repo.GetLoginRecord(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Ctx(ctx).Warn().Str("username", username).Msg("login failed: unknown user")
			return types.Session{}, ErrUserNotFound
		}
		return types.Session{}, fmt.Errorf("get login record: %w", err)
	}

	if err := s.hasher.Verify(record.PasswordHash, password); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("username", username).Msg("login failed: password rejected")
		return types.Session{}, ErrInvalidPassword
	}

	role := types.RoleGuest
	if record.IsClient {
		role = types.RoleClient
	}
	return types.Session{UserID: record.UserID, Role: role}, nil
}

// Register creates the user, client, customer details and credentials
// rows for reg atomically. All four rows share one timestamp.
func (s *AuthService) Register(ctx context.Context, reg types.Registration) error {
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	userID := uuid.New()
	clientID := uuid.New()

	account := types.ClientAccount{
		User: types.User{
			ID:         userID,
			Username:   reg.Username,
			FirstName:  reg.FirstName,
			LastName:   reg.LastName,
			Patronymic: reg.Patronymic,
			Birthday:   reg.Birthday,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Client: types.Client{
			ID:        clientID,
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Details: types.CustomerDetails{
			ClientID:             clientID,
			AccountNumber:        reg.Details.AccountNumber,
			BIK:                  reg.Details.BIK,
			CorrespondentAccount: reg.Details.CorrespondentAccount,
			INN:                  reg.Details.INN,
			KPP:                  reg.Details.KPP,
			BankName:             reg.Details.BankName,
			BankAddress:          reg.Details.BankAddress,
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		Credentials: types.UserCredentials{
			UserID:       userID,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	if err := s.repo.CreateClientAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: %w", ErrUsernameTaken, err)
		}
		return fmt.Errorf("create client account: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", userID.String()).Str("username", reg.Username).Msg("user registered")
	publish(ctx, s.events, s.channel, mq.EventUserRegistered, UserRegistered{
		UserID:   userID,
		ClientID: clientID,
		Username: reg.Username,
	})
	return nil
}

func (s *AuthService) isAdmin(username, password string) bool {
	if s.admin.Username == "" || s.admin.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password))
	return userOK&passOK == 1
}

// UserRegistered is the payload of the user.registered event.
type UserRegistered struct {
	UserID   uuid.UUID `json:"user_id"`
	ClientID uuid.UUID `json:"client_id"`
	Username string    `json:"username"`
}

// timestamp is the current time at the precision PostgreSQL stores.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
