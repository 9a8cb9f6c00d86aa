package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/modulehub/internal/logger"
	"github.com/dtroode/modulehub/internal/model"
)

// defaultDummyHash is used when the hasher cannot produce a dummy hash of its own.
const defaultDummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z2VKpQWc8iq5qk9P0V6W8rWa"

// dummyHasher is implemented by hashers that can provide a hash at their own cost.
type dummyHasher interface {
	DummyHash() string
}

// AuthOption configures Auth.
type AuthOption func(*Auth)

// WithTransactor makes signup write the profile and the credential in one transaction.
func WithTransactor(tx model.Transactor) AuthOption {
	return func(a *Auth) {
		a.tx = tx
	}
}

// Auth implements signup, login and identity introspection.
type Auth struct {
	userStore       model.UserStore
	credentialStore model.CredentialStore
	hasher          model.PasswordHasher
	tokenManager    model.TokenManager
	tx              model.Transactor
	logger          *logger.Logger

	// dummyHash is verified when a login names an unknown user so both
	// paths cost one comparison at the same work factor.
	dummyHash string
}

func NewAuth(
	userStore model.UserStore,
	credentialStore model.CredentialStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	logger *logger.Logger,
	opts ...AuthOption,
) *Auth {
	a := &Auth{
		userStore:       userStore,
		credentialStore: credentialStore,
		hasher:          hasher,
		tokenManager:    tokenManager,
		logger:          logger,
		dummyHash:       defaultDummyHash,
	}
	if dh, ok := hasher.(dummyHasher); ok {
		a.dummyHash = dh.DummyHash()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Signup registers a new user. The returned profile never carries password material.
func (a *Auth) Signup(ctx context.Context, params model.SignupParams) (model.User, error) {
	email := params.Profile.Email
	a.logger.Debug("Auth service: starting user signup",
		"email", email)

	existing, err := a.userStore.FindByEmail(ctx, email)
	if err != nil {
		a.logger.Error("Auth service: failed to look up user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if len(existing) > 0 {
		a.logger.Info("Auth service: user already exists",
			"email", email)
		return model.User{}, model.ErrDuplicateUser
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := params.Profile
	profile.ID = uuid.Nil

	var user model.User
	if a.tx != nil {
		err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
			var txErr error
			user, txErr = a.persist(ctx, profile, hash)
			return txErr
		})
	} else {
		user, err = a.persistCompensated(ctx, profile, hash)
	}
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			a.logger.Info("Auth service: user already exists",
				"email", email)
			return model.User{}, model.ErrDuplicateUser
		}
		return model.User{}, err
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", user.ID)

	return user, nil
}

// persist writes the profile and then the credential. On a failed
// credential write it returns the created profile with ErrPartialSignup.
func (a *Auth) persist(ctx context.Context, profile model.User, hash string) (model.User, error) {
	user, err := a.userStore.Create(ctx, profile)
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", profile.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	_, err = a.credentialStore.Create(ctx, model.Credential{UserID: user.ID, PasswordHash: hash})
	if err != nil {
		a.logger.Error("Auth service: failed to store credential",
			"user_id", user.ID,
			"error", err.Error())
		return user, fmt.Errorf("%w: %v", model.ErrPartialSignup, err)
	}

	return user, nil
}

// persistCompensated deletes the profile again when the credential cannot be stored.
func (a *Auth) persistCompensated(ctx context.Context, profile model.User, hash string) (model.User, error) {
	user, err := a.persist(ctx, profile, hash)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrPartialSignup) {
		return model.User{}, err
	}

	if delErr := a.userStore.Delete(ctx, user.ID); delErr != nil {
		a.logger.Error("Auth service: failed to delete orphaned user, manual cleanup required",
			"user_id", user.ID,
			"error", delErr.Error())
	} else {
		a.logger.Warn("Auth service: deleted user without credential",
			"user_id", user.ID)
	}

	return model.User{}, err
}

// Login verifies an email and password pair and issues an access token.
// Every failure other than an infrastructure error is ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	a.logger.Debug("Auth service: starting login",
		"email", email)

	users, err := a.userStore.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user by email: %w", err)
	}
	if len(users) == 0 {
		a.rejectLogin(email, password, "unknown email")
		return "", model.ErrInvalidCredentials
	}
	user := users[0]

	credential, err := a.credentialStore.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.rejectLogin(email, password, "no credential")
			return "", model.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get credential: %w", err)
	}

	ok, err := a.hasher.Verify(credential.PasswordHash, password)
	if err != nil {
		a.logger.Error("Auth service: failed to verify password",
			"user_id", user.ID,
			"error", err.Error())
		return "", model.ErrInvalidCredentials
	}
	if !ok {
		a.logger.Info("Auth service: login rejected",
			"email", email,
			"reason", "password mismatch")
		return "", model.ErrInvalidCredentials
	}

	token, err := a.tokenManager.GenerateAccessToken(user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to generate access token",
			"user_id", user.ID,
			"error", err.Error())
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return token, nil
}

func (a *Auth) rejectLogin(email, password, reason string) {
	_, _ = a.hasher.Verify(a.dummyHash, password)
	a.logger.Info("Auth service: login rejected",
		"email", email,
		"reason", reason)
}

// Authenticate returns the user id carried by a valid access token.
func (a *Auth) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, model.ErrUnauthenticated
	}

	userID, err := a.tokenManager.ParseAccessToken(token)
	if err != nil {
		a.logger.Debug("Auth service: token rejected",
			"error", err.Error())
		return uuid.Nil, model.ErrUnauthenticated
	}
	if userID == uuid.Nil {
		return uuid.Nil, model.ErrUnauthenticated
	}

	return userID, nil
}

// GetUser resolves a user id to the stored profile.
func (a *Auth) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
