package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"chatline/auth"
	"chatline/errors"
	"chatline/observability"
	"chatline/repositories"
)

type IAuthService interface {
	Register(ctx context.Context, username, credential string) (Token, error)
	Login(ctx context.Context, username, credential string) (Token, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         auth.TokenIssuer
	monitor        *observability.Monitor
}

type Token string

func NewAuthService(repo repositories.IUserRepository, tokens auth.TokenIssuer,
	monitor *observability.Monitor) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens, monitor: monitor}
}

func (s *AuthService) Register(ctx context.Context, username, credential string) (Token, error) {
	valReq := auth.RegisterRequest{
		Username:   username,
		Credential: credential,
	}

	// 1. Validate input limits before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", err
	}

	// 2. Hash the credential with Argon2id.
	// Done in the service layer to keep the repository unaware of plain secrets.
	hash, err := auth.HashCredential(credential)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the identity with the derivation only.
	if err := s.userRepository.CreateUser(ctx, username, hash); err != nil {
		return "", err // Propagates ErrUserAlreadyExists when the name is taken
	}
	s.monitor.IncrUsersRegistered()

	// 4. Issue the initial session token.
	token, err := s.tokens.Generate(username)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(ctx context.Context, username, credential string) (Token, error) {
	// 1. Retrieve the identity.
	user, err := s.userRepository.GetUser(ctx, username)
	if stderrors.Is(err, repositories.ErrNotFound) {
		// Uniform error: "no such user" and "wrong credential" must be
		// indistinguishable to prevent user enumeration.
		return "", errors.ErrInvalidCredentials
	}
	if err != nil {
		// Corrupt records and storage failures surface as-is; fabricating
		// an auth failure would hide data loss from the operator.
		return "", err
	}

	// 2. Recompute and compare the credential derivation.
	match, err := auth.VerifyCredential(credential, user.CredentialHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// 3. Issue the session token.
	token, err := s.tokens.Generate(username)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
