package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"orl-assistant/internal/dto"
	"orl-assistant/internal/pkg/logger"
	"orl-assistant/internal/session"
	"orl-assistant/internal/xano"
)

const logModule = "AUTH"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled, contact the administrator")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidLink        = errors.New("reset link is invalid or expired")
	ErrMissingToken       = errors.New("backend answered without a token")
	// ErrSuperseded is returned when a newer auth call or a logout overtook this one.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// CallbackCodeAuthFailed is reported when the provider returned neither a token nor an error.
const CallbackCodeAuthFailed = "auth_failed"

// CallbackError carries the error code a social-login redirect came back with.
type CallbackError struct {
	Code string
}

func (e *CallbackError) Error() string {
	return "oauth callback failed: " + e.Code
}

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*dto.User, error)
	RequestPasswordReset(ctx context.Context, req *dto.ForgotPasswordRequest) error
	MagicLinkLogin(ctx context.Context, req *dto.MagicLinkRequest) error
	UpdatePassword(ctx context.Context, req *dto.UpdatePasswordRequest) error
	HandleOAuthCallback(ctx context.Context, token, errCode string) error
}

type authService struct {
	client    *xano.Client
	session   *session.Manager
	group     string
	sequencer *Sequencer
	logger    logger.ILogger
}

// NewAuthService builds the auth flows on top of client. group is the API
// group prefix the auth and reset endpoints live under.
func NewAuthService(client *xano.Client, sess *session.Manager, group string, log logger.ILogger) IAuthService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &authService{
		client:    client,
		session:   sess,
		group:     "/" + strings.Trim(group, "/"),
		sequencer: NewSequencer(),
		logger:    log,
	}
}

func (s *authService) path(p string) string {
	return s.group + p
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	ticket := s.sequencer.Next(opAuth)
	var res dto.AuthResponse
	err := s.client.Post(ctx, s.path("/auth/login"), req, &res)
	if err != nil {
		if apiErr, ok := xano.AsAPIError(err); ok {
			switch apiErr.Status {
			case http.StatusUnauthorized:
				return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
			case http.StatusForbidden:
				return nil, fmt.Errorf("%w: %w", ErrAccountDisabled, err)
			}
		}
		return nil, err
	}

	if err := s.commit(ctx, ticket, res.AuthToken); err != nil {
		return nil, err
	}
	s.logger.Info(logModule, "Login successful", map[string]interface{}{"user_id": string(res.UserID)})
	return &res, nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	ticket := s.sequencer.Next(opAuth)
	var res dto.AuthResponse
	err := s.client.Post(ctx, s.path("/auth/signup"), req.Body(), &res)
	if err != nil {
		if apiErr, ok := xano.AsAPIError(err); ok && strings.Contains(apiErr.Message, "already exists") {
			return nil, fmt.Errorf("%w: %w", ErrEmailTaken, err)
		}
		return nil, err
	}

	if err := s.commit(ctx, ticket, res.AuthToken); err != nil {
		return nil, err
	}
	s.logger.Info(logModule, "Account registered", map[string]interface{}{"user_id": string(res.UserID)})
	return &res, nil
}

// Logout asks the backend to end the session. The local credential is dropped
// whatever the outcome; the backend error, if any, is still returned.
func (s *authService) Logout(ctx context.Context) error {
	s.sequencer.Invalidate(opAuth)
	err := s.client.Post(ctx, s.path("/auth/logout"), nil, nil)
	s.session.ClearToken(ctx)

	if err != nil {
		s.logger.Warn(logModule, "Logout call failed, local session cleared anyway", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	s.logger.Info(logModule, "Logged out", nil)
	return nil
}

func (s *authService) Me(ctx context.Context) (*dto.User, error) {
	var user dto.User
	if err := s.client.Get(ctx, s.path("/auth/me"), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	query := url.Values{"email": []string{strings.TrimSpace(req.Email)}}
	return s.client.Get(ctx, s.path("/reset/request-reset-link"), query, nil)
}

// MagicLinkLogin exchanges the emailed link for a session.
func (s *authService) MagicLinkLogin(ctx context.Context, req *dto.MagicLinkRequest) error {
	if err := dto.Validate(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}

	ticket := s.sequencer.Next(opAuth)
	var res dto.MagicLinkResponse
	if err := s.client.Post(ctx, s.path("/reset/magic-link-login"), req, &res); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if res.AuthToken == "" {
		return ErrInvalidLink
	}
	return s.commit(ctx, ticket, res.AuthToken)
}

// UpdatePassword sets a new password for the session opened by MagicLinkLogin.
func (s *authService) UpdatePassword(ctx context.Context, req *dto.UpdatePasswordRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	return s.client.Post(ctx, s.path("/reset/update_password"), req, nil)
}

func (s *authService) HandleOAuthCallback(ctx context.Context, token, errCode string) error {
	switch {
	case errCode != "":
		return &CallbackError{Code: errCode}
	case token == "":
		return &CallbackError{Code: CallbackCodeAuthFailed}
	}

	s.sequencer.Invalidate(opAuth)
	s.session.SetToken(ctx, token)
	s.logger.Info(logModule, "Session opened from social login", nil)
	return nil
}

func (s *authService) commit(ctx context.Context, ticket uint64, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	var persist func(context.Context)
	committed := s.sequencer.Commit(opAuth, ticket, func() {
		persist = s.session.StageToken(token)
	})
	if !committed {
		s.logger.Debug(logModule, "Dropped stale auth response", nil)
		return ErrSuperseded
	}
	persist(ctx)
	return nil
}
