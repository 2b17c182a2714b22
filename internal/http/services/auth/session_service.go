package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/wahlbot/internal/jwt"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"go.uber.org/zap"
)

// Session errors
var (
	ErrMissingRefreshToken = errors.New("no refresh token provided")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// SessionService orquesta login, rotación, logout y listado de sesiones.
type SessionService interface {
	Login(ctx context.Context, in dto.LoginRequest, meta dto.RequestMeta) (*dto.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, meta dto.RequestMeta) (*dto.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, p *repository.Principal) (int, error)
	ListSessions(ctx context.Context, p *repository.Principal) ([]dto.SessionInfo, error)
}

type SessionDeps struct {
	Credentials CredentialStore
	Principals  repository.PrincipalRepository
	Ledger      repository.SessionLedger
	Codec       *jwtx.Codec
	Events      EventRecorder
}

type sessionService struct {
	deps SessionDeps
}

func NewSessionService(deps SessionDeps) SessionService {
	if deps.Events == nil {
		deps.Events = noopRecorder{}
	}
	return &sessionService{deps: deps}
}

func (s *sessionService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.session"),
		logger.Op(op),
	)
}

// Login no rechaza principals deshabilitados; eso lo hace el Gate en cada
// request autenticado.
func (s *sessionService) Login(ctx context.Context, in dto.LoginRequest, meta dto.RequestMeta) (*dto.TokenPair, error) {
	log := s.log(ctx, "Login")

	p, err := s.deps.Credentials.Authenticate(ctx, strings.TrimSpace(in.Username), in.Password)
	if err != nil {
		if errors.Is(err, ErrDenied) {
			s.deps.Events.RecordAuth("login", "denied")
		} else {
			s.deps.Events.RecordAuth("login", "error")
		}
		return nil, err
	}

	access, err := s.deps.Codec.IssueAccess(p.Username)
	if err != nil {
		s.deps.Events.RecordAuth("login", "error")
		return nil, fmt.Errorf("login: issue access: %w", err)
	}
	pair, err := s.openSession(ctx, p, meta)
	if err != nil {
		s.deps.Events.RecordAuth("login", "error")
		return nil, fmt.Errorf("login: %w", err)
	}
	pair.AccessToken = access

	log.Info("login succeeded", logger.UserID(p.ID))
	s.deps.Events.RecordAuth("login", "success")
	return pair, nil
}

// Refresh valida el refresh token contra el ledger, revoca el anterior
// (best-effort) y emite un par nuevo. Si el contexto se cancela entre la
// revocación y el Insert el principal queda sin refresh token válido.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string, meta dto.RequestMeta) (*dto.TokenPair, error) {
	log := s.log(ctx, "Refresh")

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		s.deps.Events.RecordAuth("refresh", "missing")
		return nil, ErrMissingRefreshToken
	}

	rc, err := s.decodeRefresh(refreshToken)
	if err != nil {
		log.Debug("refresh token rejected", logger.Err(err))
		s.deps.Events.RecordAuth("refresh", "invalid")
		return nil, err
	}
	log = log.With(logger.TokenFP(rc.TokenID))

	if _, err := s.deps.Ledger.FindActive(ctx, rc.TokenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug("refresh token not active")
			s.deps.Events.RecordAuth("refresh", "revoked")
			return nil, ErrInvalidRefreshToken
		}
		s.deps.Events.RecordAuth("refresh", "error")
		return nil, fmt.Errorf("refresh: find session: %w", err)
	}

	p, err := s.deps.Principals.GetByUsername(ctx, rc.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.deps.Events.RecordAuth("refresh", "invalid")
			return nil, ErrInvalidRefreshToken
		}
		s.deps.Events.RecordAuth("refresh", "error")
		return nil, fmt.Errorf("refresh: load principal: %w", err)
	}

	access, err := s.deps.Codec.IssueAccess(p.Username)
	if err != nil {
		s.deps.Events.RecordAuth("refresh", "error")
		return nil, fmt.Errorf("refresh: issue access: %w", err)
	}

	// El predecesor se revoca antes de crear el sucesor. Un fallo acá no
	// aborta la rotación: se loguea y el token viejo expira por TTL.
	if err := s.deps.Ledger.Revoke(ctx, rc.TokenID); err != nil {
		log.Warn("previous refresh token not revoked", logger.UserID(p.ID), logger.Err(err))
	}

	pair, err := s.openSession(ctx, p, meta)
	if err != nil {
		s.deps.Events.RecordAuth("refresh", "error")
		return nil, fmt.Errorf("refresh: %w", err)
	}
	pair.AccessToken = access

	log.Debug("refresh token rotated", logger.UserID(p.ID))
	s.deps.Events.RecordAuth("refresh", "success")
	return pair, nil
}

func (s *sessionService) Logout(ctx context.Context, refreshToken string) error {
	log := s.log(ctx, "Logout")

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return ErrMissingRefreshToken
	}
	rc, err := s.decodeRefresh(refreshToken)
	if err != nil {
		log.Debug("logout with invalid token", logger.Err(err))
		s.deps.Events.RecordAuth("logout", "invalid")
		return err
	}
	if err := s.deps.Ledger.Revoke(ctx, rc.TokenID); err != nil {
		s.deps.Events.RecordAuth("logout", "error")
		return fmt.Errorf("logout: revoke: %w", err)
	}
	log.Debug("session revoked", logger.TokenFP(rc.TokenID))
	s.deps.Events.RecordAuth("logout", "success")
	return nil
}

func (s *sessionService) LogoutAll(ctx context.Context, p *repository.Principal) (int, error) {
	n, err := s.deps.Ledger.RevokeAll(ctx, p.ID)
	if err != nil {
		s.deps.Events.RecordAuth("logout_all", "error")
		return 0, fmt.Errorf("logout all: %w", err)
	}
	s.log(ctx, "LogoutAll").Info("all sessions revoked", logger.UserID(p.ID), logger.Count(n))
	s.deps.Events.RecordAuth("logout_all", "success")
	return n, nil
}

func (s *sessionService) ListSessions(ctx context.Context, p *repository.Principal) ([]dto.SessionInfo, error) {
	rows, err := s.deps.Ledger.ListActive(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]dto.SessionInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SessionInfo{
			ID:         r.ID,
			DeviceInfo: r.DeviceInfo,
			IPAddress:  r.IPAddress,
			CreatedAt:  r.CreatedAt,
			ExpiresAt:  r.ExpiresAt,
		})
	}
	return out, nil
}

// decodeRefresh exige RefreshClaims con jti no vacío.
func (s *sessionService) decodeRefresh(token string) (jwtx.RefreshClaims, error) {
	claims, err := s.deps.Codec.Decode(token)
	if err != nil {
		return jwtx.RefreshClaims{}, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	rc, ok := claims.(jwtx.RefreshClaims)
	if !ok {
		return jwtx.RefreshClaims{}, fmt.Errorf("%w: not a refresh token", ErrInvalidRefreshToken)
	}
	if rc.TokenID == "" {
		return jwtx.RefreshClaims{}, fmt.Errorf("%w: missing jti", ErrInvalidRefreshToken)
	}
	return rc, nil
}

// openSession emite un refresh token y lo registra en el ledger.
func (s *sessionService) openSession(ctx context.Context, p *repository.Principal, meta dto.RequestMeta) (*dto.TokenPair, error) {
	token, id, exp, err := s.deps.Codec.IssueRefresh(p.Username)
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	if _, err := s.deps.Ledger.Insert(ctx, repository.InsertSessionInput{
		TokenID:    id,
		UserID:     p.ID,
		ExpiresAt:  exp,
		DeviceInfo: meta.DeviceInfo,
		IPAddress:  meta.IPAddress,
	}); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &dto.TokenPair{RefreshToken: token, RefreshExpiresAt: exp}, nil
}
