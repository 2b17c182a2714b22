package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/wahlbot/internal/jwt"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

var meta = dto.RequestMeta{DeviceInfo: "Mozilla/5.0", IPAddress: "203.0.113.9"}

func newSessionService(f *fixture, ledger *hookLedger, rec EventRecorder) SessionService {
	principals := f.store.Principals()
	return NewSessionService(SessionDeps{
		Credentials: NewCredentialStore(principals),
		Principals:  principals,
		Ledger:      ledger,
		Codec:       f.codec,
		Events:      rec,
	})
}

func jtiOf(t *testing.T, c *jwtx.Codec, token string) string {
	t.Helper()
	claims, err := c.Decode(token)
	require.NoError(t, err)
	rc, ok := claims.(jwtx.RefreshClaims)
	require.True(t, ok)
	return rc.TokenID
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "pw-alice", false)
	rec := &countingRecorder{}
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, rec)
	ctx := context.Background()

	pair, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw-alice"}, meta)
	require.NoError(t, err)

	claims, err := f.codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.(jwtx.AccessClaims).Subject)

	row, err := f.store.Sessions().FindActive(ctx, jtiOf(t, f.codec, pair.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, row.UserID)
	assert.Equal(t, "Mozilla/5.0", *row.DeviceInfo)
	assert.Equal(t, "203.0.113.9", *row.IPAddress)
	assert.True(t, row.ExpiresAt.Equal(pair.RefreshExpiresAt))

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "nope"}, meta)
	assert.ErrorIs(t, err, ErrDenied)
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "nope"}, meta)
	assert.ErrorIs(t, err, ErrDenied)

	assert.Equal(t, 1, rec.events["login:success"])
	assert.Equal(t, 2, rec.events["login:denied"])
}

func TestLogin_DisabledPrincipalStillGetsTokens(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "carol", "pw", true)
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, nil)

	pair, err := svc.Login(context.Background(), dto.LoginRequest{Username: "carol", Password: "pw"}, meta)
	require.NoError(t, err)

	// el Gate rechaza el access token emitido
	g := NewGate(GateDeps{Principals: f.store.Principals(), Codec: f.codec})
	_, err = g.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInactivePrincipal)
}

func TestRefresh_RotationInvalidatesPredecessor(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "pw", false)
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, nil)
	ctx := context.Background()

	first, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw"}, meta)
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken, meta)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEmpty(t, second.AccessToken)

	_, err = f.store.Sessions().FindActive(ctx, jtiOf(t, f.codec, first.RefreshToken))
	assert.Error(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken, meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	third, err := svc.Refresh(ctx, second.RefreshToken, meta)
	require.NoError(t, err)
	assert.NotEmpty(t, third.RefreshToken)
}

func TestRefresh_Rejections(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "pw", false)
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, nil)
	ctx := context.Background()

	access, err := f.codec.IssueAccess("alice")
	require.NoError(t, err)
	orphan, _, _, err := f.codec.IssueRefresh("alice") // nunca insertado en el ledger
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "", meta)
	assert.ErrorIs(t, err, ErrMissingRefreshToken)

	_, err = svc.Refresh(ctx, "garbage", meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, access, meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, orphan, meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_AfterRefreshTTL(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "pw", false)
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, nil)
	ctx := context.Background()

	pair, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw"}, meta)
	require.NoError(t, err)

	f.clk.t = f.clk.t.Add(8 * 24 * time.Hour)
	_, err = svc.Refresh(ctx, pair.RefreshToken, meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_RevokeFailureIsLoggedNotFatal(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "pw", false)
	ledger := &hookLedger{SessionLedger: f.store.Sessions()}
	svc := newSessionService(f, ledger, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))

	pair, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw"}, meta)
	require.NoError(t, err)

	ledger.revokeErr = errors.New("connection reset")
	next, err := svc.Refresh(ctx, pair.RefreshToken, meta)
	require.NoError(t, err)
	assert.NotEmpty(t, next.RefreshToken)

	warns := logs.FilterMessage("previous refresh token not revoked").All()
	require.Len(t, warns, 1)
	fields := warns[0].ContextMap()
	assert.Contains(t, fields, "token_fp")
	assert.NotContains(t, fields["token_fp"], jtiOf(t, f.codec, pair.RefreshToken))
	for _, v := range fields {
		assert.NotEqual(t, pair.RefreshToken, v)
	}
}

func TestRefresh_CancelledAfterRevokeLeavesNoValidToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "pw", false)
	ledger := &hookLedger{SessionLedger: f.store.Sessions()}
	svc := newSessionService(f, ledger, nil)

	pair, err := svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "pw"}, meta)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ledger.afterRevoke = cancel

	_, err = svc.Refresh(ctx, pair.RefreshToken, meta)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	active, err := f.store.Sessions().ListActive(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	ledger.afterRevoke = nil
	_, err = svc.Refresh(context.Background(), pair.RefreshToken, meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "pw", false)
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, nil)
	ctx := context.Background()

	pair, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw"}, meta)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	_, err = svc.Refresh(ctx, pair.RefreshToken, meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// idempotente
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	assert.ErrorIs(t, svc.Logout(ctx, ""), ErrMissingRefreshToken)
	assert.ErrorIs(t, svc.Logout(ctx, "x.y.z"), ErrInvalidRefreshToken)

	access, err := f.codec.IssueAccess("alice")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Logout(ctx, access), ErrInvalidRefreshToken)
}

func TestLogout_ExpiredJWTFailsDecode(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "pw", false)
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, nil)

	pair, err := svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "pw"}, meta)
	require.NoError(t, err)

	f.clk.t = f.clk.t.Add(7*24*time.Hour + time.Second)
	assert.ErrorIs(t, svc.Logout(context.Background(), pair.RefreshToken), ErrInvalidRefreshToken)
}

func TestLogoutAllAndListSessions(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "pw", false)
	bob := f.addUser(t, "bob", "pw", false)
	svc := newSessionService(f, &hookLedger{SessionLedger: f.store.Sessions()}, nil)
	ctx := context.Background()

	var last *dto.TokenPair
	for i := 0; i < 3; i++ {
		f.clk.t = f.clk.t.Add(time.Second)
		p, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw"}, dto.RequestMeta{DeviceInfo: "dev", IPAddress: "1.1.1.1"})
		require.NoError(t, err)
		last = p
	}
	bobPair, err := svc.Login(ctx, dto.LoginRequest{Username: "bob", Password: "pw"}, meta)
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.True(t, sessions[0].CreatedAt.After(sessions[2].CreatedAt))
	lastRow, err := f.store.Sessions().FindActive(ctx, jtiOf(t, f.codec, last.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, lastRow.ID, sessions[0].ID)

	n, err := svc.LogoutAll(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sessions, err = svc.ListSessions(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = svc.Refresh(ctx, last.RefreshToken, meta)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, bobPair.RefreshToken, meta)
	assert.NoError(t, err, "other principals are unaffected")

	bobSessions, err := svc.ListSessions(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobSessions, 1)
}
