package session_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jforbes02/Clubbies/internal/session"
	"github.com/jforbes02/Clubbies/internal/session/sessiontest"
)

var testUser = session.Identity{ID: "u1", Username: "user", Email: "user@test.com"}

func newResolvedStore(t *testing.T, client *sessiontest.Client, tokens *sessiontest.Tokens) *session.Store {
	t.Helper()
	s := session.NewStore(client, tokens)
	require.True(t, s.Resolve(context.Background()).IsUnauthenticated())
	return s
}

func jwtToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user", "id": "u1", "exp": exp.Unix(),
	}).SignedString([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return tok
}

func TestResolveWithoutTokenIsUnauthenticated(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	s := session.NewStore(client, sessiontest.NewTokens(""))
	require.True(t, s.State().IsUnknown())

	st := s.Resolve(context.Background())
	require.True(t, st.IsUnauthenticated())
	require.False(t, s.Loading())
	_, _, resumes := client.Calls()
	require.Zero(t, resumes)
}

func TestResolveWithValidTokenAuthenticates(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	token := jwtToken(t, time.Now().Add(time.Hour))
	s := session.NewStore(client, sessiontest.NewTokens(token))

	st := s.Resolve(context.Background())
	user, ok := st.User()
	require.True(t, ok)
	require.Equal(t, testUser, user)
	require.Equal(t, token, client.LastToken)
}

func TestResolveExpiredTokenSkipsServiceAndClears(t *testing.T) {
	now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	client := sessiontest.NewClient(testUser)
	tokens := sessiontest.NewTokens(jwtToken(t, now.Add(-time.Minute)))
	s := session.NewStore(client, tokens, session.WithClock(func() time.Time { return now }))

	require.True(t, s.Resolve(context.Background()).IsUnauthenticated())
	_, _, resumes := client.Calls()
	require.Zero(t, resumes)
	require.Empty(t, tokens.Token())
}

func TestResolveUsesInjectedClockForExpiry(t *testing.T) {
	issued := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	token := jwtToken(t, issued.Add(10*time.Minute))

	// Still valid at issue time: the service is asked to resume it.
	client := sessiontest.NewClient(testUser)
	s := session.NewStore(client, sessiontest.NewTokens(token), session.WithClock(func() time.Time { return issued }))
	require.True(t, s.Resolve(context.Background()).IsAuthenticated())
	_, _, resumes := client.Calls()
	require.Equal(t, 1, resumes)

	// Past exp on the injected clock, the token is dropped locally.
	client = sessiontest.NewClient(testUser)
	tokens := sessiontest.NewTokens(token)
	s = session.NewStore(client, tokens, session.WithClock(func() time.Time { return issued.Add(time.Hour) }))
	require.True(t, s.Resolve(context.Background()).IsUnauthenticated())
	_, _, resumes = client.Calls()
	require.Zero(t, resumes)
	require.Empty(t, tokens.Token())
}

func TestResolveRejectedTokenIsCleared(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	client.ResumeOutcome = sessiontest.Outcome(session.Failure(session.KindRejected, "Could not validate tokens"))
	tokens := sessiontest.NewTokens("opaque")
	s := session.NewStore(client, tokens)

	require.True(t, s.Resolve(context.Background()).IsUnauthenticated())
	require.Empty(t, tokens.Token())
}

func TestResolveNetworkFailureKeepsToken(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	client.ResumeOutcome = sessiontest.Outcome(session.Failure(session.KindNetwork, "timeout"))
	tokens := sessiontest.NewTokens("opaque")
	s := session.NewStore(client, tokens)

	require.True(t, s.Resolve(context.Background()).IsUnauthenticated())
	require.Equal(t, "opaque", tokens.Token())
}

func TestResolveLoadErrorFallsBack(t *testing.T) {
	tokens := sessiontest.NewTokens("")
	tokens.LoadErr = errors.New("disk on fire")
	s := session.NewStore(sessiontest.NewClient(testUser), tokens)
	require.True(t, s.Resolve(context.Background()).IsUnauthenticated())
}

func TestResolveRunsOnce(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	s := session.NewStore(client, sessiontest.NewTokens("opaque"))

	var wg sync.WaitGroup
	results := make([]session.State, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Resolve(context.Background())
		}(i)
	}
	wg.Wait()
	for _, st := range results {
		require.True(t, st.IsAuthenticated())
	}
	_, _, resumes := client.Calls()
	require.Equal(t, 1, resumes)
}

func TestLoginBeforeResolveIsRefused(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	s := session.NewStore(client, sessiontest.NewTokens(""))

	_, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.ErrorIs(t, err, session.ErrUnresolved)
	logins, _, _ := client.Calls()
	require.Zero(t, logins)
}

func TestLoginSuccessAuthenticatesAndSavesToken(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	tokens := sessiontest.NewTokens("")
	s := newResolvedStore(t, client, tokens)

	user, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, testUser, user)

	got, ok := s.State().User()
	require.True(t, ok)
	require.Equal(t, "u1", got.ID)
	require.Equal(t, "token-u1", tokens.Token())
	require.Equal(t, session.Credentials{Email: "user@test.com", Password: "secret1"}, client.LastLogin)
	require.False(t, s.Loading())
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	client.LoginOutcome = sessiontest.Outcome(session.Failure(session.KindNetwork, "timeout"))
	tokens := sessiontest.NewTokens("")
	s := newResolvedStore(t, client, tokens)

	_, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.Error(t, err)
	require.Equal(t, session.KindNetwork, session.KindOf(err))
	require.True(t, s.State().IsUnauthenticated())
	require.False(t, s.Loading())
	require.Zero(t, tokens.Saves)
}

func TestLoginWhileSignedInIsRefused(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	s := newResolvedStore(t, client, sessiontest.NewTokens(""))
	_, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "other@test.com", "secret1")
	require.ErrorIs(t, err, session.ErrSignedIn)
	user, _ := s.User()
	require.Equal(t, "u1", user.ID)
}

func TestLoginWithoutUserIDIsUnknownFailure(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	client.LoginOutcome = sessiontest.Outcome(session.Success(session.Identity{Username: "ghost"}, "tok"))
	s := newResolvedStore(t, client, sessiontest.NewTokens(""))

	_, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.Equal(t, session.KindUnknown, session.KindOf(err))
	require.True(t, s.State().IsUnauthenticated())
}

type panicClient struct{ *sessiontest.Client }

func (panicClient) Login(context.Context, session.Credentials) session.Outcome {
	panic("boom")
}

func TestLoginRecoversClientPanic(t *testing.T) {
	s := session.NewStore(panicClient{sessiontest.NewClient(testUser)}, sessiontest.NewTokens(""))
	s.Resolve(context.Background())

	_, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.Equal(t, session.KindUnknown, session.KindOf(err))
	require.True(t, s.State().IsUnauthenticated())
	require.False(t, s.Loading())
}

func TestRegisterSuccess(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	s := newResolvedStore(t, client, sessiontest.NewTokens(""))

	profile := session.Profile{Username: "user", Email: "user@test.com", Password: "secret1", Age: 21}
	user, err := s.Register(context.Background(), profile)
	require.NoError(t, err)
	require.Equal(t, testUser, user)
	require.Equal(t, profile, client.LastProfile)
	require.True(t, s.State().IsAuthenticated())
}

func TestRegisterRejected(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	client.RegisterOutcome = sessiontest.Outcome(session.Failure(session.KindRejected, "Email already exists"))
	s := newResolvedStore(t, client, sessiontest.NewTokens(""))

	_, err := s.Register(context.Background(), session.Profile{Username: "user", Email: "user@test.com", Password: "secret1", Age: 21})
	require.Equal(t, session.KindRejected, session.KindOf(err))
	require.Contains(t, err.Error(), "Email already exists")
	require.True(t, s.State().IsUnauthenticated())
}

func TestLogoutClearsIdentityAndToken(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	tokens := sessiontest.NewTokens("")
	s := newResolvedStore(t, client, tokens)
	_, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.NoError(t, err)

	s.Logout()
	require.True(t, s.State().IsUnauthenticated())
	_, ok := s.User()
	require.False(t, ok)
	require.Empty(t, tokens.Token())
}

// slowClearTokens holds the first Clear until release is closed.
type slowClearTokens struct {
	*sessiontest.Tokens
	once     sync.Once
	clearing chan struct{}
	release  chan struct{}
}

func (s *slowClearTokens) Clear() error {
	s.once.Do(func() { close(s.clearing) })
	<-s.release
	return s.Tokens.Clear()
}

func TestLoginAfterLogoutKeepsItsToken(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	tokens := &slowClearTokens{
		Tokens:   sessiontest.NewTokens(""),
		clearing: make(chan struct{}),
		release:  make(chan struct{}),
	}
	s := session.NewStore(client, tokens)
	require.True(t, s.Resolve(context.Background()).IsUnauthenticated())

	loggedOut := make(chan struct{})
	go func() {
		s.Logout()
		close(loggedOut)
	}()
	<-tokens.clearing

	loginErr := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "user@test.com", "secret1")
		loginErr <- err
	}()
	close(tokens.release)

	<-loggedOut
	require.NoError(t, <-loginErr)
	require.True(t, s.State().IsAuthenticated())
	require.Equal(t, client.Token, tokens.Token())
}

func TestLoadingIsTrueOnlyWhileInFlight(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	s := newResolvedStore(t, client, sessiontest.NewTokens(""))
	client.Block = make(chan struct{})
	client.Started = make(chan string, 1)

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "user@test.com", "secret1")
		done <- err
	}()
	require.Equal(t, "login", <-client.Started)
	require.True(t, s.Loading())
	require.True(t, s.Snapshot().Loading)

	close(client.Block)
	require.NoError(t, <-done)
	require.False(t, s.Loading())
}

func TestLogoutDuringPendingLoginDiscardsResult(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	tokens := sessiontest.NewTokens("")
	s := newResolvedStore(t, client, tokens)
	client.Block = make(chan struct{})
	client.Started = make(chan string, 1)

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "user@test.com", "secret1")
		done <- err
	}()
	<-client.Started
	s.Logout()
	close(client.Block)

	require.ErrorIs(t, <-done, session.ErrSuperseded)
	require.True(t, s.State().IsUnauthenticated())
	require.Empty(t, tokens.Token())
}

func TestSubscribeSeesTransitions(t *testing.T) {
	client := sessiontest.NewClient(testUser)
	s := session.NewStore(client, sessiontest.NewTokens(""))
	ch, stop := s.Subscribe()
	defer stop()

	first := <-ch
	require.True(t, first.State.IsUnknown())

	s.Resolve(context.Background())
	latest := drain(ch)
	require.True(t, latest.State.IsUnauthenticated())
	require.False(t, latest.Loading)

	_, err := s.Login(context.Background(), "user@test.com", "secret1")
	require.NoError(t, err)
	require.True(t, drain(ch).State.IsAuthenticated())

	s.Logout()
	require.True(t, drain(ch).State.IsUnauthenticated())
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := session.NewStore(sessiontest.NewClient(testUser), sessiontest.NewTokens(""))
	ch, stop := s.Subscribe()
	<-ch
	stop()
	stop()
	_, open := <-ch
	require.False(t, open)
	s.Resolve(context.Background())
}

func TestCredentialsAreRedactedInLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("attempt", "creds", session.Credentials{Email: "user@test.com", Password: "hunter22"})
	logger.Info("attempt", "profile", session.Profile{Username: "user", Password: "hunter22", Age: 20})
	require.NotContains(t, buf.String(), "hunter22")
	require.Contains(t, buf.String(), "user@test.com")
}

func drain(ch <-chan session.Snapshot) session.Snapshot {
	snap := <-ch
	for {
		select {
		case next := <-ch:
			snap = next
		default:
			return snap
		}
	}
}
