package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-test-secret-test-sec"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)

	live := signed(t, jwt.MapClaims{"sub": "user", "exp": now.Add(time.Minute).Unix()})
	require.False(t, tokenExpired(live, now))

	dead := signed(t, jwt.MapClaims{"sub": "user", "exp": now.Add(-time.Minute).Unix()})
	require.True(t, tokenExpired(dead, now))

	noExp := signed(t, jwt.MapClaims{"sub": "user"})
	require.False(t, tokenExpired(noExp, now))

	require.False(t, tokenExpired("opaque-token", now))
}

func TestStateCarriesUserOnlyWhenAuthenticated(t *testing.T) {
	user := Identity{ID: "u1", Username: "user", Email: "user@test.com"}
	states := []State{Unknown(), Unauthenticated(), Authenticated(user)}
	for _, st := range states {
		preds := 0
		for _, p := range []bool{st.IsUnknown(), st.IsAuthenticated(), st.IsUnauthenticated()} {
			if p {
				preds++
			}
		}
		require.Equal(t, 1, preds, "state %s", st)

		got, ok := st.User()
		require.Equal(t, st.IsAuthenticated(), ok)
		if !ok {
			require.Equal(t, Identity{}, got)
		}
	}
	got, _ := Authenticated(user).User()
	require.Equal(t, user, got)
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindNetwork, KindOf(&Error{Kind: KindNetwork}))
	require.Equal(t, KindUnknown, KindOf(ErrNoToken))
	require.Equal(t, KindUnknown, KindOf(nil))
	require.Equal(t, "auth rejected: bad password", (&Error{Kind: KindRejected, Message: "bad password"}).Error())
}
