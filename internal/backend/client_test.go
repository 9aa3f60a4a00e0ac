package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamerhub/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestClientSendsBearerToken(t *testing.T) {
	var got string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"_id":"u-1","name":"Ana","email":"ana@example.com","role":"user"}`))
	})

	user, err := c.WithToken("abc").Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
	assert.Equal(t, model.FlexID("u-1"), user.ID)
}

func TestClientWithoutTokenSendsNoHeader(t *testing.T) {
	var got string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"games":[],"total":0}`))
	})

	_, err := c.ListPublicGames(context.Background(), ListQuery{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListQueryEncoding(t *testing.T) {
	var query string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"games":[{"rawgId":42,"name":"Zelda"}],"total":1}`))
	})

	listing, err := c.ListPublicGames(context.Background(), ListQuery{
		Page:     2,
		PageSize: 50,
		Filter:   model.GameFilter{Search: "zel da", Genre: "Adventure"},
	})
	require.NoError(t, err)
	assert.Equal(t, "genre=Adventure&page=2&pageSize=50&search=zel+da", query)
	require.Len(t, listing.Games, 1)
	assert.Equal(t, model.FlexID("42"), listing.Games[0].ExternalID)
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	var path string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.RemoveFromWatchlist(context.Background(), "p 1", "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/profiles/p%201/watchlist/a%2Fb", path)
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusBadRequest, `{"error":"bad input","message":"ignored"}`, "bad input"},
		{"message field", http.StatusBadRequest, `{"message":"from message"}`, "from message"},
		{"status text", http.StatusBadGateway, `not json`, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetGame(context.Background(), "g-1")
			require.Error(t, err)
			assert.Equal(t, tt.message, Message(err))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestErrorSentinels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, model.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, model.ErrForbidden},
		{"not found", http.StatusNotFound, `{}`, model.ErrNotFound},
		{"duplicate english", http.StatusBadRequest, `{"error":"Game is already in the watchlist"}`, model.ErrAlreadyInWatchlist},
		{"duplicate spanish", http.StatusBadRequest, `{"error":"El juego ya está en la lista"}`, model.ErrAlreadyInWatchlist},
		{"conflict", http.StatusConflict, `{"error":"email taken"}`, model.ErrConflict},
		{"server error", http.StatusInternalServerError, `{}`, model.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.AddToWatchlist(context.Background(), "p-1", "g-1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlainBadRequestHasNoSentinel(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"name is required"}`))
	})

	_, err := c.CreateGame(context.Background(), model.GameInput{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrAlreadyInWatchlist)
	assert.Equal(t, "name is required", Message(err))
}

func TestUnauthorizedHookFiresOnlyForBoundToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	})

	calls := 0
	hooked := c.WithUnauthorizedHook(func(ctx context.Context) { calls++ })

	_, err := hooked.Login(context.Background(), "a@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, 0, calls, "a failed login is not an invalid session")

	_, err = hooked.WithToken("stale").Me(context.Background())
	require.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Equal(t, 1, calls)
}

func TestExportReportReturnsRawBody(t *testing.T) {
	var accept string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("profile,user,game\nKid,ana@example.com,Zelda\n"))
	})

	data, err := c.ExportWatchlistReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "text/csv", accept)
	assert.Equal(t, "profile,user,game\nKid,ana@example.com,Zelda\n", string(data))
}

func TestValidateAge(t *testing.T) {
	var path string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"isAllowed":true}`))
	})

	allowed, err := c.ValidateAge(context.Background(), "g-1", "p-2")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, "/games/validate-age/g-1/p-2", path)
}
