// Package authclient speaks the Clubbies auth API over HTTP and normalizes
// every response into a session.Outcome.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jforbes02/Clubbies/internal/session"
)

const DefaultTimeout = 8 * time.Second

// Client implements session.Client.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

var _ session.Client = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the underlying client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:   strings.TrimRight(u.String(), "/"),
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	UserID   flexID `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Role     string `json:"role"`
}

// flexID accepts ids sent as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// Login exchanges credentials for a token, then resolves the identity.
func (c *Client) Login(ctx context.Context, creds session.Credentials) session.Outcome {
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return session.FailureFrom(session.KindUnknown, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if fail := c.do(req, http.StatusOK, &tok); fail != nil {
		c.logger.WarnContext(ctx, "login failed", "creds", creds, "kind", fail.Kind)
		return session.Outcome{Failure: fail}
	}
	if tok.AccessToken == "" {
		return session.Failure(session.KindUnknown, "login response carried no token")
	}
	return c.Resume(ctx, tok.AccessToken)
}

// Register creates the account. When the server answers without a token the
// client logs in with the same credentials.
func (c *Client) Register(ctx context.Context, profile session.Profile) session.Outcome {
	body, err := json.Marshal(registerRequest{
		Username: profile.Username,
		Email:    profile.Email,
		Password: profile.Password,
		Age:      profile.Age,
	})
	if err != nil {
		return session.FailureFrom(session.KindUnknown, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/", bytes.NewReader(body))
	if err != nil {
		return session.FailureFrom(session.KindUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var tok tokenResponse
	if fail := c.do(req, http.StatusCreated, &tok); fail != nil {
		c.logger.WarnContext(ctx, "register failed", "profile", profile, "kind", fail.Kind)
		return session.Outcome{Failure: fail}
	}
	if tok.AccessToken == "" {
		return c.Login(ctx, session.Credentials{Email: profile.Email, Password: profile.Password})
	}
	return c.Resume(ctx, tok.AccessToken)
}

// Resume resolves the identity a token belongs to.
func (c *Client) Resume(ctx context.Context, token string) session.Outcome {
	req, err := c.newRequest(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return session.FailureFrom(session.KindUnknown, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var me userResponse
	if fail := c.do(req, http.StatusOK, &me); fail != nil {
		return session.Outcome{Failure: fail}
	}
	user := session.Identity{ID: string(me.UserID), Username: me.Username, Email: me.Email}
	if user.ID == "" {
		return session.Failure(session.KindUnknown, "user response carried no id")
	}
	return session.Success(user, token)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a want-status body into out. An empty body is
// left as the zero value.
func (c *Client) do(req *http.Request, want int, out any) *session.Error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &session.Error{Kind: session.KindNetwork, Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &session.Error{Kind: session.KindNetwork, Message: "connection dropped", Err: err}
	}
	if resp.StatusCode != want {
		return Classify(resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &session.Error{Kind: session.KindUnknown, Message: "unreadable server response", Err: err}
	}
	return nil
}

// Classify maps a non-success HTTP response to a session error.
func Classify(status int, body []byte) *session.Error {
	detail := Detail(body)
	switch {
	case status >= 500:
		return &session.Error{Kind: session.KindNetwork, Message: detail, Err: statusError(status)}
	case status == http.StatusBadRequest, status == http.StatusUnauthorized,
		status == http.StatusForbidden, status == http.StatusNotFound,
		status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return &session.Error{Kind: session.KindRejected, Message: detail, Err: statusError(status)}
	default:
		return &session.Error{Kind: session.KindUnknown, Message: detail, Err: statusError(status)}
	}
}

type statusError int

func (s statusError) Error() string {
	return fmt.Sprintf("http %d %s", int(s), http.StatusText(int(s)))
}

// StatusCode extracts the HTTP status from a classified error, or 0.
func StatusCode(err error) int {
	var s statusError
	if errors.As(err, &s) {
		return int(s)
	}
	return 0
}

// Detail reads the server's "detail" field, which is either a string or a
// list of {"msg": ...} objects. It returns "" when there is none.
func Detail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
