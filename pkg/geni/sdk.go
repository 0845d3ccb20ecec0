// Package geni is a Go SDK for the Geni genealogy platform's web API.
// It performs browser-based OAuth 2.0 authorization, persists the access
// token, exposes a generic API call method, and notifies listeners when the
// authentication status changes.
package geni

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AlessioPiovesan/geni-wrapper/internal/oauth"
	"github.com/AlessioPiovesan/geni-wrapper/pkg/events"
)

const (
	// DefaultHost is the Geni API host.
	DefaultHost = "https://www.geni.com"

	// DefaultConnectTimeout bounds how long Connect waits for the browser
	// authorization step. Configurable via Config.ConnectTimeout.
	DefaultConnectTimeout = 2 * time.Minute

	// DefaultHTTPTimeout is the default timeout for API and token requests.
	DefaultHTTPTimeout = 30 * time.Second

	authorizePath   = "/oauth/authorize"
	tokenPath       = "/oauth/token"
	apiPath         = "/api"
	defaultTokenRel = ".config/geni/token.json"
)

// Config configures the SDK.
type Config struct {
	// AppID is the Geni application key. Required.
	AppID string

	// Host is the API host URL. Defaults to DefaultHost.
	Host string

	// Scopes are the OAuth scopes requested during authorization.
	Scopes []string

	// Cookies enables persistent token storage on disk, so a token
	// survives process restarts.
	Cookies bool

	// Logging enables diagnostic output.
	Logging bool

	// CallbackPort fixes the local OAuth callback port. 0 binds an
	// ephemeral port.
	CallbackPort int

	// ConnectTimeout bounds the wait for the browser redirect during
	// Connect. Defaults to DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// TokenPath overrides the token file location used when Cookies is
	// enabled. Defaults to ~/.config/geni/token.json.
	TokenPath string

	// TokenStore overrides token storage entirely. When set, Cookies and
	// TokenPath are ignored.
	TokenStore TokenStore

	// HTTPClient is an optional custom HTTP client used for the token
	// exchange and API calls.
	HTTPClient *http.Client

	// OpenURL launches the consent URL in the user's browser. Defaults to
	// opening the platform's default browser.
	OpenURL func(url string) error
}

// ConnectResult is the outcome of a Connect flow, delivered to the caller's
// callback. Err is nil iff the flow ended authorized.
type ConnectResult struct {
	Status      Status
	AccessToken string
	Err         error
}

// ConnectCallback receives the outcome of a Connect flow.
type ConnectCallback func(ConnectResult)

// SDK is the Geni API client. One instance owns its authentication status;
// there is no ambient global state.
type SDK struct {
	appID      string
	host       string
	scopes     []string
	timeout    time.Duration
	port       int
	httpClient *http.Client
	openURL    func(string) error
	store      TokenStore
	bus        *events.Bus
	logger     *slog.Logger

	status     atomic.Int32
	connecting atomic.Bool
}

// New creates an SDK from the configuration. Returns ErrMissingAppID when no
// application ID is set.
func New(cfg Config) (*SDK, error) {
	if cfg.AppID == "" {
		return nil, ErrMissingAppID
	}

	host := strings.TrimSuffix(cfg.Host, "/")
	if host == "" {
		host = DefaultHost
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	openURL := cfg.OpenURL
	if openURL == nil {
		openURL = oauth.OpenBrowser
	}

	store := cfg.TokenStore
	if store == nil {
		var err error
		store, err = defaultTokenStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Logging {
		logger = slog.Default()
	}

	s := &SDK{
		appID:      cfg.AppID,
		host:       host,
		scopes:     cfg.Scopes,
		timeout:    timeout,
		port:       cfg.CallbackPort,
		httpClient: httpClient,
		openURL:    openURL,
		store:      store,
		bus:        events.NewBus(),
		logger:     logger,
	}
	s.status.Store(int32(StatusUnknown))
	return s, nil
}

func defaultTokenStore(cfg Config) (TokenStore, error) {
	if !cfg.Cookies {
		return NewMemoryTokenStore(), nil
	}

	path := cfg.TokenPath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve token path: %w", err)
		}
		path = filepath.Join(homeDir, defaultTokenRel)
	}
	return NewFileTokenStore(path)
}

// Events returns the SDK's event bus. Listeners bound to
// events.AuthStatusChange receive the new Status whenever it changes.
func (s *SDK) Events() *events.Bus {
	return s.bus
}

// setStatus transitions the status, emitting auth:statusChange on a change.
// Transitions back to StatusUnknown are ignored; a same-value transition
// emits nothing.
func (s *SDK) setStatus(next Status) {
	if next == StatusUnknown {
		return
	}
	prev := Status(s.status.Swap(int32(next)))
	if prev == next {
		return
	}
	s.logger.Debug("auth status changed", "from", prev.String(), "to", next.String())
	s.bus.Emit(events.AuthStatusChange, next)
}

// GetStatus returns the current authentication status based on the token
// store. An expired stored token is cleared and the status transitions to
// unauthorized. No network call is made.
func (s *SDK) GetStatus() Status {
	record, err := s.store.Get()
	if err != nil {
		s.logger.Warn("token store read failed", "error", err.Error())
		s.setStatus(StatusUnauthorized)
		return Status(s.status.Load())
	}

	if record.Valid() {
		s.setStatus(StatusAuthorized)
	} else {
		if record != nil {
			// Expired token: keep the store consistent with the status.
			if err := s.store.Clear(); err != nil {
				s.logger.Warn("failed to clear expired token", "error", err.Error())
			}
		}
		s.setStatus(StatusUnauthorized)
	}

	return Status(s.status.Load())
}

// Connect runs the browser-based OAuth authorization flow. It blocks until
// the flow completes, fails, or times out, and delivers the outcome to cb
// (which may be nil) as well as in the returned error.
//
// Only one Connect may be in flight per SDK instance; a concurrent call
// fails fast with ErrConnectInProgress. Connect should be called in response
// to a user action, since it opens a browser window.
func (s *SDK) Connect(ctx context.Context, cb ConnectCallback) error {
	if !s.connecting.CompareAndSwap(false, true) {
		return ErrConnectInProgress
	}
	defer s.connecting.Store(false)

	if s.GetStatus() == StatusAuthorized {
		s.logger.Debug("connect called while already authorized")
		deliver(cb, ConnectResult{Status: StatusAuthorized, AccessToken: s.AccessToken()})
		return nil
	}

	flowID := uuid.NewString()

	state, err := oauth.GenerateState()
	if err != nil {
		return s.fail(cb, fmt.Errorf("failed to generate state: %w", err))
	}

	flowCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	server := oauth.NewCallbackServer(s.port, state)
	redirectURI, err := server.Start(flowCtx)
	if err != nil {
		return s.fail(cb, err)
	}

	authURL := s.authorizationURL(redirectURI, state)
	s.logger.Debug("opening authorization URL", "flow_id", flowID, "port", server.Port())

	if err := s.openURL(authURL); err != nil {
		return s.fail(cb, fmt.Errorf("failed to open authorization URL: %w", err))
	}

	result, err := server.Wait(flowCtx)
	if err != nil {
		if flowCtx.Err() == context.DeadlineExceeded {
			s.logger.Warn("authorization timed out", "flow_id", flowID)
			return s.fail(cb, ErrTimeout)
		}
		return s.fail(cb, err)
	}

	if result.IsError() {
		return s.fail(cb, &AuthorizationError{
			Code:        result.Error,
			Description: result.ErrorDescription,
		})
	}

	token, err := oauth.ExchangeCode(ctx, s.httpClient, s.host+tokenPath, s.appID, result.Code, redirectURI)
	if err != nil {
		s.logger.Warn("token exchange failed", "flow_id", flowID, "error", err.Error())
		return s.fail(cb, err)
	}

	// AccessToken and API read from the store, so a token that cannot be
	// stored is a token the session cannot use. Fail the flow rather than
	// report an authorized status the next call would contradict.
	if err := s.store.Set(newTokenRecord(token)); err != nil {
		s.logger.Warn("failed to persist token", "flow_id", flowID, "error", err.Error())
		return s.fail(cb, fmt.Errorf("failed to persist token: %w", err))
	}

	s.logger.Debug("authorization complete", "flow_id", flowID)
	s.setStatus(StatusAuthorized)
	deliver(cb, ConnectResult{Status: StatusAuthorized, AccessToken: token.AccessToken})
	return nil
}

// fail finalizes a failed connect flow: status unauthorized, outcome to the
// callback, error to the caller.
func (s *SDK) fail(cb ConnectCallback, err error) error {
	s.setStatus(StatusUnauthorized)
	deliver(cb, ConnectResult{Status: StatusUnauthorized, Err: err})
	return err
}

func deliver(cb ConnectCallback, result ConnectResult) {
	if cb != nil {
		cb(result)
	}
}

// authorizationURL builds the browser-facing consent URL.
func (s *SDK) authorizationURL(redirectURI, state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {s.appID},
		"redirect_uri":  {redirectURI},
		"state":         {state},
	}
	if len(s.scopes) > 0 {
		params.Set("scope", strings.Join(s.scopes, " "))
	}
	return s.host + authorizePath + "?" + params.Encode()
}

// Logout clears the stored token and transitions to unauthorized. It is a
// pure local state change; no network call is made and remote revocation is
// out of scope.
func (s *SDK) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	s.setStatus(StatusUnauthorized)
	return nil
}

// API calls an arbitrary Geni endpoint with the current access token and
// returns the parsed JSON response verbatim, including any remote "error"
// field. A transport failure is reported as a synthesized {"error": message}
// mapping rather than an error return.
//
// The HTTP method may be passed as params["method"] (default GET), mirroring
// the platform's JavaScript SDK. GET parameters become query values; for
// other methods the parameters are sent as a JSON body.
//
// Returns ErrUnauthenticated, before any network call, when no valid token
// is held.
func (s *SDK) API(ctx context.Context, path string, params map[string]any) (map[string]any, error) {
	if s.GetStatus() != StatusAuthorized {
		return nil, ErrUnauthenticated
	}

	record, err := s.store.Get()
	if err != nil || !record.Valid() {
		return nil, ErrUnauthenticated
	}

	method := http.MethodGet
	body := make(map[string]any, len(params))
	for k, v := range params {
		if k == "method" {
			if m, ok := v.(string); ok && m != "" {
				method = strings.ToUpper(m)
			}
			continue
		}
		body[k] = v
	}

	endpoint := s.host + apiPath + "/" + strings.TrimPrefix(path, "/")

	var req *http.Request
	if method == http.MethodGet {
		query := url.Values{}
		for k, v := range body {
			query.Set(k, fmt.Sprint(v))
		}
		target := endpoint
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	} else {
		var payload []byte
		payload, err = json.Marshal(body)
		if err == nil {
			req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(string(payload)))
			if req != nil {
				req.Header.Set("Content-Type", "application/json")
			}
		}
	}
	if err != nil {
		return map[string]any{"error": err.Error()}, nil
	}

	req.Header.Set("Authorization", "Bearer "+record.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("API request failed", "path", path, "error", err.Error())
		return map[string]any{"error": err.Error()}, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return map[string]any{"error": err.Error()}, nil
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return map[string]any{"error": fmt.Sprintf("malformed response: %v", err)}, nil
	}

	s.checkRemoteError(parsed)
	return parsed, nil
}

// checkRemoteError inspects a response body for an OAuth error from the
// platform. An OAuthException means the token was revoked or rejected
// remotely: the stored token is invalidated and the status transitions.
func (s *SDK) checkRemoteError(response map[string]any) {
	errVal, ok := response["error"]
	if !ok {
		return
	}
	s.logger.Debug("API returned error", "error", fmt.Sprint(errVal))

	errMap, ok := errVal.(map[string]any)
	if !ok {
		return
	}
	if errType, _ := errMap["type"].(string); errType == "OAuthException" {
		if err := s.store.Clear(); err != nil {
			s.logger.Warn("failed to clear rejected token", "error", err.Error())
		}
		s.setStatus(StatusUnauthorized)
	}
}

// AccessToken returns the current access token, or the empty string when not
// authorized.
func (s *SDK) AccessToken() string {
	record, err := s.store.Get()
	if err != nil || !record.Valid() {
		return ""
	}
	return record.AccessToken
}

// TokenExpiry reports when the current token expires. ok is false when no
// valid token is held or the token carries no expiry.
func (s *SDK) TokenExpiry() (expiry time.Time, ok bool) {
	record, err := s.store.Get()
	if err != nil || !record.Valid() || record.Expiry.IsZero() {
		return time.Time{}, false
	}
	return record.Expiry, true
}
