package oauth

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AlessioPiovesan/geni-wrapper/pkg/logging"
)

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

// CallbackResult represents the result of an OAuth callback.
type CallbackResult struct {
	// Code is the authorization code from the OAuth provider.
	Code string

	// Error is the error code if the authorization failed.
	Error string

	// ErrorDescription is a human-readable error description.
	ErrorDescription string
}

// IsError returns true if the callback result represents an error.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

// CallbackServer is a temporary local HTTP server for receiving the OAuth
// redirect. It starts, waits for a single redirect carrying the expected
// state parameter, then shuts down. Redirects whose state does not match
// are answered with an error page but do not complete the wait; the server
// keeps listening until a matching redirect arrives or the context expires.
type CallbackServer struct {
	port          int
	expectedState string
	server        *http.Server
	listener      net.Listener
	resultCh      chan *CallbackResult
	once          sync.Once
	serverURL     string
}

// NewCallbackServer creates a new callback server. A port of 0 binds an
// ephemeral port chosen by the OS; the chosen port is reported through the
// returned redirect URI so the authorization URL can be built correctly.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		resultCh:      make(chan *CallbackResult, 1),
	}
}

// Start starts the callback server and begins listening for the OAuth
// redirect. The server will automatically stop when the context is cancelled.
// Returns the redirect URI to use in the OAuth authorization request.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.serverURL = fmt.Sprintf("http://localhost:%d", s.port)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("OAuthCallback", err, "callback server terminated unexpectedly")
		}
	}()

	// Stop the server when the flow's context ends, whatever the exit path.
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.RedirectURI(), nil
}

// Wait blocks until a matching redirect arrives or the context expires.
// On context expiry the listener is torn down and ctx.Err() is returned.
func (s *CallbackServer) Wait(ctx context.Context) (*CallbackResult, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case <-ctx.Done():
		s.Stop()
		return nil, ctx.Err()
	}
}

// handleCallback handles a single OAuth redirect request.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	// Security headers for the confirmation page
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	query := r.URL.Query()
	result := &CallbackResult{
		Code:             query.Get("code"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	// A redirect with a stale or forged state must not complete the flow.
	// Answer it and keep waiting for the real one.
	if !result.IsError() && query.Get("state") != s.expectedState {
		logging.Warn("OAuthCallback", "state mismatch, ignoring redirect (expected %d bytes, got %d)",
			len(s.expectedState), len(query.Get("state")))
		s.renderPage(w, &CallbackResult{
			Error:            "invalid_state",
			ErrorDescription: "State parameter did not match. Retry the authorization.",
		})
		return
	}

	var accepted bool
	s.once.Do(func() {
		accepted = true
		s.renderPage(w, result)
		s.resultCh <- result

		// Shut down after the response has had time to flush.
		go func() {
			time.Sleep(1 * time.Second)
			s.Stop()
		}()
	})

	if !accepted {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// renderPage writes the embedded confirmation page for the result.
func (s *CallbackServer) renderPage(w http.ResponseWriter, result *CallbackResult) {
	var tmpl *template.Template
	var data interface{}

	if result.IsError() {
		tmpl = template.Must(template.New("error").Parse(callbackErrorHTML))
		data = map[string]string{
			"Error":       result.Error,
			"Description": result.ErrorDescription,
		}
	} else {
		tmpl = template.Must(template.New("success").Parse(callbackSuccessHTML))
		data = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Stop gracefully shuts down the callback server. Safe to call on every
// exit path; the socket is guaranteed closed afterwards.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// RedirectURI returns the redirect URI for OAuth configuration.
func (s *CallbackServer) RedirectURI() string {
	return s.serverURL + "/callback"
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	return s.port
}
