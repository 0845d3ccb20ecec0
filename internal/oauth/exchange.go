package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// tokenResponse is the JSON body returned by the token endpoint.
type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	ExpiresIn    expirySeconds `json:"expires_in,omitempty"`
	Error        string        `json:"error,omitempty"`
	ErrorDesc    string        `json:"error_description,omitempty"`
}

// expirySeconds accepts both numeric and quoted expires_in values; the Geni
// endpoint has been observed to send either.
type expirySeconds int64

func (e *expirySeconds) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*e = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expires_in value %s: %w", string(data), err)
	}
	*e = expirySeconds(n)
	return nil
}

// ExchangeError reports a failed authorization-code exchange.
type ExchangeError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("token exchange failed: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Message)
}

// ExchangeCode exchanges an authorization code for an access token at the
// given token endpoint. The request follows the authorization_code grant:
// a form-encoded POST carrying grant_type, code, redirect_uri and client_id.
func ExchangeCode(ctx context.Context, client *http.Client, tokenURL, clientID, code, redirectURI string) (*oauth2.Token, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
		"client_id":    {clientID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var parsed tokenResponse
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &ExchangeError{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return nil, fmt.Errorf("malformed token response: %w", jsonErr)
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != "" {
		return nil, &ExchangeError{
			StatusCode: resp.StatusCode,
			Code:       parsed.Error,
			Message:    parsed.ErrorDesc,
		}
	}

	if parsed.AccessToken == "" {
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Message: "response contained no access_token"}
	}

	token := &oauth2.Token{
		AccessToken:  parsed.AccessToken,
		TokenType:    parsed.TokenType,
		RefreshToken: parsed.RefreshToken,
	}
	if parsed.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	}

	return token, nil
}
