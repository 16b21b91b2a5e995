package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// EmailSummary is one mailbox message header.
type EmailSummary struct {
	Subject  string `json:"subject"`
	From     string `json:"from"`
	Received string `json:"received"`
	Preview  string `json:"preview"`
}

// EmailBody is the full content of one message.
type EmailBody struct {
	Subject  string `json:"subject"`
	From     string `json:"from"`
	Received string `json:"received"`
	BodyType string `json:"body_type"`
	Body     string `json:"body"`
}

// ErrGraphNotConfigured reports that the mailbox client cannot authenticate.
var ErrGraphNotConfigured = errors.New("graph: client ID and authority must be configured")

const defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// GraphClient reads mail through the Microsoft Graph API. Tokens are
// obtained with the OAuth2 device-code flow on first use and cached for the
// lifetime of the client; an unconfigured client fails fast instead of
// prompting.
type GraphClient struct {
	BaseURL string

	cfg    *oauth2.Config
	prompt io.Writer
	client *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

// GraphOption adjusts client construction.
type GraphOption func(*GraphClient)

// WithGraphBaseURL overrides the API endpoint, used by tests.
func WithGraphBaseURL(baseURL string) GraphOption {
	return func(c *GraphClient) { c.BaseURL = strings.TrimRight(baseURL, "/") }
}

// WithStaticToken installs a previously obtained access token, skipping the
// device-code flow entirely.
func WithStaticToken(accessToken string) GraphOption {
	return func(c *GraphClient) {
		c.token = &oauth2.Token{AccessToken: accessToken}
	}
}

// NewGraphClient builds a mailbox client. prompt receives the device-code
// sign-in instructions when interactive authentication is required.
func NewGraphClient(clientID, authority string, scopes []string, prompt io.Writer, opts ...GraphOption) *GraphClient {
	authority = strings.TrimRight(authority, "/")
	c := &GraphClient{
		BaseURL: defaultGraphBaseURL,
		cfg: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:       authority + "/oauth2/v2.0/authorize",
				TokenURL:      authority + "/oauth2/v2.0/token",
				DeviceAuthURL: authority + "/oauth2/v2.0/devicecode",
			},
			Scopes: graphScopes(scopes),
		},
		prompt: prompt,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	if authority == "" {
		c.cfg.Endpoint = oauth2.Endpoint{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// graphScopes qualifies bare scope names with the Graph resource URI.
func graphScopes(scopes []string) []string {
	qualified := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if !strings.HasPrefix(scope, "https://") {
			scope = "https://graph.microsoft.com/" + scope
		}
		qualified = append(qualified, scope)
	}
	return qualified
}

func (c *GraphClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && (c.token.Expiry.IsZero() || c.token.Expiry.After(time.Now())) {
		return c.token.AccessToken, nil
	}
	if c.cfg.ClientID == "" || c.cfg.Endpoint.DeviceAuthURL == "" {
		return "", ErrGraphNotConfigured
	}

	auth, err := c.cfg.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("graph: device flow start failed: %w", err)
	}
	if c.prompt != nil {
		fmt.Fprintf(c.prompt, "To sign in, open %s and enter the code %s\n", auth.VerificationURI, auth.UserCode)
	}
	token, err := c.cfg.DeviceAccessToken(ctx, auth)
	if err != nil {
		return "", fmt.Errorf("graph: device flow failed: %w", err)
	}
	c.token = token
	return token.AccessToken, nil
}

type graphRecipient struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphMessage struct {
	ID               string          `json:"id"`
	Subject          string          `json:"subject"`
	From             *graphRecipient `json:"from"`
	ReceivedDateTime string          `json:"receivedDateTime"`
	BodyPreview      string          `json:"bodyPreview"`
	Body             *struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
}

// RecentUnread fetches up to limit unread messages, newest first. limit is
// clamped to 1..50.
func (c *GraphClient) RecentUnread(ctx context.Context, limit int) ([]EmailSummary, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("$filter", "isRead eq false")
	query.Set("$orderby", "receivedDateTime desc")
	query.Set("$top", strconv.Itoa(limit))
	query.Set("$select", "subject,from,receivedDateTime,bodyPreview")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/me/messages?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph: message request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph: API error %d", resp.StatusCode)
	}

	var decoded struct {
		Value []graphMessage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("graph: invalid response: %w", err)
	}

	emails := make([]EmailSummary, 0, len(decoded.Value))
	for _, msg := range decoded.Value {
		emails = append(emails, EmailSummary{
			Subject:  msg.Subject,
			From:     senderAddress(msg.From),
			Received: msg.ReceivedDateTime,
			Preview:  truncatePreview(msg.BodyPreview, 200),
		})
	}
	return emails, nil
}

// MessageBody fetches the full content of one message by Graph ID. Bodies
// are capped at 2000 runes.
func (c *GraphClient) MessageBody(ctx context.Context, messageID string) (*EmailBody, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/me/messages/"+url.PathEscape(messageID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph: message request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph: API error %d", resp.StatusCode)
	}

	var msg graphMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("graph: invalid response: %w", err)
	}
	body := &EmailBody{
		Subject:  msg.Subject,
		From:     senderAddress(msg.From),
		Received: msg.ReceivedDateTime,
	}
	if msg.Body != nil {
		body.BodyType = msg.Body.ContentType
		body.Body = truncatePreview(msg.Body.Content, 2000)
	}
	return body, nil
}

func senderAddress(r *graphRecipient) string {
	if r == nil || r.EmailAddress.Address == "" {
		return "Unknown"
	}
	return r.EmailAddress.Address
}

func truncatePreview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
