package tools

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"golang.org/x/oauth2"
)

// MailAuthMethod selects how the transactional mail client authenticates.
// The two modes are mutually exclusive and chosen by configuration.
type MailAuthMethod string

const (
	// MailAuthBasic uses a static account password (or app password).
	MailAuthBasic MailAuthMethod = "basic"
	// MailAuthAzureOAuth uses a previously obtained OAuth2 access token via
	// XOAUTH2, as required by Office 365 tenants with basic auth disabled.
	MailAuthAzureOAuth MailAuthMethod = "azure_oauth"
)

// MailMessage is one fetched message header.
type MailMessage struct {
	ID      uint32 `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
}

// ErrMailNotConfigured reports missing account or credential configuration.
var ErrMailNotConfigured = errors.New("mail: account and credential must be configured")

// OutlookMailScopes are the delegated scopes the IMAP/SMTP client needs when
// authenticating against an Office 365 tenant.
var OutlookMailScopes = []string{
	"https://outlook.office.com/IMAP.AccessAsUser.All",
	"https://outlook.office.com/SMTP.Send",
	"offline_access",
}

// AcquireMailToken runs the OAuth2 device-code flow for the Outlook mail
// scopes and returns a bearer token usable with MailAuthAzureOAuth. The
// verification URL and user code are written to prompt.
func AcquireMailToken(ctx context.Context, clientID, authority string, prompt io.Writer) (string, error) {
	base := strings.TrimRight(authority, "/")
	cfg := &oauth2.Config{
		ClientID: clientID,
		Scopes:   OutlookMailScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:       base + "/oauth2/v2.0/authorize",
			TokenURL:      base + "/oauth2/v2.0/token",
			DeviceAuthURL: base + "/oauth2/v2.0/devicecode",
		},
	}
	auth, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("mail: device authorization failed: %w", err)
	}
	fmt.Fprintf(prompt, "To sign in, visit %s and enter the code %s\n", auth.VerificationURI, auth.UserCode)
	token, err := cfg.DeviceAccessToken(ctx, auth)
	if err != nil {
		return "", fmt.Errorf("mail: device token exchange failed: %w", err)
	}
	return token.AccessToken, nil
}

// MailClient sends and reads mail over SMTP/IMAP. Depending on AuthMethod it
// authenticates with a password (PLAIN/LOGIN) or an OAuth2 bearer token
// (XOAUTH2).
type MailClient struct {
	Account    string
	AuthMethod MailAuthMethod

	IMAPHost string
	IMAPPort int
	SMTPHost string
	SMTPPort int

	// Exactly one of these is used, per AuthMethod.
	Password    string
	AccessToken string
}

func (c *MailClient) credential() (string, error) {
	if c.Account == "" {
		return "", ErrMailNotConfigured
	}
	switch c.AuthMethod {
	case MailAuthAzureOAuth:
		if c.AccessToken == "" {
			return "", fmt.Errorf("mail: oauth mode selected but no access token available")
		}
		return c.AccessToken, nil
	default:
		if c.Password == "" {
			return "", ErrMailNotConfigured
		}
		return c.Password, nil
	}
}

// Send delivers a plain-text message over SMTP with STARTTLS. The boolean
// mirrors the boundary contract: true on accepted delivery.
func (c *MailClient) Send(to, subject, body string) (bool, error) {
	credential, err := c.credential()
	if err != nil {
		return false, err
	}

	var auth smtp.Auth
	if c.AuthMethod == MailAuthAzureOAuth {
		auth = xoauth2SMTPAuth{username: c.Account, token: credential}
	} else {
		auth = smtp.PlainAuth("", c.Account, credential, c.SMTPHost)
	}

	msg := strings.Join([]string{
		"From: " + c.Account,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := net.JoinHostPort(c.SMTPHost, strconv.Itoa(c.SMTPPort))
	if err := smtp.SendMail(addr, auth, c.Account, []string{to}, []byte(msg)); err != nil {
		return false, fmt.Errorf("mail: send failed: %w", err)
	}
	return true, nil
}

// FetchRecent returns headers for the most recent limit messages in the
// inbox, oldest first.
func (c *MailClient) FetchRecent(limit int) ([]MailMessage, error) {
	credential, err := c.credential()
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 1
	}

	addr := net.JoinHostPort(c.IMAPHost, strconv.Itoa(c.IMAPPort))
	conn, err := client.DialTLS(addr, &tls.Config{ServerName: c.IMAPHost})
	if err != nil {
		return nil, fmt.Errorf("mail: IMAP dial failed: %w", err)
	}
	defer conn.Logout()

	if c.AuthMethod == MailAuthAzureOAuth {
		err = conn.Authenticate(&xoauth2IMAPClient{username: c.Account, token: credential})
	} else {
		err = conn.Login(c.Account, credential)
	}
	if err != nil {
		return nil, fmt.Errorf("mail: authentication failed: %w", err)
	}

	mbox, err := conn.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("mail: select inbox failed: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if mbox.Messages > uint32(limit) {
		from = mbox.Messages - uint32(limit) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	messages := make(chan *imap.Message, limit)
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	var fetched []MailMessage
	for msg := range messages {
		entry := MailMessage{ID: msg.SeqNum}
		if msg.Envelope != nil {
			entry.Subject = msg.Envelope.Subject
			if len(msg.Envelope.From) > 0 {
				entry.From = msg.Envelope.From[0].Address()
			}
		}
		fetched = append(fetched, entry)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("mail: fetch failed: %w", err)
	}
	return fetched, nil
}

// xoauth2String builds the SASL XOAUTH2 initial response.
func xoauth2String(username, token string) []byte {
	return []byte("user=" + username + "\x01auth=Bearer " + token + "\x01\x01")
}

// xoauth2IMAPClient implements sasl.Client for the XOAUTH2 mechanism, which
// go-sasl does not ship out of the box.
type xoauth2IMAPClient struct {
	username string
	token    string
}

var _ sasl.Client = (*xoauth2IMAPClient)(nil)

func (c *xoauth2IMAPClient) Start() (string, []byte, error) {
	return "XOAUTH2", xoauth2String(c.username, c.token), nil
}

func (c *xoauth2IMAPClient) Next(challenge []byte) ([]byte, error) {
	// A challenge after the initial response is the server's JSON error blob.
	return nil, fmt.Errorf("mail: XOAUTH2 rejected: %s", challenge)
}

// xoauth2SMTPAuth implements smtp.Auth for XOAUTH2.
type xoauth2SMTPAuth struct {
	username string
	token    string
}

func (a xoauth2SMTPAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("mail: XOAUTH2 requires a TLS connection")
	}
	return "XOAUTH2", xoauth2String(a.username, a.token), nil
}

func (a xoauth2SMTPAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		// Empty response tells the server to finish the error exchange.
		return []byte{}, nil
	}
	return nil, nil
}
