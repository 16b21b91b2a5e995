package tools

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailCredentialSelection(t *testing.T) {
	basic := &MailClient{Account: "me@example.com", AuthMethod: MailAuthBasic, Password: "secret"}
	cred, err := basic.credential()
	require.NoError(t, err)
	assert.Equal(t, "secret", cred)

	oauth := &MailClient{Account: "me@example.com", AuthMethod: MailAuthAzureOAuth, AccessToken: "tok"}
	cred, err = oauth.credential()
	require.NoError(t, err)
	assert.Equal(t, "tok", cred)
}

func TestMailCredentialMissing(t *testing.T) {
	_, err := (&MailClient{}).credential()
	assert.ErrorIs(t, err, ErrMailNotConfigured)

	_, err = (&MailClient{Account: "me@example.com", AuthMethod: MailAuthBasic}).credential()
	assert.ErrorIs(t, err, ErrMailNotConfigured)

	_, err = (&MailClient{Account: "me@example.com", AuthMethod: MailAuthAzureOAuth}).credential()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
}

func TestXOAUTH2InitialResponse(t *testing.T) {
	got := xoauth2String("me@example.com", "tok")
	assert.Equal(t, "user=me@example.com\x01auth=Bearer tok\x01\x01", string(got))

	mech, ir, err := (&xoauth2IMAPClient{username: "me@example.com", token: "tok"}).Start()
	require.NoError(t, err)
	assert.Equal(t, "XOAUTH2", mech)
	assert.Equal(t, got, ir)
}

func TestXOAUTH2SMTPRequiresTLS(t *testing.T) {
	auth := xoauth2SMTPAuth{username: "me@example.com", token: "tok"}
	_, _, err := auth.Start(&smtp.ServerInfo{Name: "smtp.office365.com", TLS: false})
	assert.Error(t, err)

	mech, ir, err := auth.Start(&smtp.ServerInfo{Name: "smtp.office365.com", TLS: true})
	require.NoError(t, err)
	assert.Equal(t, "XOAUTH2", mech)
	assert.NotEmpty(t, ir)
}
