package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const configDirName = "dashbot_cfg"

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultConfigPath returns dashbot_cfg/config.yaml within the workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// Settings matches dashbot_cfg/config.yaml. Every field can also be supplied
// through the environment; env values win over the file.
type Settings struct {
	Jira      JiraSettings     `yaml:"jira"`
	Microsoft GraphSettings    `yaml:"microsoft"`
	Obsidian  ObsidianSettings `yaml:"obsidian"`
	Mail      MailSettings     `yaml:"mail"`
	Artifacts string           `yaml:"artifacts_dir"`
}

// JiraSettings configures the issue tracker client.
type JiraSettings struct {
	URL   string `yaml:"url"`
	Email string `yaml:"email"`
	Token string `yaml:"token"`
}

// Configured reports whether the Jira client can authenticate.
func (s JiraSettings) Configured() bool {
	return s.URL != "" && s.Email != "" && s.Token != ""
}

// GraphSettings configures the Microsoft Graph mailbox client.
type GraphSettings struct {
	ClientID  string `yaml:"client_id"`
	Authority string `yaml:"authority"`
	Scopes    string `yaml:"scopes"`
}

// Configured reports whether the mailbox client can authenticate.
func (s GraphSettings) Configured() bool {
	return s.ClientID != "" && s.Authority != ""
}

// ScopeList splits the comma-separated scope string.
func (s GraphSettings) ScopeList() []string {
	parts := strings.Split(s.Scopes, ",")
	scopes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}
	return scopes
}

// ObsidianSettings configures the note vault writer.
type ObsidianSettings struct {
	VaultPath string `yaml:"vault_path"`
}

// Configured reports whether a vault path is set.
func (s ObsidianSettings) Configured() bool {
	return s.VaultPath != ""
}

// MailSettings configures the dual-mode transactional mail client.
type MailSettings struct {
	Account    string `yaml:"account"`
	AuthMethod string `yaml:"auth_method"`
	IMAPHost   string `yaml:"imap_host"`
	IMAPPort   int    `yaml:"imap_port"`
	SMTPHost   string `yaml:"smtp_host"`
	SMTPPort   int    `yaml:"smtp_port"`
	Password   string `yaml:"-"`
}

// Defaults returns the baseline settings: Mail.Read Graph scope, basic-auth
// mail against Gmail hosts, standard IMAP/SMTP ports.
func Defaults() *Settings {
	return &Settings{
		Microsoft: GraphSettings{Scopes: "Mail.Read"},
		Mail: MailSettings{
			AuthMethod: "basic",
			IMAPHost:   "imap.gmail.com",
			IMAPPort:   993,
			SMTPHost:   "smtp.gmail.com",
			SMTPPort:   587,
		},
		Artifacts: "artifacts",
	}
}

// Load reads the config file (missing files yield defaults), then applies
// environment overrides.
func Load(path string) (*Settings, error) {
	settings := Defaults()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, err
		}
	}
	settings.applyEnv()
	settings.applyMailDefaults()
	return settings, nil
}

func (s *Settings) applyEnv() {
	envString(&s.Jira.URL, "JIRA_URL")
	envString(&s.Jira.Email, "JIRA_EMAIL")
	envString(&s.Jira.Token, "JIRA_TOKEN")
	envString(&s.Microsoft.ClientID, "MS_CLIENT_ID")
	envString(&s.Microsoft.Authority, "MS_AUTHORITY")
	envString(&s.Microsoft.Scopes, "MS_SCOPES")
	envString(&s.Obsidian.VaultPath, "OBSIDIAN_VAULT_PATH")
	envString(&s.Mail.Account, "EMAIL_ACCOUNT")
	envString(&s.Mail.AuthMethod, "AUTH_METHOD")
	envString(&s.Mail.IMAPHost, "EMAIL_HOST_IMAP")
	envString(&s.Mail.SMTPHost, "EMAIL_HOST_SMTP")
	envInt(&s.Mail.IMAPPort, "EMAIL_PORT_IMAP")
	envInt(&s.Mail.SMTPPort, "EMAIL_PORT_SMTP")
	envString(&s.Mail.Password, "EMAIL_PASSWORD")
}

// applyMailDefaults switches the default mail hosts to Office 365 when the
// oauth mode is selected and no explicit hosts are configured.
func (s *Settings) applyMailDefaults() {
	if strings.EqualFold(s.Mail.AuthMethod, "azure_oauth") {
		if s.Mail.IMAPHost == "" || s.Mail.IMAPHost == "imap.gmail.com" {
			s.Mail.IMAPHost = "outlook.office365.com"
		}
		if s.Mail.SMTPHost == "" || s.Mail.SMTPHost == "smtp.gmail.com" {
			s.Mail.SMTPHost = "smtp.office365.com"
		}
	}
}

// Save writes the settings to disk, creating the config directory.
func Save(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func envString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}
