package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Issue is one issue-tracker item in the shape the rest of the system
// consumes.
type Issue struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Description string `json:"description,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Updated     string `json:"updated,omitempty"`
}

// ErrJiraNotConfigured reports missing credentials before any request is made.
var ErrJiraNotConfigured = errors.New("jira: base URL, email and API token must be configured")

// JiraClient queries the Jira Cloud REST API v3 using basic auth with an API
// token.
type JiraClient struct {
	BaseURL string
	Email   string
	Token   string
	client  *http.Client
}

// NewJiraClient builds a client for the given Jira Cloud site.
func NewJiraClient(baseURL, email, token string) *JiraClient {
	return &JiraClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Email:   email,
		Token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *JiraClient) configured() bool {
	return c.BaseURL != "" && c.Email != "" && c.Token != ""
}

type jiraSearchRequest struct {
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields"`
	MaxResults int      `json:"maxResults"`
}

type jiraNamed struct {
	Name string `json:"name"`
}

type jiraUser struct {
	DisplayName string `json:"displayName"`
}

type jiraIssueFields struct {
	Summary     string          `json:"summary"`
	Status      *jiraNamed      `json:"status"`
	Priority    *jiraNamed      `json:"priority"`
	Assignee    *jiraUser       `json:"assignee"`
	Updated     string          `json:"updated"`
	Description json.RawMessage `json:"description"`
}

type jiraIssue struct {
	Key    string          `json:"key"`
	Fields jiraIssueFields `json:"fields"`
}

type jiraSearchResponse struct {
	Issues []jiraIssue `json:"issues"`
}

// AssignedIssues returns every issue assigned to the authenticated user,
// most recently updated first.
func (c *JiraClient) AssignedIssues(ctx context.Context) ([]Issue, error) {
	return c.Search(ctx, "assignee = currentUser() ORDER BY updated DESC")
}

// Search runs a JQL query and returns the matching issues.
func (c *JiraClient) Search(ctx context.Context, jql string) ([]Issue, error) {
	if !c.configured() {
		return nil, ErrJiraNotConfigured
	}
	payload := jiraSearchRequest{
		JQL:        jql,
		Fields:     []string{"key", "summary", "status", "priority", "updated", "assignee", "description"},
		MaxResults: 100,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/rest/api/3/search/jql", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.Email, c.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira: search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, jiraAPIError(resp)
	}

	var decoded jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("jira: invalid response: %w", err)
	}

	issues := make([]Issue, 0, len(decoded.Issues))
	for _, raw := range decoded.Issues {
		issues = append(issues, mapIssue(raw))
	}
	return issues, nil
}

// Issue fetches a single issue by key, including its flattened description.
func (c *JiraClient) Issue(ctx context.Context, key string) (*Issue, error) {
	if !c.configured() {
		return nil, ErrJiraNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/rest/api/3/issue/"+key, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.Email, c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira: issue request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("jira: issue %q not found", key)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, jiraAPIError(resp)
	}

	var raw jiraIssue
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("jira: invalid response: %w", err)
	}
	issue := mapIssue(raw)
	return &issue, nil
}

func mapIssue(raw jiraIssue) Issue {
	issue := Issue{
		Key:         raw.Key,
		Summary:     raw.Fields.Summary,
		Updated:     raw.Fields.Updated,
		Description: extractADFText(raw.Fields.Description),
	}
	if raw.Fields.Status != nil {
		issue.Status = raw.Fields.Status.Name
	}
	if raw.Fields.Priority != nil {
		issue.Priority = raw.Fields.Priority.Name
	}
	if raw.Fields.Assignee != nil {
		issue.Assignee = raw.Fields.Assignee.DisplayName
	}
	return issue
}

func jiraAPIError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	var decoded struct {
		ErrorMessages []string `json:"errorMessages"`
	}
	if err := json.Unmarshal(detail, &decoded); err == nil && len(decoded.ErrorMessages) > 0 {
		return fmt.Errorf("jira: API error %d: %s", resp.StatusCode, strings.Join(decoded.ErrorMessages, "; "))
	}
	return fmt.Errorf("jira: API error %d", resp.StatusCode)
}

// extractADFText flattens Atlassian Document Format content into plain text.
// Descriptions arrive either as a bare string or as a nested ADF node tree.
func extractADFText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var root interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return ""
	}
	var parts []string
	var walk func(interface{})
	walk = func(node interface{}) {
		switch v := node.(type) {
		case map[string]interface{}:
			if v["type"] == "text" {
				if text, ok := v["text"].(string); ok {
					parts = append(parts, text)
				}
			}
			if children, ok := v["content"].([]interface{}); ok {
				for _, child := range children {
					walk(child)
				}
			}
		case []interface{}:
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(root)
	return strings.Join(parts, " ")
}
