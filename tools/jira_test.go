package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJiraSearchMapsIssues(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"issues": []map[string]interface{}{
				{
					"key": "OD-123",
					"fields": map[string]interface{}{
						"summary":  "Fix login bug",
						"status":   map[string]string{"name": "In Progress"},
						"priority": map[string]string{"name": "High"},
						"assignee": map[string]string{"displayName": "Ada"},
						"updated":  "2026-08-29T10:00:00.000+0000",
						"description": map[string]interface{}{
							"type": "doc",
							"content": []map[string]interface{}{
								{
									"type": "paragraph",
									"content": []map[string]interface{}{
										{"type": "text", "text": "Login fails"},
										{"type": "text", "text": "intermittently."},
									},
								},
							},
						},
					},
				},
				{
					"key": "OD-124",
					"fields": map[string]interface{}{
						"summary": "No metadata issue",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewJiraClient(server.URL, "me@example.com", "token")
	issues, err := client.AssignedIssues(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/rest/api/3/search/jql", gotPath)
	assert.NotEmpty(t, gotAuth)
	assert.Equal(t, "assignee = currentUser() ORDER BY updated DESC", gotBody["jql"])

	require.Len(t, issues, 2)
	assert.Equal(t, Issue{
		Key:         "OD-123",
		Summary:     "Fix login bug",
		Status:      "In Progress",
		Priority:    "High",
		Assignee:    "Ada",
		Updated:     "2026-08-29T10:00:00.000+0000",
		Description: "Login fails intermittently.",
	}, issues[0])
	assert.Equal(t, "OD-124", issues[1].Key)
	assert.Empty(t, issues[1].Status)
}

func TestJiraSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"errorMessages": []string{"bad jql"}})
	}))
	defer server.Close()

	client := NewJiraClient(server.URL, "me@example.com", "token")
	_, err := client.Search(context.Background(), "not a query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "bad jql")
}

func TestJiraNotConfigured(t *testing.T) {
	client := NewJiraClient("", "", "")
	_, err := client.AssignedIssues(context.Background())
	assert.ErrorIs(t, err, ErrJiraNotConfigured)
}

func TestJiraIssueNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewJiraClient(server.URL, "me@example.com", "token")
	_, err := client.Issue(context.Background(), "OD-999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OD-999")
}

func TestExtractADFText(t *testing.T) {
	assert.Equal(t, "", extractADFText(nil))
	assert.Equal(t, "plain", extractADFText(json.RawMessage(`"plain"`)))
	adf := json.RawMessage(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}]}`)
	assert.Equal(t, "a b", extractADFText(adf))
}
