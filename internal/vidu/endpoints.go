package vidu

import (
	"net/http"
	"net/url"
	"strings"
)

// statusAttempt is one candidate way to ask the service about a task.
type statusAttempt struct {
	Method string
	URL    string
	// Body holds the JSON payload for POST candidates; nil for GET.
	Body map[string]string
}

// statusAttempts returns the fixed, ordered candidate list for querying task
// status. The documented endpoint comes first; the rest are common API shapes
// kept for compatibility with older deployments. Discovery tries them in this
// exact order and stops at the first usable answer.
func statusAttempts(base, taskID string) []statusAttempt {
	escaped := url.PathEscape(taskID)
	query := url.QueryEscape(taskID)
	idBody := map[string]string{"task_id": taskID}

	return []statusAttempt{
		{Method: http.MethodGet, URL: base + "/tasks/" + escaped + "/creations"},
		{Method: http.MethodGet, URL: base + "/get_generation?task_id=" + query},
		{Method: http.MethodPost, URL: base + "/get_generation", Body: idBody},
		{Method: http.MethodGet, URL: base + "/generation?task_id=" + query},
		{Method: http.MethodGet, URL: base + "/generation/" + escaped},
		{Method: http.MethodGet, URL: base + "/task?task_id=" + query},
		{Method: http.MethodGet, URL: base + "/task/" + escaped},
		{Method: http.MethodGet, URL: base + "/tasks/" + escaped},
		{Method: http.MethodGet, URL: base + "/tasks?task_id=" + query},
		{Method: http.MethodPost, URL: base + "/task/get", Body: idBody},
		{Method: http.MethodPost, URL: base + "/generation/get", Body: idBody},
	}
}

// EndpointOverride replaces discovery with a single caller-provided endpoint.
// The URL template may contain a {task_id} placeholder.
type EndpointOverride struct {
	URLTemplate string
	Method      string
}

func (o *EndpointOverride) attempt(taskID string) statusAttempt {
	filled := strings.ReplaceAll(o.URLTemplate, "{task_id}", taskID)
	method := strings.ToUpper(strings.TrimSpace(o.Method))
	if method == "" {
		method = http.MethodGet
	}
	a := statusAttempt{Method: method, URL: filled}
	if method == http.MethodPost {
		// The template is expected to place the task id itself.
		a.Body = map[string]string{}
	}
	return a
}
