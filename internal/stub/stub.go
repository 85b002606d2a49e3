// Package stub is an OpenAI-compatible chat completions server that answers
// the lead pipeline's prompts deterministically, for offline runs and tests.
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hyperifyio/goleads/internal/prompts"
)

// Options configures the canned answers.
type Options struct {
	Model string
	// Names is the company list returned for name extraction prompts.
	Names []string
}

// DefaultNames is used when Options.Names is empty.
var DefaultNames = []string{"Acme Corp", "Globex", "Initech"}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// NewHandler serves /v1/models and /v1/chat/completions.
func NewHandler(opts Options) http.Handler {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "test-model"
	}
	names := opts.Names
	if len(names) == 0 {
		names = DefaultNames
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		user := ""
		for _, m := range req.Messages {
			if m.Role == "user" {
				user = m.Content
			}
		}
		content, ok := Answer(user, names)
		if !ok {
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

// Answer returns the canned completion for a pipeline prompt, recognized by
// its section marker.
func Answer(prompt string, names []string) (string, bool) {
	switch {
	case strings.Contains(prompt, prompts.EmailMarker):
		name := lineValue(prompt, "COMPANY NAME:")
		if name == "" {
			name = "there"
		}
		return fmt.Sprintf("Subject: Hardware for %s\n\nHi %s team,\n\nYour growth caught our eye. Could we set up a 15 minute call next week?\n\nBest regards", name, name), true
	case strings.Contains(prompt, prompts.InsightsMarker):
		return "7/10: A growing technical team suggests demand for workstations.", true
	case strings.Contains(prompt, prompts.WebsiteMarker):
		text := prompt[strings.Index(prompt, prompts.WebsiteMarker)+len(prompts.WebsiteMarker):]
		text = strings.Trim(strings.TrimSpace(text), "'")
		if len(text) > 60 {
			text = text[:60]
		}
		return "- Sells " + strings.TrimSpace(text) + "\n- Serves mid-market customers", true
	case strings.Contains(prompt, prompts.ArticleMarker):
		return strings.Join(names, ", "), true
	}
	return "", false
}

func lineValue(text, prefix string) string {
	for _, line := range strings.Split(text, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), prefix); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
