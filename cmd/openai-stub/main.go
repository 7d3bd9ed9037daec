package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal(err)
	}
}

// newMux serves the two endpoints deepsearch needs: model listing for the
// startup probe and chat completions for entity and sentiment requests.
func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys, user := "", ""
		if len(req.Messages) > 0 {
			sys = strings.TrimSpace(req.Messages[0].Content)
		}
		if len(req.Messages) > 1 {
			user = req.Messages[1].Content
		}
		var payload any
		switch {
		case strings.Contains(sys, "named entities"):
			payload = stubEntities(user)
		case strings.Contains(sys, "sentiment"):
			payload = stubSentiment(user)
		default:
			http.Error(w, "unexpected system", http.StatusBadRequest)
			return
		}
		b, _ := json.Marshal(payload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": string(b)}},
			},
		})
	})
	return mux
}

var capitalized = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\b`)

// stubEntities reports capitalized runs as organisations, which is enough to
// exercise the entity path end to end.
func stubEntities(text string) map[string][]string {
	out := map[string][]string{"PERSON": {}, "ORG": {}, "GPE": {}, "PRODUCT": {}}
	seen := map[string]bool{}
	for _, m := range capitalized.FindAllString(text, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out["ORG"] = append(out["ORG"], m)
	}
	return out
}

func stubSentiment(text string) map[string]float64 {
	lower := strings.ToLower(text)
	pos := strings.Count(lower, "good") + strings.Count(lower, "great")
	neg := strings.Count(lower, "bad") + strings.Count(lower, "poor")
	polarity := 0.0
	if total := pos + neg; total > 0 {
		polarity = float64(pos-neg) / float64(total)
	}
	return map[string]float64{"polarity": polarity, "subjectivity": 0.5}
}
