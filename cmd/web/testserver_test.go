package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/myrjola/jigsawroom/internal/e2etest"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

const testAnswerKey = `### DESAFIO 1 — Cifra
Decifre KHOOR.
**Resposta:** HELLO
### DESAFIO 2 — Sem resposta
Ainda não sabemos.`

const testOficina = `### DESAFIO 1 — Cifra
Decifre KHOOR.

### DESAFIO 2 — Sem resposta
Ainda não sabemos.`

const testExtras = `{
  // Extra puzzles.
  "challenges": [
    {"title": "Mentiroso", "category": "social", "difficulty": "hard", "description": "Quem mente?"},
    {"title": "Titulação", "category": "chemistry", "difficulty": "easy", "description": "Qual o pH?"},
  ]
}`

// fakeCompletions answers every chat completion request with the same streamed chunks.
type fakeCompletions struct {
	mu       sync.Mutex
	chunks   []string
	requests []openai.ChatCompletionRequest
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	for _, c := range f.chunks {
		content, _ := json.Marshal(c)
		_, _ = fmt.Fprintf(w,
			"data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"created\":0,\"model\":\"m\","+
				"\"choices\":[{\"index\":0,\"delta\":{\"content\":%s},\"finish_reason\":null}]}\n\n", content)
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
}

func (f *fakeCompletions) Requests() []openai.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), f.requests...)
}

// writeFixtures writes the answer key, the extra challenges and a persona tree to a temporary directory.
func writeFixtures(t *testing.T) map[string]string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"respostas.txt":   testAnswerKey,
		"challenges.json": testExtras,
		"agents_description/gustavo/descricao_gustavo.txt":     "Engenheiro lógico e metódico.",
		"agents_description/gustavo/oficina_sem_respostas.txt": testOficina,
		"agents_description/maya/background_maya.txt":          "Psicóloga experiente.",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return map[string]string{
		"JIGSAW_ADDR":         "localhost:0",
		"JIGSAW_SQLITE_URL":   ":memory:",
		"JIGSAW_ANSWER_KEY":   filepath.Join(dir, "respostas.txt"),
		"JIGSAW_CHALLENGES":   filepath.Join(dir, "challenges.json"),
		"JIGSAW_PERSONAS_DIR": filepath.Join(dir, "agents_description"),
	}
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// startOpenAIServer starts the application with the OpenAI backend talking to f.
func startOpenAIServer(t *testing.T, f *fakeCompletions) *e2etest.Server {
	t.Helper()
	completions := httptest.NewServer(f)
	t.Cleanup(completions.Close)

	env := writeFixtures(t)
	env["JIGSAW_AGENT_BACKEND"] = backendOpenAI
	env["OPENAI_API_KEY"] = "test-key"
	env["OPENAI_BASE_URL"] = completions.URL + "/v1"

	server, err := e2etest.StartServer(t.Context(), io.Discard, lookupFrom(env), run)
	require.NoError(t, err)
	return server
}

// startBedrockServer starts the application with the Bedrock backend and the given extra environment.
func startBedrockServer(t *testing.T, extra map[string]string) *e2etest.Server {
	t.Helper()
	env := writeFixtures(t)
	env["JIGSAW_AGENT_BACKEND"] = backendBedrock
	env["AWS_REGION"] = "sa-east-1"
	for k, v := range extra {
		env[k] = v
	}
	server, err := e2etest.StartServer(t.Context(), io.Discard, lookupFrom(env), run)
	require.NoError(t, err)
	return server
}
