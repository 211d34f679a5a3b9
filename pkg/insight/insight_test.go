package insight

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// scriptedGenerator replies with canned responses and records prompts
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", nil
	}
	response := g.responses[0]
	g.responses = g.responses[1:]
	return response, nil
}

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alpha, beta ,gamma", "alpha beta gamma"},
		{"single", "single"},
		{" a , , b ,", "a b"},
		{"", ""},
		{" , ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKeywords(tt.in), "input %q", tt.in)
	}
}

func TestClientGenerateChainsPrompts(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"  A long description.  ",
		"\nShort summary.\n",
		"greeting, world ",
	}}
	client := NewClient(generator, nil)

	insights, err := client.Generate(context.Background(), "Hello world")
	require.NoError(t, err)

	assert.Equal(t, "Short summary.", insights.Summary)
	assert.Equal(t, "greeting world", insights.Keywords)

	require.Len(t, generator.prompts, 3)
	assert.Contains(t, generator.prompts[0], "Transcription: Hello world")
	assert.Contains(t, generator.prompts[1], "Content: A long description.")
	assert.Contains(t, generator.prompts[2], "Content: Short summary.")
	assert.NotContains(t, generator.prompts[2], "%s")
}

func TestClientGenerateFailsOnEmptyStep(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		calls     int
		step      string
	}{
		{"description", []string{"   "}, 1, "description"},
		{"summary", []string{"desc", ""}, 2, "summary"},
		{"keywords", []string{"desc", "sum", ""}, 3, "keywords"},
		{"keywords only commas", []string{"desc", "sum", " , ,"}, 3, "keywords"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &scriptedGenerator{responses: tt.responses}
			insights, err := NewClient(generator, nil).Generate(context.Background(), "text")

			assert.Nil(t, insights)
			assert.ErrorIs(t, err, ErrEmptyResponse)
			assert.Contains(t, err.Error(), tt.step)
			assert.Len(t, generator.prompts, tt.calls)
		})
	}
}

func TestClientGenerateStopsOnError(t *testing.T) {
	boom := errors.New("quota exceeded")
	generator := &scriptedGenerator{err: boom}

	_, err := NewClient(generator, nil).Generate(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, generator.prompts, 1)
}

func TestRenderLeavesOtherPercentSigns(t *testing.T) {
	assert.Equal(t, "100% sure: hi", render("100% sure: %s", "hi"))
	assert.Equal(t, "a %s b", render("%s %s b", "a"))
}

func TestDefaultPromptsValid(t *testing.T) {
	assert.NoError(t, DefaultPrompts().Validate())
}

func TestLoadPrompts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"), []byte("\nSummarize: %s\n"), 0644))
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
description:
  template: "Describe: %s"
summary:
  file: summary.txt
`), 0644))

	prompts, err := LoadPrompts(path)
	require.NoError(t, err)

	assert.Equal(t, "Describe: %s", prompts.Description)
	assert.Equal(t, "Summarize: %s", prompts.Summary)
	assert.Equal(t, DefaultKeywordsPrompt, prompts.Keywords)
}

func TestLoadPromptsErrors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), "failed to read prompts file"},
		{"empty file", write("empty.yaml", "  \n"), "is empty"},
		{"bad yaml", write("bad.yaml", "description: [unclosed"), "failed to parse prompts file"},
		{"no placeholder", write("noph.yaml", "summary:\n  template: just text\n"), "placeholder"},
		{"both sources", write("both.yaml", "summary:\n  template: \"x %s\"\n  file: x.txt\n"), "both template and file"},
		{"missing prompt file", write("ref.yaml", "keywords:\n  file: gone.txt\n"), "failed to read file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPrompts(tt.path)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestPromptWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summary:\n  template: \"v1 %s\"\n"), 0644))

	initial, err := LoadPrompts(path)
	require.NoError(t, err)
	client := NewClient(&scriptedGenerator{}, initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := WatchPrompts(ctx, path, client)
	require.NoError(t, err)
	defer watcher.Stop()

	// An invalid edit keeps the current prompts
	require.NoError(t, os.WriteFile(path, []byte("summary:\n  template: broken\n"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, "v1 %s", client.Prompts().Summary)

	require.NoError(t, os.WriteFile(path, []byte("summary:\n  template: \"v2 %s\"\n"), 0644))
	assert.Eventually(t, func() bool {
		return client.Prompts().Summary == "v2 %s"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCandidateText(t *testing.T) {
	assert.Equal(t, "", candidateText(nil))
	assert.Equal(t, "", candidateText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", candidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}))

	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Hello "}, {Text: ""}, {Text: "world"}}},
		}},
	}
	assert.Equal(t, "Hello world", candidateText(result))
}

func TestOpenAIGenerator(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "A summary."}}]
		}`))
	}))
	defer server.Close()

	generator := NewOpenAIGenerator("test-key", "gpt-4o-mini", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))

	text, err := generator.Generate(context.Background(), "Summarize: hi")
	require.NoError(t, err)
	assert.Equal(t, "A summary.", text)
	assert.Contains(t, body, `"model":"gpt-4o-mini"`)
	assert.Contains(t, body, "Summarize: hi")
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("gemini requires key", func(t *testing.T) {
		_, err := New(ctx, utils.NewConfig(nil))
		assert.ErrorContains(t, err, "GEMINI_API_KEY")
	})

	t.Run("gemini legacy key name", func(t *testing.T) {
		client, err := New(ctx, utils.NewConfig(map[string]string{"API_KEY_GEMINI": "key"}))
		require.NoError(t, err)
		generator, ok := client.generator.(*GeminiGenerator)
		require.True(t, ok)
		assert.Equal(t, DefaultGeminiModel, generator.model)
	})

	t.Run("openai", func(t *testing.T) {
		client, err := New(ctx, utils.NewConfig(map[string]string{
			"INSIGHT_BACKEND": "openai",
			"OPENAI_API_KEY":  "key",
			"INSIGHT_MODEL":   "gpt-4.1",
		}))
		require.NoError(t, err)
		generator, ok := client.generator.(*OpenAIGenerator)
		require.True(t, ok)
		assert.Equal(t, "gpt-4.1", generator.model)
	})

	t.Run("bad prompts path", func(t *testing.T) {
		_, err := New(ctx, utils.NewConfig(map[string]string{
			"INSIGHT_BACKEND":      "openai",
			"OPENAI_API_KEY":       "key",
			"INSIGHT_PROMPTS_PATH": filepath.Join(t.TempDir(), "missing.yaml"),
		}))
		assert.ErrorContains(t, err, "failed to read prompts file")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(ctx, utils.NewConfig(map[string]string{"INSIGHT_BACKEND": "oracle"}))
		assert.ErrorContains(t, err, "unsupported INSIGHT_BACKEND")
	})
}
