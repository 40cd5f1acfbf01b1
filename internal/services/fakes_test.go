package services

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// fakeGenerator answers by prompt kind, detected from the prompt wording.
type fakeGenerator struct {
	mu        sync.Mutex
	calls     []GenerateOptions
	responses map[string]string
	errs      map[string]error
	block     bool
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		responses: map[string]string{
			"response": "Thanks so much for the kind words!",
			"summary":  "Happy customer praising fast delivery.",
			"actions":  `["Thank the courier team", "Share on social media"]`,
		},
		errs: map[string]error{},
	}
}

func promptKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "customer service assistant"):
		return "response"
	case strings.Contains(prompt, "JSON array"):
		return "actions"
	default:
		return "summary"
	}
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Completion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	kind := promptKind(prompt)
	content, err := f.responses[kind], f.errs[kind]
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return &Completion{Content: content, PromptTokens: 10, CompletionTokens: 5}, nil
}

func (f *fakeGenerator) Provider() string { return "fake" }
func (f *fakeGenerator) Model() string    { return "fake-model-1" }

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var errUpstream = errors.New("upstream unavailable")
