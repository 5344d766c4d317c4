package collab

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mitchellgordon95/live-language/types"
)

// Gemini implements Understander and Narrator over one Gemini model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini dials the Gemini API. Close must be called when done.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Understand implements Understander.
func (g *Gemini) Understand(ctx context.Context, utterance string, snap Snapshot) (UnderstandResult, error) {
	body, err := g.generate(ctx, buildUnderstandPrompt(utterance, snap))
	if err != nil {
		return UnderstandResult{}, &CallError{Collaborator: "understander", Err: err}
	}
	res, err := parseUnderstand(body)
	if err != nil {
		return UnderstandResult{}, &CallError{Collaborator: "understander", Err: err}
	}
	return res, nil
}

// Narrate implements Narrator.
func (g *Gemini) Narrate(ctx context.Context, utterance string, applied []types.Mutation, snap Snapshot) (NarrationResult, error) {
	body, err := g.generate(ctx, buildNarratePrompt(utterance, applied, snap))
	if err != nil {
		return NarrationResult{}, &CallError{Collaborator: "narrator", Err: err}
	}
	res, err := parseNarrate(body)
	if err != nil {
		return NarrationResult{}, &CallError{Collaborator: "narrator", Err: err}
	}
	return res, nil
}

// generate runs one prompt and returns the first text part.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}
