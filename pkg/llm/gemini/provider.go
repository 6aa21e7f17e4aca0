package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-writing-be/pkg/llm"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1/models/%s:generateContent"

type geminiParts struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []*geminiParts `json:"parts"`
	Role  string         `json:"role"`
}

type geminiRequest struct {
	Contents []*geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

const (
	roleUser  = "user"
	roleModel = "model"
)

type GeminiProvider struct {
	ApiKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.SuggestionProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (g *GeminiProvider) Suggest(ctx context.Context, req *llm.SuggestionRequest, opts ...llm.Option) (*llm.SuggestionResult, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}
	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	// Gemini has no system role on the v1 endpoint; the instruction goes in
	// as a user turn acknowledged by a model turn.
	payload := geminiRequest{
		Contents: []*geminiContent{
			{Parts: []*geminiParts{{Text: llm.SystemInstruction}}, Role: roleUser},
			{Parts: []*geminiParts{{Text: "Understood. Send the sentence."}}, Role: roleModel},
			{Parts: []*geminiParts{{Text: llm.NewPromptBuilder(req).Build()}}, Role: roleUser},
		},
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf(defaultEndpoint, model),
		bytes.NewBuffer(payloadJson),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-goog-api-key", g.ApiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return nil, err
	}
	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty candidates in gemini response")
	}

	// Clean the markdown wrapper the model sometimes adds around JSON.
	responseBytes := []byte(geminiRes.Candidates[0].Content.Parts[0].Text)
	responseBytes = bytes.TrimSpace(responseBytes)
	responseBytes = bytes.TrimPrefix(responseBytes, []byte("```json"))
	responseBytes = bytes.TrimPrefix(responseBytes, []byte("```"))
	responseBytes = bytes.TrimSuffix(responseBytes, []byte("```"))
	responseBytes = bytes.TrimSpace(responseBytes)

	var result llm.SuggestionResult
	if err := json.Unmarshal(responseBytes, &result); err != nil {
		return nil, fmt.Errorf("parse error: %w | raw: %s", err, string(responseBytes))
	}
	return &result, nil
}
