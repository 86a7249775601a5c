// Package bedrock calls text models hosted on Amazon Bedrock.
package bedrock

import (
	"context"
	"fmt"
	"strings"

	"pdfchat/internal/bedrockclient"
	"pdfchat/internal/llm"
)

var _ llm.Generator = (*Generator)(nil)

// Generator invokes one Bedrock model with fixed decoding parameters. The
// request body follows the model provider, taken from the model id prefix.
type Generator struct {
	client bedrockclient.Invoker
	params llm.Params
}

// NewGenerator validates params and wraps client.
func NewGenerator(client bedrockclient.Invoker, params llm.Params) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	switch provider(params.ModelID) {
	case "meta", "amazon":
	default:
		return nil, fmt.Errorf("unsupported bedrock model provider for %q", params.ModelID)
	}
	return &Generator{client: client, params: params}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	p := g.params
	if provider(p.ModelID) == "amazon" {
		return g.titan(ctx, prompt)
	}
	req := map[string]any{
		"prompt":      prompt,
		"max_gen_len": p.MaxGenLen,
		"temperature": p.Temperature,
		"top_p":       p.TopP,
	}
	var resp struct {
		Generation string `json:"generation"`
		StopReason string `json:"stop_reason"`
	}
	if err := bedrockclient.InvokeJSON(ctx, g.client, p.ModelID, req, &resp); err != nil {
		return "", err
	}
	return resp.Generation, nil
}

func (g *Generator) titan(ctx context.Context, prompt string) (string, error) {
	p := g.params
	req := map[string]any{
		"inputText": prompt,
		"textGenerationConfig": map[string]any{
			"maxTokenCount": p.MaxGenLen,
			"temperature":   p.Temperature,
			"topP":          p.TopP,
		},
	}
	var resp struct {
		Results []struct {
			OutputText string `json:"outputText"`
		} `json:"results"`
	}
	if err := bedrockclient.InvokeJSON(ctx, g.client, p.ModelID, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("%s returned no results", p.ModelID)
	}
	return resp.Results[0].OutputText, nil
}

// provider extracts "meta" from "meta.llama2-70b-chat-v1"; cross-region
// inference ids such as "us.meta.llama3-..." carry a region prefix first.
func provider(modelID string) string {
	parts := strings.Split(modelID, ".")
	if len(parts) > 2 && len(parts[0]) == 2 {
		return parts[1]
	}
	return parts[0]
}
