// Package bedrock embeds text with Amazon Titan embedding models on Bedrock.
package bedrock

import (
	"context"
	"errors"

	"pdfchat/internal/bedrockclient"
	"pdfchat/internal/embedding"
)

// DefaultModel is the Titan text embedding model.
const DefaultModel = "amazon.titan-embed-text-v1"

var _ embedding.Embedder = (*Embedder)(nil)

// Embedder calls a Titan embedding model once per text.
type Embedder struct {
	client  bedrockclient.Invoker
	modelID string
}

// NewEmbedder wraps client. An empty modelID selects DefaultModel.
func NewEmbedder(client bedrockclient.Invoker, modelID string) *Embedder {
	if modelID == "" {
		modelID = DefaultModel
	}
	return &Embedder{client: client, modelID: modelID}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "bedrock" }

// Embed returns the Titan embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	req := struct {
		InputText string `json:"inputText"`
	}{InputText: text}
	var resp struct {
		Embedding           []float64 `json:"embedding"`
		InputTextTokenCount int       `json:"inputTextTokenCount"`
	}
	if err := bedrockclient.InvokeJSON(ctx, e.client, e.modelID, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("empty embedding")
	}
	return resp.Embedding, nil
}
