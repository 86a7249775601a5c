// Package bedrocktest provides a recording Bedrock runtime double for tests.
package bedrocktest

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"pdfchat/internal/bedrockclient"
)

var _ bedrockclient.Invoker = (*Fake)(nil)

// Fake is an in-memory Invoker. It records every request body and
// answers with Response, or Err when set.
type Fake struct {
	Response any
	Err      error

	ModelIDs []string
	Bodies   []map[string]any
}

// InvokeModel records the request and returns the configured response.
func (f *Fake) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.ModelIDs = append(f.ModelIDs, aws.ToString(params.ModelId))
	var body map[string]any
	if err := json.Unmarshal(params.Body, &body); err != nil {
		return nil, err
	}
	f.Bodies = append(f.Bodies, body)
	if f.Err != nil {
		return nil, f.Err
	}
	out, err := json.Marshal(f.Response)
	if err != nil {
		return nil, err
	}
	return &bedrockruntime.InvokeModelOutput{Body: out}, nil
}
