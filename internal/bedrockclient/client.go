// Package bedrockclient wraps the Bedrock runtime InvokeModel call used by the
// embedding and language-model adapters.
package bedrockclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// Invoker is the subset of the Bedrock runtime client the adapters need.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// New loads the shared AWS configuration (environment, profile, IMDS) and
// returns a runtime client for region.
func New(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	// Failures surface immediately; no SDK retries.
	return bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		o.RetryMaxAttempts = 1
	}), nil
}

// InvokeJSON marshals req, invokes modelID and decodes the response body into out.
func InvokeJSON(ctx context.Context, inv Invoker, modelID string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", modelID, err)
	}
	resp, err := inv.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", modelID, err)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", modelID, err)
	}
	return nil
}
