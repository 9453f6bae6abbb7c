/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/compute/metadata"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/openai/openai-go"
	"golang.org/x/oauth2/google"
	"google.golang.org/genai"
)

// NewVertex returns a judge served by Vertex AI. Claude models use the
// Anthropic SDK and Gemini models the Gen AI SDK.
func NewVertex(ctx context.Context, projectID, region, model string, opts ...Option) (Interface, error) {
	lower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(lower, "claude-"):
		client := anthropic.NewClient(vertex.WithGoogleAuth(ctx, region, projectID))
		return NewClaude(client, model, opts...)

	case strings.HasPrefix(lower, "gemini-"):
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Project:  projectID,
			Location: region,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			return nil, fmt.Errorf("creating Gen AI client: %w", err)
		}
		return NewGemini(client, model, opts...)
	}
	return nil, fmt.Errorf("unsupported model: %s (expected claude-* or gemini-*)", model)
}

// Open returns the judge for a provider-qualified model name:
//
//	openai/gpt-4.1              OpenAI, keyed by OPENAI_API_KEY
//	anthropic/claude-sonnet-4-5 Anthropic, keyed by ANTHROPIC_API_KEY
//	vertex/gemini-2.5-pro       Vertex AI
//
// Names without a provider are served by Vertex AI. An empty projectID is
// detected with DetectProject.
func Open(ctx context.Context, name, projectID, region string, opts ...Option) (Interface, error) {
	provider, model, ok := strings.Cut(name, "/")
	if !ok {
		provider, model = "vertex", name
	}

	switch provider {
	case "openai":
		return NewOpenAI(openai.NewClient(), model, opts...)
	case "anthropic":
		return NewClaude(anthropic.NewClient(), model, opts...)
	case "vertex":
		if projectID == "" {
			var err error
			if projectID, err = DetectProject(ctx); err != nil {
				return nil, err
			}
		}
		return NewVertex(ctx, projectID, region, model, opts...)
	}
	return nil, fmt.Errorf("unsupported judge provider %q in %q", provider, name)
}

// DetectProject finds the Google Cloud project from GOOGLE_CLOUD_PROJECT,
// the GCE metadata server or Application Default Credentials, in that
// order.
func DetectProject(ctx context.Context) (string, error) {
	if projectID := os.Getenv("GOOGLE_CLOUD_PROJECT"); projectID != "" {
		return projectID, nil
	}
	if metadata.OnGCE() {
		if projectID, err := metadata.ProjectIDWithContext(ctx); err == nil && projectID != "" {
			return projectID, nil
		}
	}
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err == nil && creds.ProjectID != "" {
		return creds.ProjectID, nil
	}
	return "", fmt.Errorf("unable to detect Google Cloud project; set GOOGLE_CLOUD_PROJECT")
}
