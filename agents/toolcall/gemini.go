/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// Gemini renders d as a Gemini function declaration.
func (d Descriptor) Gemini() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  GeminiSchema(d.parameters()),
	}
}

// GeminiTools renders every registered descriptor for a Gemini request.
func (r *Registry) GeminiTools() []*genai.Tool {
	descriptors := r.Descriptors()
	decls := make([]*genai.FunctionDeclaration, 0, len(descriptors))
	for _, d := range descriptors {
		decls = append(decls, d.Gemini())
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// GeminiSchema converts a JSON schema into the subset Gemini accepts.
func GeminiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        geminiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
	}
	for _, v := range s.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(v))
	}
	if s.Items != nil {
		out.Items = GeminiSchema(s.Items)
	}
	if s.Properties != nil && s.Properties.Len() > 0 {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = GeminiSchema(pair.Value)
			out.PropertyOrdering = append(out.PropertyOrdering, pair.Key)
		}
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}

// FromGemini converts a Gemini function call into a Call.
func FromGemini(fc *genai.FunctionCall) Call {
	return Call{ID: fc.ID, Name: fc.Name, Args: fc.Args}
}

// GeminiResponse wraps a tool result for a Gemini function response.
func GeminiResponse(call Call, result any, err error) *genai.FunctionResponse {
	response := map[string]any{"result": result}
	if err != nil {
		response = ErrorResult(err)
	}
	return &genai.FunctionResponse{ID: call.ID, Name: call.Name, Response: response}
}
