/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON schemas from Go types for tool parameters and
// structured model output.
package schema

import "github.com/invopop/jsonschema"

// reflector inlines every definition so the schema can be handed to a model
// as-is. Only fields tagged `jsonschema:"required"` are required.
var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
}

// Reflect returns the JSON schema of v.
func Reflect(v any) *jsonschema.Schema {
	return reflector.Reflect(v)
}

// ReflectType returns the JSON schema of T.
func ReflectType[T any]() *jsonschema.Schema {
	var zero T
	return Reflect(&zero)
}

// Object returns an empty object schema, for tools without parameters.
func Object() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
}
