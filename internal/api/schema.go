package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Success payloads are validated against these schemas before decoding.
// A response missing required fields fails the triggering call with a
// malformed-response error instead of silently producing zero values.

const credentialsSchema = `{
	"type": "object",
	"required": ["token", "username"],
	"properties": {
		"token": {"type": "string", "minLength": 1},
		"username": {"type": "string", "minLength": 1},
		"user_id": {"type": "string"}
	}
}`

const conversationsSchema = `{
	"type": "object",
	"required": ["conversations"],
	"properties": {
		"conversations": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "title", "updated_at"],
				"properties": {
					"id": {"type": "string"},
					"title": {"type": "string"},
					"updated_at": {"type": "string"}
				}
			}
		}
	}
}`

const conversationDetailSchema = `{
	"type": "object",
	"required": ["messages"],
	"properties": {
		"messages": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["role", "content"],
				"properties": {
					"role": {"type": "string"},
					"content": {"type": "string"}
				}
			}
		}
	}
}`

const chatReplySchema = `{
	"type": "object",
	"required": ["response"],
	"properties": {
		"response": {"type": "string"},
		"conversation_id": {"type": ["string", "null"]}
	}
}`

func validatePayload(schema string, body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("payload failed validation: %s", strings.Join(msgs, "; "))
	}
	return nil
}
