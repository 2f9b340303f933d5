// Package docs registers the OpenAPI description of the agent's HTTP API
// with swag, which the swagger UI in the HTTP transport serves.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/check": {
            "post": {
                "description": "Runs one text-to-speech action using the configured options without an incoming event.",
                "produces": ["application/json"],
                "tags": ["agent"],
                "summary": "Run the agent once",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/dry_run": {
            "post": {
                "description": "Runs one action, optionally against the posted event, and returns the events it\nwould have emitted. Nothing is sent to the host.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["agent"],
                "summary": "Dry run",
                "parameters": [
                    {
                        "description": "Optional incoming event",
                        "name": "event",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/event.Event"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.DryRunResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/receive": {
            "post": {
                "description": "Runs one text-to-speech action per incoming event. Agent options are interpolated\nagainst each event's payload. Accepts a single event or an array of events.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["agent"],
                "summary": "Receive events",
                "parameters": [
                    {
                        "description": "Incoming events",
                        "name": "events",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/event.Event"}}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Options empty after interpolation", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Provider rejected the request or history lookup failed", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "504": {"description": "Provider unreachable or timed out", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/working": {
            "get": {
                "description": "Reports whether an event was emitted within the expected receive period without errors since.",
                "produces": ["application/json"],
                "tags": ["agent"],
                "summary": "Working state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.WorkingResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.WorkingResponse"}}
                }
            }
        }
    },
    "definitions": {
        "event.Event": {
            "type": "object",
            "properties": {
                "agent": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "payload": {"type": "object", "additionalProperties": true}
            }
        },
        "http.DryRunResponse": {
            "type": "object",
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/event.Event"}}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "problems": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "http.WorkingResponse": {
            "type": "object",
            "properties": {
                "working": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "huginn-tts-agent API",
	Description:      "Text-to-speech agent: converts text through the provider API and emits the provider history record as an event.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
