// Package docs registers the OpenAPI document served under /swagger. The
// document is maintained by hand; keep it in step with the handler
// annotations.
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
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "status, session_active"}}}
        },
        "/api/login": {
            "post": {"tags": ["auth"], "summary": "Log in and open a session",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true,
                    "schema": {"$ref": "#/definitions/handlers.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LoginResponse"}},
                    "400": {"description": "Invalid input data"},
                    "401": {"description": "Invalid credentials"},
                    "429": {"description": "Too many login attempts"},
                    "500": {"description": "Internal server error"}}}
        },
        "/api/v1/logout": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Close the session",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/device/connect": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["device"], "summary": "Connect to the device",
                "responses": {"200": {"description": "message, state"}, "502": {"description": "device message"}}}
        },
        "/api/v1/state": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["device"], "summary": "Session state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SessionState"}}}}
        },
        "/api/v1/telemetry": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["device"], "summary": "Telemetry samples",
                "parameters": [
                    {"type": "integer", "name": "since", "in": "query"},
                    {"type": "integer", "name": "epoch", "in": "query"}],
                "responses": {"200": {"description": "samples, cursor, reset"}, "400": {"description": "Bad cursor"}}}
        },
        "/api/v1/ws": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["device"], "summary": "Telemetry stream (websocket)",
                "parameters": [
                    {"type": "string", "name": "interval", "in": "query"},
                    {"type": "integer", "name": "interval_ms", "in": "query"},
                    {"type": "string", "name": "token", "in": "query"}],
                "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/api/v1/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Get the profile queue",
                "responses": {"200": {"description": "steps, hints"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Clear the profile queue",
                "responses": {"200": {"description": "steps, hints"}}}
        },
        "/api/v1/profile/steps": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Append a step",
                "responses": {"201": {"description": "index, steps"}}}
        },
        "/api/v1/profile/steps/{index}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Edit a step field",
                "parameters": [
                    {"type": "integer", "name": "index", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true,
                        "schema": {"$ref": "#/definitions/handlers.UpdateStepRequest"}}],
                "responses": {"200": {"description": "steps, hints"}, "400": {"description": "Bad index or field"}}}
        },
        "/api/v1/process/start": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["process"], "summary": "Submit the queue and start a run",
                "responses": {"200": {"description": "running"}, "409": {"description": "Not connected or already running"},
                    "502": {"description": "Device rejected the profile"}}}
        },
        "/api/v1/process/stop": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["process"], "summary": "Stop the run",
                "responses": {"200": {"description": "stopped"}, "409": {"description": "Not running"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["history"], "summary": "List audit events",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"enum": ["CONNECT","START","STOP","ERROR","LOGIN","LOGOUT"], "type": "string", "name": "type", "in": "query"}],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad filter"}}}
        },
        "/api/v1/runs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["history"], "summary": "List runs",
                "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "count, runs"}, "400": {"description": "Bad limit"}}}
        }
    },
    "definitions": {
        "handlers.loginRequest": {"type": "object", "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "handlers.LoginResponse": {"type": "object",
            "properties": {"message": {"type": "string"}, "token": {"type": "string"}, "session_id": {"type": "string"}}},
        "handlers.UpdateStepRequest": {"type": "object", "required": ["field"],
            "properties": {"field": {"type": "string", "example": "targetTemperature"}, "value": {"example": "80"}}},
        "models.ThermalStep": {"type": "object",
            "properties": {
                "entryTemperature": {"type": "number"},
                "targetTemperature": {"type": "number"},
                "holdMinutes": {"type": "number"},
                "lightIntensity": {"type": "number"}}},
        "models.SessionState": {"type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "connection": {"type": "string", "enum": ["DISCONNECTED", "CONNECTED"]},
                "run": {"type": "string", "enum": ["IDLE", "STARTING", "RUNNING"]},
                "error": {"type": "string"},
                "ambient_c": {"type": "number"},
                "profile": {"type": "array", "items": {"$ref": "#/definitions/models.ThermalStep"}},
                "active_profile": {"type": "array", "items": {"$ref": "#/definitions/models.ThermalStep"}},
                "sample_count": {"type": "integer"},
                "updated_at": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Heater Control API",
	Description:      "Operator sessions for a thermal-profile heater: build a profile, start a run, stream telemetry.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
