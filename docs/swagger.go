// Package docs holds the OpenAPI description served at /swagger.
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
        "/session/login": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Log in",
                "parameters": [{"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/session": {
            "get": {"produces": ["application/json"], "tags": ["session"], "summary": "Session state", "responses": {"200": {"description": "OK"}}}
        },
        "/session/logout": {
            "post": {"tags": ["session"], "summary": "Log out", "responses": {"204": {"description": "No Content"}}}
        },
        "/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "string", "description": "Day (YYYY-MM-DD)", "name": "date", "in": "query"},
                    {"type": "string", "description": "not_started, in_progress, done or postponed", "name": "status", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Create a task",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/tasks/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Update a task",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Delete a task",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/tasks/{id}/move": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Move a task to another column",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/boards": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["boards"], "summary": "List boards", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["boards"], "summary": "Create a board", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/boards/{id}/groups": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["boards"],
                "summary": "Add a column",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/view": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["boards"], "summary": "Board view", "responses": {"200": {"description": "OK"}}}
        },
        "/drag/end": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["drag"], "summary": "Drop", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/plans/{date}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["plans"],
                "summary": "Save the plan of a day",
                "parameters": [{"type": "string", "name": "date", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/permissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["teams"],
                "summary": "Check a permission",
                "parameters": [{"type": "string", "name": "required", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        }
    },
    "definitions": {
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Planner Companion API",
	Description:      "Local companion for the planner service: session, boards, drag and drop, plans and teams.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
