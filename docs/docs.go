// Package docs holds the OpenAPI document served under /swagger. It is
// maintained by hand alongside the handler annotations.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Exchanges email and password for a session token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logs a user in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.AuthResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the user the bearer token belongs to.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PublicUser"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "description": "Registers a user and returns a session token for it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Creates an account",
                "parameters": [
                    {"description": "Account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ports.AuthResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            }
        },
        "/api/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the caller's tasks, oldest first.",
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Lists tasks",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Task"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Creates a task",
                "parameters": [
                    {"description": "Task", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            }
        },
        "/api/tasks/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Changes the status and/or title of one of the caller's tasks.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Updates a task",
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.updateTaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Deletes a task",
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.messageResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.PublicUser": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "domain.Task": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "owner": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "completed"]},
                "title": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "http.createTaskRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}
            }
        },
        "http.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "http.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "http.registerRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "http.updateTaskRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "ports.AuthResult": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.PublicUser"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tasks API",
	Description:      "Accounts and personal task lists behind bearer tokens.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
