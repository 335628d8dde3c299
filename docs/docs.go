// Package docs holds the OpenAPI document served at /swagger.
//
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/users": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create a user",
                "operationId": "createUser",
                "parameters": [
                    {"description": "User attributes", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.UserEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Show a user",
                "operationId": "getUser",
                "parameters": [
                    {"type": "string", "description": "User external id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UserEnvelope"}},
                    "404": {"description": "Missing: user", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Update a user",
                "operationId": "updateUser",
                "parameters": [
                    {"type": "string", "description": "Caller external id", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "User external id", "name": "id", "in": "path", "required": true},
                    {"description": "Attributes to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UserEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}},
                    "403": {"description": "No access", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}},
                    "404": {"description": "Missing: user", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}}
                }
            }
        },
        "/projects": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "List a user's projects (paginated)",
                "operationId": "listProjects",
                "parameters": [
                    {"type": "string", "description": "Owner external id", "name": "user", "in": "query", "required": true},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProjectListEnvelope"}},
                    "404": {"description": "Missing: user", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Create a project",
                "operationId": "createProject",
                "parameters": [
                    {"type": "string", "description": "Caller external id", "name": "X-User-ID", "in": "header", "required": true},
                    {"description": "Project attributes", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateProjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.ProjectEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}},
                    "403": {"description": "Authentication required", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}}
                }
            }
        },
        "/projects/{project}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Show a project",
                "operationId": "getProject",
                "parameters": [
                    {"type": "string", "description": "Project external id", "name": "project", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProjectEnvelope"}},
                    "404": {"description": "Missing: project", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}}
                }
            }
        },
        "/lookup": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Lookup"],
                "summary": "Resolve a user and/or a project",
                "operationId": "lookup",
                "parameters": [
                    {"type": "string", "description": "User external id", "name": "user", "in": "query"},
                    {"type": "string", "description": "Project external id", "name": "project", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LookupEnvelope"}},
                    "404": {"description": "Missing: user or project", "schema": {"$ref": "#/definitions/handlers.ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.Debug": {
            "type": "object",
            "properties": {
                "exception_type": {"type": "string"},
                "file": {"type": "string"},
                "line": {"type": "integer"},
                "message": {"type": "string"},
                "trace": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handlers.ErrorEntry": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "example": "email"},
                "message": {"type": "string", "example": "Missing: user"}
            }
        },
        "handlers.ErrorEnvelope": {
            "type": "object",
            "properties": {
                "debug": {"$ref": "#/definitions/handlers.Debug"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/handlers.ErrorEntry"}}
            }
        },
        "handlers.UserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ada@example.com"},
                "name": {"type": "string", "example": "Ada Lovelace"},
                "timezone": {"type": "string", "example": "Europe/London"}
            }
        },
        "handlers.UserView": {
            "type": "object",
            "properties": {
                "admin": {"type": "boolean"},
                "created_at": {"type": "string"},
                "email": {"type": "string", "example": "ada@example.com"},
                "id": {"type": "string", "example": "9f2c4e1a0b7d3c58"},
                "name": {"type": "string", "example": "Ada Lovelace"},
                "timezone": {"type": "string", "example": "Europe/London"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.UserEnvelope": {
            "type": "object",
            "properties": {"results": {"$ref": "#/definitions/handlers.UserView"}}
        },
        "handlers.CreateProjectRequest": {
            "type": "object",
            "properties": {"name": {"type": "string", "example": "Apollo"}}
        },
        "handlers.ProjectView": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string", "example": "4b1e0c9d2a7f6e35"},
                "name": {"type": "string", "example": "Apollo"},
                "owner": {"type": "string", "example": "9f2c4e1a0b7d3c58"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.ProjectEnvelope": {
            "type": "object",
            "properties": {"results": {"$ref": "#/definitions/handlers.ProjectView"}}
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handlers.ProjectList": {
            "type": "object",
            "properties": {
                "pagination": {"$ref": "#/definitions/handlers.Pagination"},
                "projects": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProjectView"}}
            }
        },
        "handlers.ProjectListEnvelope": {
            "type": "object",
            "properties": {"results": {"$ref": "#/definitions/handlers.ProjectList"}}
        },
        "handlers.LookupResults": {
            "type": "object",
            "properties": {
                "project": {"$ref": "#/definitions/handlers.ProjectView"},
                "user": {"$ref": "#/definitions/handlers.UserView"}
            }
        },
        "handlers.LookupEnvelope": {
            "type": "object",
            "properties": {"results": {"$ref": "#/definitions/handlers.LookupResults"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "go-api-base",
	Description:      "JSON API with a uniform error envelope and external-id resolution.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
