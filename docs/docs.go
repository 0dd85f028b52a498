// Package docs registers the OpenAPI description of the Billed HTTP API.
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
        "/api/v1/bills": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Bills of the authenticated user, latest first.",
                "produces": ["application/json"],
                "tags": ["bills"],
                "summary": "List bills",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.billListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/employee/bill/new/file": {
            "post": {
                "description": "Validates the extension (jpg, jpeg, png) and opens a draft bill for it.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["bills"],
                "summary": "Upload a receipt",
                "parameters": [
                    {"type": "file", "description": "Receipt image", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ReceiptUpload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/bills/{id}/decision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Accepts or refuses a pending bill. Only pending bills can be reviewed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Review a bill",
                "parameters": [
                    {"type": "string", "description": "Bill ID", "name": "id", "in": "path", "required": true},
                    {"description": "Decision", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.decisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Bill"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.Bill": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "type": {"type": "string"},
                "name": {"type": "string"},
                "date": {"type": "string"},
                "amount": {"type": "integer"},
                "vat": {"type": "integer"},
                "pct": {"type": "integer"},
                "commentary": {"type": "string"},
                "fileUrl": {"type": "string"},
                "fileName": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "accepted", "refused"]},
                "commentAdmin": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "domain.ReceiptUpload": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "fileUrl": {"type": "string"},
                "fileName": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "type": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handler.billListResponse": {
            "type": "object",
            "properties": {
                "bills": {"type": "array", "items": {"$ref": "#/definitions/handler.billResponse"}}
            }
        },
        "handler.billResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "type": {"type": "string"},
                "name": {"type": "string"},
                "date": {"type": "string"},
                "formattedDate": {"type": "string"},
                "amount": {"type": "integer"},
                "vat": {"type": "integer"},
                "pct": {"type": "integer"},
                "commentary": {"type": "string"},
                "fileUrl": {"type": "string"},
                "fileName": {"type": "string"},
                "status": {"type": "string"},
                "commentAdmin": {"type": "string"}
            }
        },
        "handler.decisionRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["accepted", "refused"]},
                "comment": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password", "type"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "type": {"type": "string", "enum": ["Employee", "Admin"]}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"}
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
	Title:            "Billed API",
	Description:      "Expense reports: employee bills, receipts and admin review.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
