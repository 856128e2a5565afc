// Package docs registers the smskit-service swagger document.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/classify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["classifier"],
                "summary": "Classify a message body",
                "parameters": [
                    {
                        "description": "Message body",
                        "name": "message",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.ClassifyRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/classifier.Verdict"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/methods": {
            "get": {
                "produces": ["application/json"],
                "tags": ["methods"],
                "summary": "List supported methods",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.MethodsResponse"}}
                }
            }
        },
        "/methods/{method}": {
            "post": {
                "description": "Runs the named method with a JSON object of arguments and returns its raw result",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["methods"],
                "summary": "Invoke a plugin method",
                "parameters": [
                    {"type": "string", "description": "Method name", "name": "method", "in": "path", "required": true},
                    {"description": "Method arguments", "name": "args", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/permission": {
            "get": {
                "description": "Reports granted, denied or notDetermined, plus the outstanding request if one is waiting for a decision",
                "produces": ["application/json"],
                "tags": ["permission"],
                "summary": "Current SMS permission state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PermissionStatus"}}
                }
            }
        },
        "/permission/requests": {
            "post": {
                "description": "Blocks until the request is decided or times out",
                "produces": ["application/json"],
                "tags": ["permission"],
                "summary": "Request the SMS permission",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PermissionRequestResult"}},
                    "408": {"description": "Request Timeout", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/permission/requests/{id}/decision": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["permission"],
                "summary": "Decide an outstanding permission request",
                "parameters": [
                    {"type": "string", "description": "Request ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Decision",
                        "name": "decision",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.DecisionRequest"}
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/platform/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["platform"],
                "summary": "Host platform version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PlatformVersionResponse"}}
                }
            }
        },
        "/sms": {
            "get": {
                "description": "Newest first, at most 100 records",
                "produces": ["application/json"],
                "tags": ["sms"],
                "summary": "Read the inbox",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/sms.RawMessage"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/sms/query": {
            "get": {
                "description": "Variables: address, body, date, type, is_transaction",
                "produces": ["application/json"],
                "tags": ["sms"],
                "summary": "Filter the inbox with an expression",
                "parameters": [
                    {"type": "string", "description": "Boolean filter expression", "name": "filter", "in": "query", "required": true},
                    {"type": "integer", "description": "Maximum records (default 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/sms.RawMessage"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/sms/simple": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sms"],
                "summary": "Read the inbox in simplified form",
                "parameters": [
                    {"type": "integer", "description": "Maximum records (default 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/sms.SimplifiedMessage"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/sms/transactions": {
            "get": {
                "description": "Scans the newest 500 records and keeps those the classifier accepts",
                "produces": ["application/json"],
                "tags": ["sms"],
                "summary": "Read transaction messages",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/sms.RawMessage"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ClassifyRequest": {
            "type": "object",
            "required": ["body"],
            "properties": {"body": {"type": "string"}}
        },
        "api.DecisionRequest": {
            "type": "object",
            "required": ["granted"],
            "properties": {"granted": {"type": "boolean"}}
        },
        "api.MethodsResponse": {
            "type": "object",
            "properties": {"methods": {"type": "array", "items": {"type": "string"}}}
        },
        "api.PendingRequest": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "permission": {"type": "string"}
            }
        },
        "api.PermissionRequestResult": {
            "type": "object",
            "properties": {"state": {"type": "string"}}
        },
        "api.PermissionStatus": {
            "type": "object",
            "properties": {
                "pending_request": {"$ref": "#/definitions/api.PendingRequest"},
                "state": {"type": "string"}
            }
        },
        "api.PlatformVersionResponse": {
            "type": "object",
            "properties": {"version": {"type": "string"}}
        },
        "classifier.Verdict": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "isTransaction": {"type": "boolean"},
                "keyword": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "object", "additionalProperties": true},
                "error": {"type": "string"},
                "error_code": {"type": "string"}
            }
        },
        "sms.RawMessage": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "body": {"type": "string"},
                "date": {"type": "integer"},
                "type": {"type": "integer"}
            }
        },
        "sms.SimplifiedMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "sender": {"type": "string"},
                "timestamp": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "smskit Service API",
	Description:      "Read-only SMS inbox bridge: permission flow, inbox listings and transaction classification",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
