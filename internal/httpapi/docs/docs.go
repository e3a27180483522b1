// Package docs registers the devmem OpenAPI document with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "devmem maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/probe": {
            "post": {
                "description": "Runs a roundtrip or grow workload on the device. Probes are serialized; a saturated queue answers 429.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["probe"],
                "summary": "Run a device probe",
                "parameters": [
                    {
                        "description": "Probe request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.ProbeRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ProbeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "507": {"description": "Insufficient Storage", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["status"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "ready", "schema": {"type": "string"}},
                    "503": {"description": "loading", "schema": {"type": "string"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Device and probe status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.ProbeRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "example": "roundtrip"},
                "dtype": {"type": "string", "example": "float32"},
                "elems": {"type": "integer", "example": 1048576},
                "sizes": {"type": "array", "items": {"type": "integer"}, "example": [1024, 512, 4096, 4096]}
            }
        },
        "types.ProbeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "probe-7"},
                "kind": {"type": "string", "example": "roundtrip"},
                "dtype": {"type": "string", "example": "float32"},
                "runtime": {"type": "string", "example": "host"},
                "elems": {"type": "integer", "example": 1048576},
                "bytes_copied": {"type": "integer", "example": 8388608},
                "allocations": {"type": "integer", "example": 2},
                "frees": {"type": "integer", "example": 2},
                "capacity": {"type": "integer", "example": 4096},
                "verified": {"type": "boolean", "example": true},
                "mismatches": {"type": "integer", "example": 0},
                "duration_ms": {"type": "integer", "example": 3}
            }
        },
        "types.RuntimeStatus": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "host"},
                "device": {"type": "string", "example": "host"},
                "description": {"type": "string"},
                "total_bytes": {"type": "integer", "example": 8589934592}
            }
        },
        "types.MemoryStatus": {
            "type": "object",
            "properties": {
                "allocations": {"type": "integer"},
                "frees": {"type": "integer"},
                "failures": {"type": "integer"},
                "live_buffers": {"type": "integer"},
                "bytes_in_use": {"type": "integer"},
                "peak_bytes": {"type": "integer"},
                "htod_bytes": {"type": "integer"},
                "dtoh_bytes": {"type": "integer"},
                "budget_mb": {"type": "integer", "example": 8192},
                "margin_mb": {"type": "integer", "example": 512}
            }
        },
        "types.QueueStatus": {
            "type": "object",
            "properties": {
                "queue_len": {"type": "integer"},
                "inflight": {"type": "integer"},
                "max_queue_depth": {"type": "integer", "example": 32}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "ready"},
                "runtime": {"$ref": "#/definitions/types.RuntimeStatus"},
                "memory": {"$ref": "#/definitions/types.MemoryStatus"},
                "queue": {"$ref": "#/definitions/types.QueueStatus"},
                "probes_total": {"type": "integer", "example": 42},
                "probe_failures": {"type": "integer", "example": 1},
                "last_error": {"type": "string"},
                "uptime_seconds": {"type": "integer", "example": 3600},
                "server_time_unix": {"type": "integer", "example": 1700000000}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "devmem API",
	Description:      "HTTP API for device memory status and probes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
