package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Scheduler API",
        "description": "Session scheduling, conflict detection and resource recommendations for course rounds",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Rounds", "description": "Course rounds and their lock state"},
        {"name": "Sessions", "description": "Session edits, conflict checks, sequencing and recommendations"},
        {"name": "Calendar", "description": "Working-day lookups against the holiday table"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "Database unreachable"}}
            }
        },
        "/api/v1/rounds": {
            "post": {
                "tags": ["Rounds"],
                "summary": "Create a course round",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoundRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rounds/{id}": {
            "get": {
                "tags": ["Rounds"],
                "summary": "Get a round with its sessions",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rounds/{id}/lock": {
            "post": {
                "tags": ["Rounds"],
                "summary": "Lock a round so its sessions can no longer change",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/rounds/{id}/unlock": {
            "post": {
                "tags": ["Rounds"],
                "summary": "Unlock a round for further edits",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/rounds/{id}/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Add a session to a round",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created; data.conflicts lists warnings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocked by conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Round locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rounds/{id}/sessions/{sessionId}": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Edit a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocked by conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Round locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Remove a session and renumber the rest",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "Deleted"}, "423": {"description": "Round locked"}}
            }
        },
        "/api/v1/rounds/{id}/sessions/conflicts": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Check a draft session for conflicts without saving it",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/rounds/{id}/sessions/reorder": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Move a session within the round sequence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReorderSessionsRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/rounds/{id}/sessions/recalculate": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Re-date every session on consecutive working days from an anchor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/RecalculateDatesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK; meta.calendarDegraded flags the weekends-only fallback", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unparseable anchor date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rounds/{id}/recommendations": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Rank available instructors and classrooms for a slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecommendRequest"}}
                ],
                "responses": {"200": {"description": "OK; meta.cached reports a cache hit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/calendar/working-days": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List the next working days after a date",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "days", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "CreateRoundRequest": {
            "type": "object",
            "required": ["courseId", "name", "startDate"],
            "properties": {
                "courseId": {"type": "string"},
                "name": {"type": "string"},
                "startDate": {"type": "string", "format": "date"}
            }
        },
        "SessionRequest": {
            "type": "object",
            "required": ["date", "startTime", "endTime", "subjectId"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "12:00"},
                "instructorId": {"type": "string"},
                "classroomId": {"type": "string"},
                "subjectId": {"type": "string"},
                "status": {"type": "string", "enum": ["scheduled", "in_progress", "completed", "cancelled", "rescheduled"]},
                "force": {"type": "boolean"}
            }
        },
        "ConflictCheckRequest": {
            "type": "object",
            "required": ["date", "startTime", "endTime"],
            "properties": {
                "sessionId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "instructorId": {"type": "string"},
                "classroomId": {"type": "string"},
                "checkCohort": {"type": "boolean"}
            }
        },
        "ReorderSessionsRequest": {
            "type": "object",
            "required": ["sessionId"],
            "properties": {
                "sessionId": {"type": "string"},
                "toIndex": {"type": "integer"},
                "recalculate": {"type": "boolean"}
            }
        },
        "RecalculateDatesRequest": {
            "type": "object",
            "properties": {
                "anchorDate": {"type": "string", "example": "next monday"}
            }
        },
        "RecommendRequest": {
            "type": "object",
            "required": ["date", "startTime", "endTime", "subjectId"],
            "properties": {
                "sessionId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "subjectId": {"type": "string"},
                "headcount": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
