package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Shift Booking API",
        "description": "Volunteer shift booking: slot catalog, bookings, favorites, admin tooling and unfilled-slot warnings.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Slots", "description": "Weekly slot catalog and week overviews"},
        {"name": "Bookings", "description": "Member bookings"},
        {"name": "Favorites", "description": "Watched slot instances"},
        {"name": "Admin", "description": "Booking management, sweep, roster and audit"}
    ],
    "paths": {
        "/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List weekly slot templates",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/slots/week": {
            "get": {
                "tags": ["Slots"],
                "summary": "Week overview with availability per slot instance",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a slot instance",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not eligible", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/validate": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Preview booking eligibility",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookingRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/bookings/me": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List the caller's bookings, newest date first",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/bookings/{id}": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel one of the caller's bookings",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not owner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}/sick": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Cancel a booking due to illness and alert admins",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}],
                "responses": {"200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/favorites": {
            "get": {
                "tags": ["Favorites"],
                "summary": "List watched slot instances",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Favorites"],
                "summary": "Watch a slot instance",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FavoriteRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Favorites"],
                "summary": "Stop watching a slot instance",
                "parameters": [
                    {"name": "slot", "in": "query", "required": true, "type": "integer"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/admin/bookings": {
            "get": {
                "tags": ["Admin"],
                "summary": "List bookings of one slot instance or a date range",
                "parameters": [
                    {"name": "slot", "in": "query", "type": "integer"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/bookings/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Cancel any booking",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}],
                "responses": {"200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/bookings/{id}/reschedule": {
            "post": {
                "tags": ["Admin"],
                "summary": "Move a booking to another user, slot or date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rescheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Target taken, original slot vacated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/sweep": {
            "post": {
                "tags": ["Admin"],
                "summary": "Run the unfilled-slot warning sweep now",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/SweepRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/roster.pdf": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download the booking roster as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "PDF", "schema": {"type": "file"}}}
            }
        },
        "/admin/audit": {
            "get": {
                "tags": ["Admin"],
                "summary": "Page through the audit trail",
                "parameters": [
                    {"name": "user_id", "in": "query", "type": "string", "format": "uuid"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "BookingRequest": {
            "type": "object",
            "properties": {
                "slot_template_id": {"type": "integer"},
                "date": {"type": "string", "format": "date"}
            }
        },
        "RescheduleRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string", "format": "uuid"},
                "slot_template_id": {"type": "integer"},
                "date": {"type": "string", "format": "date"}
            }
        },
        "FavoriteRequest": {
            "type": "object",
            "properties": {
                "slot_template_id": {"type": "integer"},
                "date": {"type": "string", "format": "date"}
            },
            "required": ["slot_template_id", "date"]
        },
        "SweepRequest": {
            "type": "object",
            "properties": {
                "horizon_days": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "reasons": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
