package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "School Portal Gateway",
    "description": "Gateway for the school microservices: grading, units, rosters, attendance, incidents and dashboards.",
    "version": "1.0.0"
  },
  "basePath": "/api/v1",
  "schemes": [
    "http"
  ],
  "securityDefinitions": {
    "BearerAuth": {
      "type": "apiKey",
      "name": "Authorization",
      "in": "header"
    }
  },
  "tags": [
    {
      "name": "Authentication"
    },
    {
      "name": "Grades"
    },
    {
      "name": "Units"
    },
    {
      "name": "Rosters"
    },
    {
      "name": "Attendance"
    },
    {
      "name": "Incidents"
    },
    {
      "name": "Dashboards"
    },
    {
      "name": "Exports"
    }
  ],
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Authenticate user",
        "tags": [
          "Authentication"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "401": {
            "description": "Unauthorized",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "403": {
            "description": "Forbidden",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "502": {
            "description": "Bad Gateway",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/auth/me": {
      "get": {
        "summary": "Current user",
        "tags": [
          "Authentication"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/grades": {
      "get": {
        "summary": "All saved grades keyed by subject",
        "tags": [
          "Grades"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/grades/{subjectId}": {
      "get": {
        "summary": "Gradebook of a subject",
        "tags": [
          "Grades"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "subjectId",
            "in": "path",
            "type": "string",
            "required": true
          },
          {
            "name": "course_id",
            "in": "query",
            "type": "string",
            "required": false
          }
        ]
      }
    },
    "/grades/{subjectId}/scores": {
      "put": {
        "summary": "Store the raw text of a score cell",
        "tags": [
          "Grades"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "subjectId",
            "in": "path",
            "type": "string",
            "required": true
          },
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/grades/{subjectId}/scores/commit": {
      "post": {
        "summary": "Sanitise a score cell",
        "tags": [
          "Grades"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "subjectId",
            "in": "path",
            "type": "string",
            "required": true
          },
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/grades/{subjectId}/save": {
      "post": {
        "summary": "Persist the working gradebook",
        "tags": [
          "Grades"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "subjectId",
            "in": "path",
            "type": "string",
            "required": true
          }
        ]
      }
    },
    "/grades/{subjectId}/draft": {
      "delete": {
        "summary": "Drop unsaved edits",
        "tags": [
          "Grades"
        ],
        "responses": {
          "204": {
            "description": "No Content"
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "subjectId",
            "in": "path",
            "type": "string",
            "required": true
          }
        ]
      }
    },
    "/units": {
      "post": {
        "summary": "Create a unit with its activities",
        "tags": [
          "Units"
        ],
        "responses": {
          "201": {
            "description": "Created",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "502": {
            "description": "Bad Gateway",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/units/validate": {
      "post": {
        "summary": "Check a unit draft without creating it",
        "tags": [
          "Units"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/units/stats": {
      "get": {
        "summary": "Registered unit statistics",
        "tags": [
          "Units"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/units/course/{courseId}": {
      "get": {
        "summary": "Units of a course",
        "tags": [
          "Units"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "courseId",
            "in": "path",
            "type": "string",
            "required": true
          }
        ]
      }
    },
    "/units/subject/{subjectId}": {
      "get": {
        "summary": "Registered units of a subject",
        "tags": [
          "Units"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "subjectId",
            "in": "path",
            "type": "string",
            "required": true
          }
        ]
      }
    },
    "/units/{id}": {
      "delete": {
        "summary": "Remove a registered unit",
        "tags": [
          "Units"
        ],
        "responses": {
          "204": {
            "description": "No Content"
          },
          "404": {
            "description": "Not Found",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "type": "string",
            "required": true
          }
        ]
      }
    },
    "/rosters/parse": {
      "post": {
        "summary": "Parse a roster file",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "413": {
            "description": "Payload Too Large",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "415": {
            "description": "Unsupported Media Type",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "422": {
            "description": "Unprocessable Entity",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "file",
            "in": "formData",
            "type": "file",
            "required": true
          }
        ]
      }
    },
    "/rosters/validate": {
      "post": {
        "summary": "Check roster rows before upload",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/rosters/upload": {
      "post": {
        "summary": "Forward a roster to the students service",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "413": {
            "description": "Payload Too Large",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "415": {
            "description": "Unsupported Media Type",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "422": {
            "description": "Unprocessable Entity",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "502": {
            "description": "Bad Gateway",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "file",
            "in": "formData",
            "type": "file",
            "required": true
          },
          {
            "name": "destination",
            "in": "formData",
            "type": "string",
            "required": true
          },
          {
            "name": "tutor_id",
            "in": "formData",
            "type": "string",
            "required": false
          },
          {
            "name": "group_id",
            "in": "formData",
            "type": "string",
            "required": false
          }
        ]
      }
    },
    "/rosters/export": {
      "post": {
        "summary": "Download roster rows as CSV",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/students": {
      "get": {
        "summary": "Student records",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/students/export": {
      "get": {
        "summary": "Download the student list as CSV",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/students/template": {
      "get": {
        "summary": "Download an empty roster template",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/enrollments": {
      "get": {
        "summary": "Enrollment lists",
        "tags": [
          "Rosters"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/attendance": {
      "get": {
        "summary": "Attendance roll of a date",
        "tags": [
          "Attendance"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "date",
            "in": "query",
            "type": "string",
            "required": false
          }
        ]
      },
      "post": {
        "summary": "Submit a full roll",
        "tags": [
          "Attendance"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/attendance/import": {
      "post": {
        "summary": "Submit a roll from a spreadsheet",
        "tags": [
          "Attendance"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "file",
            "in": "formData",
            "type": "file",
            "required": true
          },
          {
            "name": "date",
            "in": "formData",
            "type": "string",
            "required": false
          }
        ]
      }
    },
    "/attendance/history": {
      "get": {
        "summary": "Recent attendance rows",
        "tags": [
          "Attendance"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "limit",
            "in": "query",
            "type": "integer",
            "required": false
          }
        ]
      }
    },
    "/attendance/export": {
      "get": {
        "summary": "Download a roll as CSV",
        "tags": [
          "Attendance"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "date",
            "in": "query",
            "type": "string",
            "required": false
          }
        ]
      }
    },
    "/staff": {
      "get": {
        "summary": "List school staff",
        "tags": [
          "Staff"
        ],
        "parameters": [
          {
            "name": "tipo",
            "in": "query",
            "type": "string",
            "required": false
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "502": {
            "description": "Bad Gateway",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/incidents": {
      "get": {
        "summary": "Interventions recorded by the current user",
        "tags": [
          "Incidents"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      },
      "post": {
        "summary": "Record an intervention",
        "tags": [
          "Incidents"
        ],
        "responses": {
          "201": {
            "description": "Created",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/dashboards/director": {
      "get": {
        "summary": "Director dashboard",
        "tags": [
          "Dashboards"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/dashboards/tutor": {
      "get": {
        "summary": "Tutor dashboard",
        "tags": [
          "Dashboards"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/dashboards/docente": {
      "get": {
        "summary": "Teacher dashboard",
        "tags": [
          "Dashboards"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ]
      }
    },
    "/dashboards/cache": {
      "delete": {
        "summary": "Invalidate cached dashboards",
        "tags": [
          "Dashboards"
        ],
        "responses": {
          "204": {
            "description": "No Content"
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "role",
            "in": "query",
            "type": "string",
            "required": false
          }
        ]
      }
    },
    "/exports": {
      "post": {
        "summary": "Queue an export",
        "tags": [
          "Exports"
        ],
        "responses": {
          "202": {
            "description": "Accepted",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "payload",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object"
            }
          }
        ]
      }
    },
    "/exports/{id}": {
      "get": {
        "summary": "Export job status",
        "tags": [
          "Exports"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "403": {
            "description": "Forbidden",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "404": {
            "description": "Not Found",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "security": [
          {
            "BearerAuth": []
          }
        ],
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "type": "string",
            "required": true
          }
        ]
      }
    },
    "/export/{token}": {
      "get": {
        "summary": "Download a finished export",
        "tags": [
          "Exports"
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "403": {
            "description": "Forbidden",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          },
          "404": {
            "description": "Not Found",
            "schema": {
              "$ref": "#/definitions/ResponseEnvelope"
            }
          }
        },
        "parameters": [
          {
            "name": "token",
            "in": "path",
            "type": "string",
            "required": true
          }
        ]
      }
    }
  },
  "definitions": {
    "APIError": {
      "type": "object",
      "properties": {
        "code": {
          "type": "string"
        },
        "message": {
          "type": "string"
        },
        "details": {
          "type": "array",
          "items": {
            "type": "string"
          }
        }
      }
    },
    "ResponseEnvelope": {
      "type": "object",
      "properties": {
        "data": {
          "type": "object"
        },
        "error": {
          "$ref": "#/definitions/APIError"
        },
        "meta": {
          "type": "object"
        }
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
