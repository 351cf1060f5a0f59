package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// SessionData represents a session in responses
type SessionData struct {
	SessionID string  `json:"session_id" example:"lec-3fa85f64"`
	Name      string  `json:"name" example:"Distributed Systems"`
	RoomNo    string  `json:"room_no" example:"A-204"`
	Date      string  `json:"date" example:"2025-03-14"`
	StartTime string  `json:"start_time" example:"10:00"`
	EndTime   string  `json:"end_time" example:"11:00"`
	Lat       float64 `json:"lat" example:"19.0760"`
	Lng       float64 `json:"lng" example:"72.8777"`
	Active    bool    `json:"active" example:"true"`
}

// SessionCreatedResponse wraps a created session and its scan link
type SessionCreatedResponse struct {
	Session SessionData `json:"session"`
	ScanURL string      `json:"scan_url" example:"http://localhost:3000/scan?lid=lec-3fa85f64&t=..."`
}

// SessionListResponse wraps the session list
type SessionListResponse struct {
	Sessions []SessionData `json:"sessions"`
}

// ScanOKResponse is the session context shown after a valid scan
type ScanOKResponse struct {
	SessionID string `json:"session_id" example:"lec-3fa85f64"`
	Name      string `json:"name" example:"Distributed Systems"`
	RoomNo    string `json:"room_no" example:"A-204"`
	Date      string `json:"date" example:"2025-03-14"`
	StartTime string `json:"start_time" example:"10:00"`
	EndTime   string `json:"end_time" example:"11:00"`
}

// SubmitAttendanceRequest is one attendance submission
type SubmitAttendanceRequest struct {
	SessionID string  `json:"session_id" example:"lec-3fa85f64"`
	Token     string  `json:"token" example:"bGVjLTNmYTg1ZjY0..."`
	Name      string  `json:"name" example:"Asha Patel"`
	RollNo    string  `json:"roll_no" example:"ROLL07"`
	FaceToken string  `json:"face_token" example:"Uk9MTDA3fGxlYy0z..."`
	Lat       float64 `json:"lat" example:"19.0761"`
	Lng       float64 `json:"lng" example:"72.8775"`
	Accuracy  float64 `json:"accuracy" example:"12.5"`
}

// SubmitAttendanceResponse is the recorded outcome
type SubmitAttendanceResponse struct {
	Status         string  `json:"status" example:"Present"`
	DistanceMeters float64 `json:"distance_meters" example:"23.4"`
	RollNo         string  `json:"roll_no" example:"ROLL07"`
	SessionID      string  `json:"session_id" example:"lec-3fa85f64"`
}

// FaceVerifyResponse is the structured outcome of a face verification
type FaceVerifyResponse struct {
	Verified     bool    `json:"verified" example:"true"`
	Reason       string  `json:"reason" example:"ok"`
	Score        float64 `json:"score" example:"42.7"`
	SoftAccepted bool    `json:"soft_accepted,omitempty" example:"false"`
	ResolvedRoll string  `json:"resolved_roll" example:"ROLL07"`
	FaceToken    string  `json:"face_token,omitempty" example:"Uk9MTDA3fGxlYy0z..."`
}

// FaceEnrollResponse reports a stored reference image
type FaceEnrollResponse struct {
	RollNo   string `json:"roll_no" example:"ROLL07"`
	Reloaded bool   `json:"reloaded" example:"true"`
}

// EngineStatusResponse is the face engine observability snapshot
type EngineStatusResponse struct {
	Backend    string             `json:"backend" example:"encoding"`
	Ready      bool               `json:"ready" example:"true"`
	IndexCount int                `json:"index_count" example:"42"`
	Params     map[string]float64 `json:"params"`
}

// EnrolledRollsResponse lists enrolled roll numbers
type EnrolledRollsResponse struct {
	Rolls []string `json:"rolls" example:"ROLL07,ROLL21"`
}

// AttendanceRecordData represents one attendance row
type AttendanceRecordData struct {
	SessionID      string  `json:"session_id" example:"lec-3fa85f64"`
	RollNo         string  `json:"roll_no" example:"ROLL07"`
	Name           string  `json:"name" example:"Asha Patel"`
	Lat            float64 `json:"lat" example:"19.0761"`
	Lng            float64 `json:"lng" example:"72.8775"`
	Accuracy       float64 `json:"accuracy" example:"12.5"`
	DistanceMeters float64 `json:"distance_meters" example:"23.4"`
	Status         string  `json:"status" example:"Present"`
	Timestamp      string  `json:"timestamp" example:"2025-03-14T10:05:12Z"`
	FaceVerified   bool    `json:"face_verified" example:"true"`
	FaceConfidence float64 `json:"face_confidence" example:"42.7"`
}

// SessionReportResponse is the per-session attendance summary
type SessionReportResponse struct {
	Session       SessionData            `json:"session"`
	Records       []AttendanceRecordData `json:"records"`
	PresentCount  int                    `json:"present_count" example:"38"`
	RejectedCount int                    `json:"rejected_count" example:"2"`
}

// SetActiveRequest toggles a session's active flag
type SetActiveRequest struct {
	Active bool `json:"active" example:"false"`
}

// CorrectRecordRequest is a manual record fix
type CorrectRecordRequest struct {
	Status string `json:"status" example:"Present"`
	Name   string `json:"name,omitempty" example:"Asha Patel"`
}

// StudentData is one registry entry
type StudentData struct {
	RollNo string `json:"roll_no" example:"ROLL07"`
	Name   string `json:"name" example:"Asha Patel"`
	Email  string `json:"email,omitempty" example:"asha@example.edu"`
}

// StudentListResponse wraps the registry
type StudentListResponse struct {
	Students []StudentData `json:"students"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"INVALID_LINK"`
	Message string `json:"message" example:"Invalid or expired scan link"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Rollcall Attendance API",
		Version:     "v1.0.0",
		Description: "QR + geofence + face verification attendance service for lecture sessions",
		Host:        "localhost:3000",
	})

	endpoints := []*endpoint.EndPoint{
		// Session endpoints

		endpoint.New(
			endpoint.POST,
			"/v1/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Create a session"),
			endpoint.WithDescription("Creates a session, generates its one-time nonce and returns the signed scan link to print as a QR code"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionCreatedResponse{}, "201", "Session created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "SESSION_EXISTS", Message: "Session already exists"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("List sessions"),
			endpoint.WithDescription("Lists sessions, optionally filtered by date range, time window or subject substring"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("start_date", parameter.Query, parameter.WithDescription("Earliest date (YYYY-MM-DD)")),
				parameter.StrParam("end_date", parameter.Query, parameter.WithDescription("Latest date (YYYY-MM-DD)")),
				parameter.StrParam("start_time", parameter.Query, parameter.WithDescription("Earliest start time (HH:MM)")),
				parameter.StrParam("end_time", parameter.Query, parameter.WithDescription("Latest start time (HH:MM)")),
				parameter.StrParam("subject", parameter.Query, parameter.WithDescription("Case-insensitive substring of the session name")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionListResponse{}, "200", "Sessions retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Get a session"),
			endpoint.WithDescription("Returns one session and its scan link, rebuilt deterministically from the stored nonce"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionCreatedResponse{}, "200", "Session retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.PATCH,
			"/v1/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Activate or deactivate a session"),
			endpoint.WithDescription("Deactivating a session invalidates its printed QR code while keeping the attendance already collected"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionCreatedResponse{}, "200", "Session updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.DELETE,
			"/v1/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Delete a session"),
			endpoint.WithDescription("Deletes the session together with its attendance records; previously printed QR codes become invalid"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Session deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/sessions/{id}/report",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Get the attendance report"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionReportResponse{}, "200", "Report retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/sessions/{id}/export",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Export the attendance report as XLSX"),
			endpoint.WithDescription("Returns the attendance sheet as an XLSX download; Present rows encode 1 in the status column, Rejected rows 0"),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "XLSX file"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.PATCH,
			"/v1/sessions/{id}/records/{roll_no}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Correct an attendance record"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session id")),
				parameter.StrParam("roll_no", parameter.Path, parameter.WithDescription("Roll number")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceRecordData{}, "200", "Record updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Unknown status"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "RECORD_NOT_FOUND", Message: "Attendance record not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.DELETE,
			"/v1/sessions/{id}/records/{roll_no}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Delete an attendance record"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session id")),
				parameter.StrParam("roll_no", parameter.Path, parameter.WithDescription("Roll number")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Record deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "RECORD_NOT_FOUND", Message: "Attendance record not found"}, "404", "Not Found"),
			}),
		),

		// Student endpoints

		endpoint.New(
			endpoint.GET,
			"/scan",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Resolve a scanned QR link"),
			endpoint.WithDescription("Validates the signed scan token before revealing any session details"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("lid", parameter.Query, parameter.WithDescription("Session id from the QR code")),
				parameter.StrParam("t", parameter.Query, parameter.WithDescription("Signed scan token from the QR code")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScanOKResponse{}, "200", "Link valid"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_LINK", Message: "Invalid or expired scan link"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Submit attendance"),
			endpoint.WithDescription("Runs the submission through the gate chain (scan token, identity fields, face token, location) and records the geofence outcome"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SubmitAttendanceResponse{}, "200", "Outcome recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_FIELDS", Message: "Enter name and roll number"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "FACE_TOKEN_MISSING", Message: "Face token missing"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "LOCATION_UNAVAILABLE", Message: "Location not available"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INVALID_LINK", Message: "Invalid or expired scan link"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FACE_TOKEN_INVALID", Message: "Face verification is stale or invalid"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests"}, "429", "Too Many Requests"),
			}),
		),

		// Face endpoints

		endpoint.New(
			endpoint.POST,
			"/face/verify",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Verify a face against a claimed roll"),
			endpoint.WithDescription("Matches the probe image against the enrolled references for the (fuzzily resolved) roll number. On success the response carries a short-lived face token bound to the resolved roll and session."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FaceVerifyResponse{}, "200", "Verification completed; check the verified flag"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "session_id and roll_no are required"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests"}, "429", "Too Many Requests"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/v1/face/enroll",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Enroll a reference image"),
			endpoint.WithDescription("Stores a reference image for the roll number and rebuilds the enrollment index"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FaceEnrollResponse{}, "201", "Reference image stored"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "roll_no is required"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/v1/face/reload",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Rebuild the enrollment index"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EngineStatusResponse{}, "200", "Index rebuilt"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/face/status",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("Get the face engine status"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EngineStatusResponse{}, "200", "Status retrieved"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/face/enrolled",
			endpoint.WithTags("Face"),
			endpoint.WithSummary("List enrolled roll numbers"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrolledRollsResponse{}, "200", "Enrolled rolls retrieved"),
			}),
		),

		// Student registry endpoints

		endpoint.New(
			endpoint.PUT,
			"/v1/students",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Create or update a student"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StudentData{}, "200", "Student stored"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "roll_no and name are required"}, "400", "Bad Request"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/students",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("List students"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StudentListResponse{}, "200", "Students retrieved"),
			}),
		),

		endpoint.New(
			endpoint.DELETE,
			"/v1/students/{roll_no}",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Delete a student"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("roll_no", parameter.Path, parameter.WithDescription("Roll number")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Student deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "NOT_FOUND", Message: "Resource not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/v1/students/export",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Export the student registry as XLSX"),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "XLSX file"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
