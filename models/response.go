package models

type MessageResponse struct {
	Message string `json:"message" example:"Checked out successfully"`
}

type LoginSuccessResponse struct {
	Message string `json:"message" example:"Login successful"`
	Role    string `json:"role" example:"employee"`
	Email   string `json:"email" example:"jane@example.com"`
}

type RegisterSuccessResponse struct {
	Message  string   `json:"message" example:"Employee registered successfully"`
	Employee Employee `json:"employee"`
}

type AttendanceResponse struct {
	Message    string     `json:"message" example:"Checked in successfully"`
	Attendance Attendance `json:"attendance"`
}

type LeaveResponse struct {
	Message string       `json:"message" example:"Leave applied successfully"`
	Leave   LeaveRequest `json:"leave"`
}

type OfficeResponse struct {
	Message string         `json:"message" example:"Office location saved"`
	Office  OfficeLocation `json:"office"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"You are 240m away from the office. Allowed radius is 100m."`
	Code  string `json:"code" example:"OutsideGeofence"`
}

type ValidationErrorResponse struct {
	Error  string `json:"error" example:"Validation failed"`
	Code   string `json:"code" example:"InvalidInput"`
	Errors []struct {
		Field   string `json:"field" example:"Email"`
		Tag     string `json:"tag" example:"email"`
		Message string `json:"message" example:"Invalid email format."`
	} `json:"errors"`
}
