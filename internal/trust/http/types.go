package http

// LoginRequest is the admin auth payload. Action defaults to plain login;
// "change_password" additionally requires NewPassword.
type LoginRequest struct {
	Password    string `json:"password"`
	Action      string `json:"action,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
}

// LoginResponse is returned on successful login or password rotation.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"` // seconds
}

// ErrorResponse carries a user-safe failure message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyRequest is the user verification payload.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyResponse reports the outcome of one verification attempt.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// IssueCodeRequest asks for a fresh verification code for an email.
type IssueCodeRequest struct {
	Email string `json:"email"`
}

// ConfigResponse exposes non-secret configuration flags to an
// authenticated administrator.
type ConfigResponse struct {
	MaxAttempts      int    `json:"max_attempts"`
	CodeTTLSeconds   int64  `json:"code_ttl_seconds"`
	SessionTTLSecs   int64  `json:"session_ttl_seconds"`
	NotifyConfigured bool   `json:"notify_configured"`
	Env              string `json:"env"`
}

// HealthResponse is shared by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
