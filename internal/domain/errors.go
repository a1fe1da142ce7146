package domain

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: msg,
		Status:  e.Status,
	}
}

var (
	ErrAuthMissing = &AppError{
		Code:    "AUTH_MISSING",
		Message: "No credential presented",
		Status:  401,
	}

	ErrInvalidToken = &AppError{
		Code:    "AUTH_INVALID",
		Message: "Credential rejected",
		Status:  401,
	}

	ErrForbidden = &AppError{
		Code:    "FORBIDDEN",
		Message: "Insufficient permissions",
		Status:  403,
	}

	ErrNotFound = &AppError{
		Code:    "NOT_FOUND",
		Message: "Not found",
		Status:  404,
	}

	ErrConflict = &AppError{
		Code:    "CONFLICT",
		Message: "Already exists",
		Status:  400,
	}

	ErrInvalidRequest = &AppError{
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request",
		Status:  400,
	}

	ErrRateLimited = &AppError{
		Code:    "RATE_LIMITED",
		Message: "Too many requests",
		Status:  429,
	}

	ErrInternalServerError = &AppError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error",
		Status:  500,
	}
)
