package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrSkillValidation = &AppError{Code: "SKILL_001", Message: "input is empty or invalid"}
	ErrSkillConfig     = &AppError{Code: "SKILL_002", Message: "skill configuration check failed"}
	ErrSkillTimeout    = &AppError{Code: "SKILL_003", Message: "skill execution timed out"}
	ErrSkillExecution  = &AppError{Code: "SKILL_004", Message: "skill execution failed"}
	ErrSkillLoad       = &AppError{Code: "SKILL_005", Message: "skill failed to load"}
	ErrSkillMissing    = &AppError{Code: "SKILL_006", Message: "skill not present in registry"}

	ErrMemoryCorrupted = &AppError{Code: "MEMORY_001", Message: "context memory corrupted"}
	ErrMemorySave      = &AppError{Code: "MEMORY_002", Message: "failed to persist context memory"}

	ErrSecretMissing = &AppError{Code: "SECRET_001", Message: "api key not found in environment"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
