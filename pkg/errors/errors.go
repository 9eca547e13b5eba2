package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCanceled     ErrorCode = "CANCELED"

	// Configuration errors
	ErrConfigLoad         ErrorCode = "CONFIG_LOAD"
	ErrConfigMissingField ErrorCode = "CONFIG_MISSING_FIELD"
	ErrConfigInvalidEnum  ErrorCode = "CONFIG_INVALID_ENUM"
	ErrConfigInvalidType  ErrorCode = "CONFIG_INVALID_TYPE"
	ErrConfigKeyCollision ErrorCode = "CONFIG_KEY_COLLISION"
	ErrConfigListRequired ErrorCode = "CONFIG_LIST_REQUIRED"
	ErrConfigMissingToken ErrorCode = "CONFIG_MISSING_TOKEN"

	// Manifest errors
	ErrManifestNotFound  ErrorCode = "MANIFEST_NOT_FOUND"
	ErrManifestMalformed ErrorCode = "MANIFEST_MALFORMED"
	ErrManifestAmbiguous ErrorCode = "MANIFEST_AMBIGUOUS"

	// Substitution errors
	ErrSubstUnresolved    ErrorCode = "SUBST_UNRESOLVED"
	ErrSubstMalformedList ErrorCode = "SUBST_MALFORMED_LIST"
	ErrSubstListInPath    ErrorCode = "SUBST_LIST_IN_PATH"
	ErrSubstPathCollision ErrorCode = "SUBST_PATH_COLLISION"
	ErrSubstRead          ErrorCode = "SUBST_READ"
	ErrSubstFormat        ErrorCode = "SUBST_FORMAT"
	ErrSubstInvalidPath   ErrorCode = "SUBST_INVALID_PATH"
	ErrSubstStructured    ErrorCode = "SUBST_STRUCTURED"

	// Write errors
	ErrWriteDestExists ErrorCode = "WRITE_DEST_EXISTS"
	ErrWriteStage      ErrorCode = "WRITE_STAGE"

	// Publish errors
	ErrPublishFailed   ErrorCode = "PUBLISH_FAILED"
	ErrPublishAuth     ErrorCode = "PUBLISH_AUTH"
	ErrPublishConflict ErrorCode = "PUBLISH_CONFLICT"
)

// Kind groups error codes into the terminal error classes reported to callers.
type Kind string

const (
	KindInternal     Kind = "internal"
	KindConfig       Kind = "config"
	KindManifest     Kind = "manifest"
	KindSubstitution Kind = "substitution"
	KindPublish      Kind = "publish"
)

// codeKinds lists every code with a terminal kind; write errors are left out
// and count as internal.
var codeKinds = map[ErrorCode]Kind{
	ErrConfigLoad:         KindConfig,
	ErrConfigMissingField: KindConfig,
	ErrConfigInvalidEnum:  KindConfig,
	ErrConfigInvalidType:  KindConfig,
	ErrConfigKeyCollision: KindConfig,
	ErrConfigListRequired: KindConfig,
	ErrConfigMissingToken: KindConfig,

	ErrManifestNotFound:  KindManifest,
	ErrManifestMalformed: KindManifest,
	ErrManifestAmbiguous: KindManifest,

	ErrSubstUnresolved:    KindSubstitution,
	ErrSubstMalformedList: KindSubstitution,
	ErrSubstListInPath:    KindSubstitution,
	ErrSubstPathCollision: KindSubstitution,
	ErrSubstRead:          KindSubstitution,
	ErrSubstFormat:        KindSubstitution,
	ErrSubstInvalidPath:   KindSubstitution,
	ErrSubstStructured:    KindSubstitution,

	ErrPublishFailed:   KindPublish,
	ErrPublishAuth:     KindPublish,
	ErrPublishConflict: KindPublish,
}

// Process exit codes, one per terminal kind
const (
	ExitOK           = 0
	ExitOther        = 1
	ExitConfig       = 2
	ExitManifest     = 3
	ExitSubstitution = 4
	ExitPublish      = 5
)

// Kind returns the terminal class an error code belongs to
func (c ErrorCode) Kind() Kind {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	return KindInternal
}

// GeneratorError represents a structured error with code and details
type GeneratorError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *GeneratorError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GeneratorError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *GeneratorError) Is(target error) bool {
	var targetErr *GeneratorError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// Kind returns the terminal class of the error
func (e *GeneratorError) Kind() Kind {
	return e.Code.Kind()
}

// New creates a new GeneratorError with the given code and message
func New(code ErrorCode, message string) *GeneratorError {
	return &GeneratorError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new GeneratorError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GeneratorError {
	return &GeneratorError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a GeneratorError
func Wrap(err error, code ErrorCode, message string) *GeneratorError {
	if err == nil {
		return nil
	}
	return &GeneratorError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GeneratorError {
	if err == nil {
		return nil
	}
	return &GeneratorError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *GeneratorError) WithDetail(key string, value interface{}) *GeneratorError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *GeneratorError) WithDetails(details map[string]interface{}) *GeneratorError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		return genErr.Code == code
	}
	return false
}

// As returns the first GeneratorError in err's chain
func As(err error) (*GeneratorError, bool) {
	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a GeneratorError
func GetErrorCode(err error) ErrorCode {
	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		return genErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a GeneratorError
func GetErrorDetails(err error) map[string]interface{} {
	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		return genErr.Details
	}
	return nil
}

// GetKind returns the terminal class of err. Errors that carry no code are internal.
func GetKind(err error) Kind {
	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		return genErr.Kind()
	}
	return KindInternal
}

// IsKind reports whether err belongs to the given terminal class
func IsKind(err error, kind Kind) bool {
	return err != nil && GetKind(err) == kind
}

// ExitCode maps an error to the process exit code for its kind. Write errors
// (WRITE_DEST_EXISTS, WRITE_STAGE) have no kind of their own and exit with
// ExitOther, like any other internal failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetKind(err) {
	case KindConfig:
		return ExitConfig
	case KindManifest:
		return ExitManifest
	case KindSubstitution:
		return ExitSubstitution
	case KindPublish:
		return ExitPublish
	default:
		return ExitOther
	}
}
