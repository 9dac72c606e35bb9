package kursovaya

// Domain error taxonomy. Handlers match these with errors.As to pick HTTP
// status codes; services carry human-readable messages through them.

// ValidationError covers malformed or out-of-range input, insufficient funds
// and missing linked resources.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) error { return &ValidationError{Message: msg} }

// AuthError covers bad credentials and insufficient privilege.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NewAuthError builds an AuthError with the given message.
func NewAuthError(msg string) error { return &AuthError{Message: msg} }

// NotFoundError covers unknown users and transaction ids.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFoundError builds a NotFoundError with the given message.
func NewNotFoundError(msg string) error { return &NotFoundError{Message: msg} }

// StorageError covers I/O failures of the flat-file store.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps an I/O failure with a message.
func NewStorageError(msg string, err error) error { return &StorageError{Message: msg, Err: err} }
