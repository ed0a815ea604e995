package services

type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: 404, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: 400, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Status: 401, Message: msg}
}

func ErrConflict(msg string) error {
	return ServiceError{Status: 409, Message: msg}
}
