package validate

import "fmt"

type BadRequestError struct {
	Field  string
	Reason string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
