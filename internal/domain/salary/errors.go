package salary

import "errors"

var (
	ErrStructureNotFound = errors.New("salary structure not found")
	ErrStructureRequired = errors.New("salary structure must exist first")
	ErrComponentNotFound = errors.New("salary component not found")
	ErrNoComponentFields = errors.New("no fields to update")
)
