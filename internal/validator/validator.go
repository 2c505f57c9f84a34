package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Validate checks the validate struct tags of i
func Validate(i any) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}
	return v.Struct(i)
}
