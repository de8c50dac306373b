package department

import "errors"

var (
	ErrUnknownDepartment = errors.New("unknown department")
	ErrRuleNotFound      = errors.New("department rule not found")
)
