package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrCNICExists              = errors.New("CNIC already registered")
	ErrEmployeeAlreadyActive   = errors.New("employee is already active")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
	ErrEmployeeInactive        = errors.New("employee is inactive")
)
