package payroll

import "errors"

var (
	ErrPayrollNotFound        = errors.New("payroll not found")
	ErrPayrollLocked          = errors.New("payroll is paid or locked, cannot modify")
	ErrPayrollNotPending      = errors.New("payroll is not pending")
	ErrPayrollNotPaid         = errors.New("payroll must be paid before it can be locked")
	ErrCannotDeletePaidRecord = errors.New("cannot delete paid payroll record")
	ErrNotOverpaid            = errors.New("payroll is not overpaid")
	ErrRecoveryNotFound       = errors.New("no recovery scheduled for this payroll")
)
