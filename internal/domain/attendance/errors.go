package attendance

import "errors"

var (
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrAlreadyCheckedIn     = errors.New("employee already checked in today")
	ErrNoOpenCheckIn        = errors.New("no open check-in found for employee")
	ErrAlreadyCheckedOut    = errors.New("employee already checked out")
	ErrBiometricAuthFailed  = errors.New("biometric authentication failed")
	ErrCredentialNotFound   = errors.New("biometric credential not registered")
	ErrCheckTimesNotPresent = errors.New("check-in and check-out times require status present")
)
