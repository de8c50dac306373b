package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
)

// credentialIdentifier trusts the platform's verification result and maps
// the credential it reports to the employee who registered it.
type credentialIdentifier struct {
	credentials attendance.CredentialRepository
	employees   employee.EmployeeRepository
}

func NewBiometricIdentifier(credentials attendance.CredentialRepository, employees employee.EmployeeRepository) attendance.BiometricIdentifier {
	return &credentialIdentifier{credentials: credentials, employees: employees}
}

func (c *credentialIdentifier) ScanAndIdentify(ctx context.Context, scan attendance.BiometricScan) (employee.Employee, error) {
	if !scan.Verified || scan.CredentialID == "" {
		return employee.Employee{}, attendance.ErrBiometricAuthFailed
	}

	employeeID, err := c.credentials.GetEmployeeID(ctx, scan.CredentialID)
	if err != nil {
		if errors.Is(err, attendance.ErrCredentialNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to resolve credential: %w", err)
	}

	return c.employees.GetByID(ctx, employeeID)
}
