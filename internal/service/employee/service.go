package employee

import (
	"context"
	"fmt"
	"math"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/utils"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
	}
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	joining, err := utils.ParseDate(req.JoiningDate)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	cnic := validator.NormalizeCNIC(req.CNIC)
	exists, err := s.employeeRepo.ExistsByCNIC(ctx, cnic, nil)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check CNIC: %w", err)
	}
	if exists {
		return employee.EmployeeResponse{}, employee.ErrCNICExists
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		Name:         req.Name,
		CNIC:         cnic,
		Department:   department.Department(req.Department),
		BaseSalary:   req.BaseSalary,
		OvertimeRate: req.OvertimeRate,
		JoiningDate:  joining,
		IsActive:     true,
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return employee.NewEmployeeResponse(created), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	existing, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	// Check for duplicate CNIC if being updated
	if req.CNIC != nil {
		cnic := validator.NormalizeCNIC(*req.CNIC)
		if cnic != existing.CNIC {
			exists, err := s.employeeRepo.ExistsByCNIC(ctx, cnic, &existing.ID)
			if err != nil {
				return employee.EmployeeResponse{}, fmt.Errorf("failed to check CNIC: %w", err)
			}
			if exists {
				return employee.EmployeeResponse{}, employee.ErrCNICExists
			}
		}
		existing.CNIC = cnic
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Department != nil {
		existing.Department = department.Department(*req.Department)
	}
	if req.BaseSalary != nil {
		existing.BaseSalary = *req.BaseSalary
	}
	if req.OvertimeRate != nil {
		// zero clears the override
		if req.OvertimeRate.IsZero() {
			existing.OvertimeRate = nil
		} else {
			existing.OvertimeRate = req.OvertimeRate
		}
	}
	if req.JoiningDate != nil {
		joining, err := utils.ParseDate(*req.JoiningDate)
		if err != nil {
			return employee.EmployeeResponse{}, err
		}
		existing.JoiningDate = joining
	}

	updated, err := s.employeeRepo.Update(ctx, existing)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}

	return employee.NewEmployeeResponse(updated), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.NewEmployeeResponse(emp))
	}

	return employee.ListEmployeeResponse{
		Employees:  responses,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// SetActive implements employee.EmployeeService.
func (s *EmployeeServiceImpl) SetActive(ctx context.Context, id string, active bool) (employee.EmployeeResponse, error) {
	existing, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if existing.IsActive == active {
		if active {
			return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyActive
		}
		return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyInactive
	}

	updated, err := s.employeeRepo.SetActive(ctx, id, active)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to change employee status: %w", err)
	}

	return employee.NewEmployeeResponse(updated), nil
}
