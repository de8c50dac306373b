package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	attendance.CredentialRepository
	employee.EmployeeRepository
	rules      department.RuleProvider
	identifier attendance.BiometricIdentifier
	notifier   payroll.ChangeNotifier
	loc        *time.Location
	now        func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	credentialRepo attendance.CredentialRepository,
	employeeRepo employee.EmployeeRepository,
	rules department.RuleProvider,
	identifier attendance.BiometricIdentifier,
	notifier payroll.ChangeNotifier,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		CredentialRepository: credentialRepo,
		EmployeeRepository:   employeeRepo,
		rules:                rules,
		identifier:           identifier,
		notifier:             notifier,
		loc:                  loc,
		now:                  time.Now,
	}
}

// ========== MANUAL ENTRY ==========

// Mark implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Mark(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	emp, err := a.workingEmployee(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record := attendance.Record{
		EmployeeID:   emp.ID,
		Date:         date,
		Status:       attendance.Status(req.Status),
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		ShiftType:    department.ShiftType(req.ShiftType),
		Notes:        req.Notes,
	}
	if req.OvertimeHours != nil {
		record.OvertimeHours = *req.OvertimeHours
	}
	if req.UndertimeHours != nil {
		record.UndertimeHours = *req.UndertimeHours
	}

	saved, err := a.save(ctx, emp, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(saved), nil
}

// BulkMark marks the same day for many employees. One employee failing does
// not stop the others.
func (a *AttendanceServiceImpl) BulkMark(ctx context.Context, req attendance.BulkMarkRequest) (attendance.BulkMarkResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkMarkResponse{}, err
	}

	resp := attendance.BulkMarkResponse{
		Marked: make([]attendance.AttendanceResponse, 0, len(req.EmployeeIDs)),
		Failed: []attendance.BulkFailure{},
	}
	for _, id := range req.EmployeeIDs {
		marked, err := a.Mark(ctx, attendance.MarkAttendanceRequest{
			EmployeeID: id,
			Date:       req.Date,
			Status:     req.Status,
			ShiftType:  req.ShiftType,
		})
		if err != nil {
			resp.Failed = append(resp.Failed, attendance.BulkFailure{EmployeeID: id, Reason: err.Error()})
			continue
		}
		resp.Marked = append(resp.Marked, marked)
	}
	return resp, nil
}

// Update implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Update(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if utils.IsFutureDate(record.Date, a.now(), a.loc) {
		return attendance.AttendanceResponse{}, apperror.FutureDate("date")
	}
	emp, err := a.EmployeeRepository.GetByID(ctx, record.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.Status != nil {
		record.Status = attendance.Status(*req.Status)
	}
	if req.CheckInTime != nil {
		record.CheckInTime = req.CheckInTime
	}
	if req.CheckOutTime != nil {
		record.CheckOutTime = req.CheckOutTime
	}
	if req.ShiftType != nil {
		record.ShiftType = department.ShiftType(*req.ShiftType)
	}
	if req.OvertimeHours != nil {
		record.OvertimeHours = *req.OvertimeHours
	}
	if req.UndertimeHours != nil {
		record.UndertimeHours = *req.UndertimeHours
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	if record.CheckInTime == nil && record.CheckOutTime != nil {
		return attendance.AttendanceResponse{}, apperror.InvalidInput("check-out time needs a check-in time")
	}

	saved, err := a.save(ctx, emp, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(saved), nil
}

// Delete implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Delete(ctx context.Context, id string) error {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := a.AttendanceRepository.Delete(ctx, id); err != nil {
		return err
	}

	a.notify(ctx, record)
	return nil
}

// Get implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(record), nil
}

// List implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.NewAttendanceResponse(r))
	}

	return attendance.ListAttendanceResponse{
		Records:    responses,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// ========== BIOMETRIC ==========

// CheckIn opens today's record for the employee behind a verified scan.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.BiometricCheckRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.identifier.ScanAndIdentify(ctx, attendance.BiometricScan{CredentialID: req.CredentialID, Verified: req.Verified})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	today := utils.Today(now, a.loc)
	if !emp.ActiveOn(today) {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeInactive
	}

	if _, err := a.openSession(ctx, emp.ID, today); err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	} else if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up open check-in: %w", err)
	}

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, today)
	switch {
	case err == nil && existing.CheckInTime != nil:
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	case err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up today's attendance: %w", err)
	}

	clock := now.In(a.location()).Format("15:04")
	credentialID := req.CredentialID
	verifiedAt := now.UTC()

	saved, err := a.save(ctx, emp, attendance.Record{
		EmployeeID:        emp.ID,
		Date:              today,
		Status:            attendance.StatusPresent,
		CheckInTime:       &clock,
		ShiftType:         department.ShiftType(req.ShiftType),
		BiometricVerified: true,
		CredentialID:      &credentialID,
		VerifiedAt:        &verifiedAt,
		Notes:             existing.Notes,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(saved), nil
}

// CheckOut closes the latest open record, which may have started yesterday.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.BiometricCheckRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.identifier.ScanAndIdentify(ctx, attendance.BiometricScan{CredentialID: req.CredentialID, Verified: req.Verified})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	today := utils.Today(now, a.loc)

	record, err := a.openSession(ctx, emp.ID, today)
	if err != nil {
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up open check-in: %w", err)
		}
		if done, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, today); err == nil && done.CheckOutTime != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.AttendanceResponse{}, attendance.ErrNoOpenCheckIn
	}

	clock := now.In(a.location()).Format("15:04")
	record.CheckOutTime = &clock
	if req.ShiftType != "" {
		record.ShiftType = department.ShiftType(req.ShiftType)
	}
	verifiedAt := now.UTC()
	record.BiometricVerified = true
	record.VerifiedAt = &verifiedAt

	saved, err := a.save(ctx, emp, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(saved), nil
}

// openSession returns the record still waiting for a check-out. Only a night
// shift may carry over from yesterday; any other open record from before today
// is abandoned and ignored.
func (a *AttendanceServiceImpl) openSession(ctx context.Context, employeeID string, today time.Time) (attendance.Record, error) {
	record, err := a.AttendanceRepository.GetOpenSession(ctx, employeeID, today.AddDate(0, 0, -1))
	if err != nil {
		return attendance.Record{}, err
	}
	if record.Date.Before(today) && record.ShiftType != department.ShiftNight {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return record, nil
}

// RegisterCredential binds a platform credential to an employee.
func (a *AttendanceServiceImpl) RegisterCredential(ctx context.Context, req attendance.RegisterCredentialRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return err
	}

	if err := a.CredentialRepository.Register(ctx, req.CredentialID, req.EmployeeID); err != nil {
		return fmt.Errorf("failed to register credential: %w", err)
	}
	return nil
}

// ========== HOURS ==========

// PreviewHours implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PreviewHours(ctx context.Context, req attendance.HoursPreviewRequest) (attendance.HoursPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.HoursPreviewResponse{}, err
	}

	shift := department.ShiftType(req.ShiftType)
	hours, err := ComputeHoursWorked(req.CheckInTime, req.CheckOutTime, shift)
	if err != nil {
		return attendance.HoursPreviewResponse{}, err
	}

	resp := attendance.HoursPreviewResponse{HoursWorked: hours}
	if req.Department == "" {
		return resp, nil
	}

	dept := department.Department(req.Department)
	rule, err := a.rules.GetRules(ctx, dept)
	if err != nil {
		return attendance.HoursPreviewResponse{}, err
	}
	if shift == "" {
		shift = defaultShift(dept)
	}

	overtime, undertime, err := gatedHours(attendance.Record{
		Status:      attendance.StatusPresent,
		ShiftType:   shift,
		HoursWorked: &hours,
	}, rule)
	if err != nil {
		return attendance.HoursPreviewResponse{}, err
	}

	standard := rule.StandardHours(shift)
	resp.StandardHours = &standard
	resp.OvertimeHours = &overtime
	resp.UndertimeHours = &undertime
	return resp, nil
}

// ========== HELPERS ==========

// workingEmployee loads the employee and checks they could have worked on date.
func (a *AttendanceServiceImpl) workingEmployee(ctx context.Context, id string, date time.Time) (employee.Employee, error) {
	if utils.IsFutureDate(date, a.now(), a.loc) {
		return employee.Employee{}, apperror.FutureDate("date")
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.ActiveOn(date) {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// save derives the hour columns, writes the record and reports the change.
func (a *AttendanceServiceImpl) save(ctx context.Context, emp employee.Employee, record attendance.Record) (attendance.Record, error) {
	if err := a.derive(ctx, emp, &record); err != nil {
		return attendance.Record{}, err
	}

	saved, err := a.AttendanceRepository.Upsert(ctx, record)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save attendance: %w", err)
	}

	a.notify(ctx, saved)
	return saved, nil
}

// derive recomputes hours worked and the overtime/undertime split. Days that
// are not present carry no times or hours.
func (a *AttendanceServiceImpl) derive(ctx context.Context, emp employee.Employee, record *attendance.Record) error {
	if !record.Status.IsValid() {
		return apperror.InvalidInput("unknown attendance status %q", record.Status)
	}
	if record.ShiftType == "" {
		record.ShiftType = defaultShift(emp.Department)
	}

	if record.Status != attendance.StatusPresent {
		record.CheckInTime, record.CheckOutTime = nil, nil
		record.HoursWorked = nil
		record.OvertimeHours, record.UndertimeHours = decimal.Zero, decimal.Zero
		return nil
	}

	record.HoursWorked = nil
	if record.CheckInTime != nil && record.CheckOutTime != nil {
		hours, err := ComputeHoursWorked(*record.CheckInTime, *record.CheckOutTime, record.ShiftType)
		if err != nil {
			return err
		}
		record.HoursWorked = &hours
	} else if record.CheckInTime != nil {
		// still on shift
		record.OvertimeHours, record.UndertimeHours = decimal.Zero, decimal.Zero
		return nil
	}

	rule, err := a.rules.GetRules(ctx, emp.Department)
	if err != nil {
		return err
	}
	record.OvertimeHours, record.UndertimeHours, err = gatedHours(*record, rule)
	return err
}

// gatedHours classifies the day and zeroes what the department does not count.
func gatedHours(record attendance.Record, rule department.Rule) (decimal.Decimal, decimal.Decimal, error) {
	overtime, undertime, err := ClassifyHours(record, rule)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if !rule.PaysOvertime() {
		overtime = decimal.Zero
	}
	if !rule.DeductsUndertime() {
		undertime = decimal.Zero
	}
	return overtime, undertime, nil
}

func defaultShift(dept department.Department) department.ShiftType {
	if dept.UsesShiftBaselines() {
		return department.ShiftDay
	}
	return department.ShiftRegular
}

func (a *AttendanceServiceImpl) location() *time.Location {
	if a.loc == nil {
		return time.UTC
	}
	return a.loc
}

func (a *AttendanceServiceImpl) notify(ctx context.Context, record attendance.Record) {
	if a.notifier == nil {
		return
	}
	a.notifier.Notify(ctx, payroll.ChangeEvent{
		Kind:       payroll.EventAttendanceChanged,
		EmployeeID: record.EmployeeID,
		Date:       record.Date,
	})
}
