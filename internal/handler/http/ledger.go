package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/handler/http/response"
)

type LedgerHandler interface {
	GetLedger(w http.ResponseWriter, r *http.Request)
	GetEmployeeLedger(w http.ResponseWriter, r *http.Request)

	// Payments
	ListPayments(w http.ResponseWriter, r *http.Request)
	RecordPayment(w http.ResponseWriter, r *http.Request)
	UpdatePayment(w http.ResponseWriter, r *http.Request)
	DeletePayment(w http.ResponseWriter, r *http.Request)

	// Overpayment recovery
	ScheduleRecovery(w http.ResponseWriter, r *http.Request)
	CancelRecovery(w http.ResponseWriter, r *http.Request)
}

type ledgerHandlerImpl struct {
	ledgerService payroll.LedgerService
}

func NewLedgerHandler(ledgerService payroll.LedgerService) LedgerHandler {
	return &ledgerHandlerImpl{ledgerService: ledgerService}
}

func (h *ledgerHandlerImpl) GetLedger(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.GetLedger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) GetEmployeeLedger(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year")
	if year == nil {
		response.BadRequest(w, "year is required", nil)
		return
	}

	result, err := h.ledgerService.GetEmployeeLedger(r.Context(), chi.URLParam(r, "id"), *year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PAYMENTS ==========

func (h *ledgerHandlerImpl) ListPayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.ListPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req payment.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayrollID = chi.URLParam(r, "id")

	result, err := h.ledgerService.RecordPayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment recorded", result)
}

func (h *ledgerHandlerImpl) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req payment.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.ledgerService.UpdatePayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerService.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment deleted successfully", nil)
}

// ========== RECOVERY ==========

func (h *ledgerHandlerImpl) ScheduleRecovery(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.ScheduleRecovery(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Created {
		response.Created(w, "Recovery scheduled", result)
		return
	}
	response.Success(w, result)
}

func (h *ledgerHandlerImpl) CancelRecovery(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerService.CancelRecovery(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Recovery cancelled", nil)
}
