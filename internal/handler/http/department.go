package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/handler/http/response"
)

type RuleHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
}

type ruleHandlerImpl struct {
	rules department.RuleProvider
}

func NewRuleHandler(rules department.RuleProvider) RuleHandler {
	return &ruleHandlerImpl{rules: rules}
}

func (h *ruleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.rules.ListRules(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ruleHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	dept := department.Department(chi.URLParam(r, "department"))

	result, err := h.rules.GetRule(r.Context(), dept)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ruleHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req department.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.Department = department.Department(chi.URLParam(r, "department"))

	result, err := h.rules.UpdateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ruleHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	dept := department.Department(chi.URLParam(r, "department"))

	result, err := h.rules.ResetRule(r.Context(), dept)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department rule reset to default", result)
}
