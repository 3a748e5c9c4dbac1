// Package apperrors defines the error taxonomy shared by the repository,
// service and HTTP layers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes reported to clients
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeNotFound      = "NOT_FOUND"
	CodeReference     = "REFERENCE_ERROR"
	CodeBusinessRule  = "BUSINESS_RULE_VIOLATION"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// Business rule identifiers
const (
	RuleMaxWorkload      = "MAX_WORKLOAD_RULE"
	RuleDeactivation     = "DEACTIVATION_RULE"
	RuleDeletion         = "DELETION_RULE"
	RuleSameParty        = "SAME_PARTY_RULE"
	RuleCaseNumberFormat = "CASE_NUMBER_FORMAT_RULE"
	RuleInactiveLawyer   = "INACTIVE_LAWYER_RULE"
	RuleDirectAssignment = "DIRECT_ASSIGNMENT_RULE"
	RuleResolution       = "RESOLUTION_RULE"
)

const (
	// CaseNumberFormatHint is shown to clients with a malformed case number
	CaseNumberFormatHint  = "ABC-YYYY-001"
	defaultValidationText = "Validation failed"
)

// FieldError describes one rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError is malformed or out-of-range input
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError with an optional field list
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	if message == "" {
		message = defaultValidationText
	}
	return &ValidationError{Message: message, Fields: fields}
}

// FieldInvalid is a ValidationError for a single field
func FieldInvalid(field, message string, value any) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  []FieldError{{Field: field, Message: message, Value: value}},
	}
}

// ConflictError is a unique constraint violation
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError reports that a value for field already exists
func NewConflictError(field string) *ConflictError {
	msg := "resource already exists"
	if field != "" {
		msg = field + " already exists"
	}
	return &ConflictError{Field: field, Message: msg}
}

// NotFoundError is a referenced entity that does not exist
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFoundError reports a missing resource by id
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id, Message: resource + " not found"}
}

// ReferenceError is a dangling foreign key
type ReferenceError struct {
	Message string
}

func (e *ReferenceError) Error() string { return e.Message }

// NewReferenceError reports a write pointing at a missing row
func NewReferenceError() *ReferenceError {
	return &ReferenceError{Message: "Referenced record does not exist"}
}

// BusinessRuleError is a violated named rule. Context carries diagnostics.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]any
	cause   error
}

func (e *BusinessRuleError) Error() string { return e.Message }

// Unwrap exposes the underlying cause, a *ValidationError for format rules
func (e *BusinessRuleError) Unwrap() error { return e.cause }

// NewBusinessRuleError builds a rule violation
func NewBusinessRuleError(rule, message string, context map[string]any) *BusinessRuleError {
	if context == nil {
		context = map[string]any{}
	}
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

// ConfigurationError is a startup or wiring mistake; not operational
type ConfigurationError struct {
	Name    string
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// NewConfigurationError builds a wiring error for the named component
func NewConfigurationError(name, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Name: name, Message: fmt.Sprintf(format, args...)}
}

// MaxWorkloadExceeded is returned when a lawyer already carries the maximum of assigned cases
func MaxWorkloadExceeded(current, max int) *BusinessRuleError {
	return NewBusinessRuleError(RuleMaxWorkload,
		fmt.Sprintf("Lawyer has reached maximum workload (%d/%d active cases). Please assign to another lawyer.", current, max),
		map[string]any{"currentCases": current, "maxCases": max})
}

// CannotDeactivateLawyerWithCases blocks deactivation while cases are assigned
func CannotDeactivateLawyerWithCases(activeCases int) *BusinessRuleError {
	return NewBusinessRuleError(RuleDeactivation,
		fmt.Sprintf("Cannot deactivate lawyer with %d active cases. Please reassign cases first.", activeCases),
		map[string]any{"activeCases": activeCases})
}

// CannotDeleteLawyerWithCases blocks deletion while any case references the lawyer
func CannotDeleteLawyerWithCases(totalCases int) *BusinessRuleError {
	return NewBusinessRuleError(RuleDeletion,
		"Cannot delete lawyer with associated lawsuits. Please reassign or resolve all cases first.",
		map[string]any{"totalCases": totalCases})
}

// SamePartyInLawsuit rejects a lawsuit whose plaintiff is its defendant
func SamePartyInLawsuit() *BusinessRuleError {
	msg := "Plaintiff and defendant cannot be the same party"
	err := NewBusinessRuleError(RuleSameParty, msg, nil)
	err.cause = NewValidationError(msg,
		FieldError{Field: "plaintiff", Message: msg},
		FieldError{Field: "defendant", Message: msg})
	return err
}

// InvalidCaseNumberFormat rejects a case number not shaped like ABC-YYYY-001
func InvalidCaseNumberFormat(caseNumber string) *BusinessRuleError {
	msg := "Case number must follow format: " + CaseNumberFormatHint
	err := NewBusinessRuleError(RuleCaseNumberFormat, msg, map[string]any{"providedFormat": caseNumber})
	err.cause = FieldInvalid("case_number", msg, caseNumber)
	return err
}

// InactiveLawyer rejects an assignment to a lawyer that is not active
func InactiveLawyer(lawyerID string) *BusinessRuleError {
	return NewBusinessRuleError(RuleInactiveLawyer, "Cannot assign inactive lawyer",
		map[string]any{"lawyerId": lawyerID})
}

// DirectAssignment rejects writes that would bypass the assignment workflow
func DirectAssignment(field string) *BusinessRuleError {
	return NewBusinessRuleError(RuleDirectAssignment,
		"Lawyer assignment must go through the assignment operation",
		map[string]any{"field": field})
}

// IsRule reports whether err is a BusinessRuleError for rule
func IsRule(err error, rule string) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre) && bre.Rule == rule
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsOperational reports whether the client can act on err. Configuration
// and unclassified errors are programmer errors.
func IsOperational(err error) bool {
	var (
		ve  *ValidationError
		ce  *ConflictError
		nf  *NotFoundError
		re  *ReferenceError
		bre *BusinessRuleError
	)
	return errors.As(err, &bre) || errors.As(err, &ve) || errors.As(err, &ce) ||
		errors.As(err, &nf) || errors.As(err, &re)
}

// Code returns the client-facing error code for err
func Code(err error) string {
	var (
		ve  *ValidationError
		ce  *ConflictError
		nf  *NotFoundError
		re  *ReferenceError
		bre *BusinessRuleError
		cfg *ConfigurationError
	)
	// Business rules first: some wrap a ValidationError.
	switch {
	case errors.As(err, &bre):
		return CodeBusinessRule
	case errors.As(err, &ve):
		return CodeValidation
	case errors.As(err, &ce):
		return CodeConflict
	case errors.As(err, &nf):
		return CodeNotFound
	case errors.As(err, &re):
		return CodeReference
	case errors.As(err, &cfg):
		return CodeConfiguration
	default:
		return CodeInternal
	}
}

// StatusCode maps err onto an HTTP status
func StatusCode(err error) int {
	switch Code(err) {
	case CodeValidation, CodeReference:
		return http.StatusBadRequest
	case CodeBusinessRule:
		var ve *ValidationError
		if errors.As(err, &ve) {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
