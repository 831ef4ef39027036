package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ad-alert-tracker/internal/dedup"
)

// DedupManager exposes dedup state to operators.
type DedupManager interface {
	Status(ctx context.Context) (*dedup.Status, error)
	Reset(ctx context.Context, scope string) (int, error)
}

// DedupHandler handles dedup inspection and reset requests.
type DedupHandler struct {
	dedup DedupManager
}

// NewDedupHandler creates a new DedupHandler.
func NewDedupHandler(m DedupManager) *DedupHandler {
	return &DedupHandler{dedup: m}
}

// DedupStatusOutput is the response body for the dedup status.
type DedupStatusOutput struct {
	Body *dedup.Status
}

// ResetDedupInput selects the records to remove.
type ResetDedupInput struct {
	Scope string `query:"scope" doc:"User or user/account scope; empty removes every record"`
}

// ResetDedupOutput reports how many records were removed.
type ResetDedupOutput struct {
	Body struct {
		Removed int `json:"removed"`
	}
}

// Status returns the current dedup records.
func (h *DedupHandler) Status(ctx context.Context, _ *struct{}) (*DedupStatusOutput, error) {
	st, err := h.dedup.Status(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("reading dedup status failed: " + err.Error())
	}
	return &DedupStatusOutput{Body: st}, nil
}

// Reset clears dedup records so the next run resends.
func (h *DedupHandler) Reset(ctx context.Context, input *ResetDedupInput) (*ResetDedupOutput, error) {
	n, err := h.dedup.Reset(ctx, input.Scope)
	if err != nil {
		return nil, huma.Error500InternalServerError("resetting dedup failed: " + err.Error())
	}

	resp := &ResetDedupOutput{}
	resp.Body.Removed = n
	return resp, nil
}

// RegisterDedupRoutes registers dedup endpoints with the Huma API.
func RegisterDedupRoutes(api huma.API, h *DedupHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-dedup-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/dedup",
		Summary:     "Get dedup status",
		Description: "Returns the suppression window and the records of recently sent alerts.",
		Tags:        []string{"dedup"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.Status)

	huma.Register(api, huma.Operation{
		OperationID: "reset-dedup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/dedup",
		Summary:     "Reset dedup records",
		Description: "Removes sent records for one scope, or all of them, so matching alerts are sent again.",
		Tags:        []string{"dedup"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.Reset)
}
