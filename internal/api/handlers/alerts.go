package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ad-alert-tracker/internal/store"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

const (
	dateLayout         = "2006-01-02"
	defaultAlertsLimit = 100

	// primaryAccount selects alerts of a user's primary account.
	primaryAccount = "primary"
)

// AlertsHandler serves alert history and the dashboard projections.
type AlertsHandler struct {
	store store.AlertStore
	loc   *time.Location
	now   func() time.Time
}

// NewAlertsHandler creates a new AlertsHandler. loc defines calendar days.
func NewAlertsHandler(s store.AlertStore, loc *time.Location) *AlertsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AlertsHandler{store: s, loc: loc, now: time.Now}
}

// --- Input/Output types ---

// ListAlertsInput is the input for listing alert history.
type ListAlertsInput struct {
	UserID    string `query:"user_id"    doc:"Filter by user"`
	AccountID string `query:"account_id" doc:"Filter by ad account; 'primary' selects the primary account"`
	Metric    string `query:"metric"     doc:"Filter by metric"`
	Active    bool   `query:"active"     doc:"Only alerts still active"`
	Since     string `query:"since"      doc:"Only alerts on or after this day (YYYY-MM-DD)" pattern:"^\\d{4}-\\d{2}-\\d{2}$"`
	Limit     int    `query:"limit"      doc:"Number of results (default 100)"                  minimum:"1" maximum:"1000"`
}

// ListAlertsOutput is the response for listing alert history.
type ListAlertsOutput struct {
	Body struct {
		Alerts []domain.Alert `json:"alerts"`
		Total  int            `json:"total"`
	}
}

// DayInput selects one user's alerts for one calendar day.
type DayInput struct {
	UserID    string `query:"user_id"    doc:"User to report on"                  required:"true"`
	AccountID string `query:"account_id" doc:"Ad account; 'primary' selects the primary account"`
	Date      string `query:"date"       doc:"Day to report on (YYYY-MM-DD, default today)" pattern:"^\\d{4}-\\d{2}-\\d{2}$"`
}

// ConfirmationsOutput lists the check items of a day's active alerts.
type ConfirmationsOutput struct {
	Body struct {
		Date  string                    `json:"date"`
		Items []domain.ConfirmationItem `json:"items"`
	}
}

// ImprovementsOutput lists the improvement strategies of a day's active alerts.
type ImprovementsOutput struct {
	Body struct {
		Date       string                       `json:"date"`
		Strategies []domain.ImprovementStrategy `json:"strategies"`
	}
}

// --- Handlers ---

// ListAlerts returns alert history, newest first.
func (h *AlertsHandler) ListAlerts(
	ctx context.Context,
	input *ListAlertsInput,
) (*ListAlertsOutput, error) {
	q := &store.AlertQuery{
		UserID:     input.UserID,
		AccountID:  accountFilter(input.AccountID),
		Metric:     input.Metric,
		ActiveOnly: input.Active,
		Limit:      input.Limit,
	}
	if q.Limit == 0 {
		q.Limit = defaultAlertsLimit
	}

	if input.Since != "" {
		since, err := time.ParseInLocation(dateLayout, input.Since, h.loc)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid since: " + err.Error())
		}
		q.Since = &since
	}

	alerts, err := h.store.QueryAlerts(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing alerts failed: " + err.Error())
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	resp := &ListAlertsOutput{}
	resp.Body.Alerts = alerts
	resp.Body.Total = len(alerts)
	return resp, nil
}

// Confirmations returns the check items of the day's active alerts.
func (h *AlertsHandler) Confirmations(
	ctx context.Context,
	input *DayInput,
) (*ConfirmationsOutput, error) {
	day, alerts, err := h.activeOn(ctx, input)
	if err != nil {
		return nil, err
	}

	resp := &ConfirmationsOutput{}
	resp.Body.Date = day
	resp.Body.Items = store.ConfirmationItems(alerts)
	return resp, nil
}

// Improvements returns the improvement strategies of the day's active alerts.
func (h *AlertsHandler) Improvements(
	ctx context.Context,
	input *DayInput,
) (*ImprovementsOutput, error) {
	day, alerts, err := h.activeOn(ctx, input)
	if err != nil {
		return nil, err
	}

	resp := &ImprovementsOutput{}
	resp.Body.Date = day
	resp.Body.Strategies = store.ImprovementStrategies(alerts)
	return resp, nil
}

func (h *AlertsHandler) activeOn(ctx context.Context, input *DayInput) (string, []domain.Alert, error) {
	ref := h.now()
	if input.Date != "" {
		d, err := time.ParseInLocation(dateLayout, input.Date, h.loc)
		if err != nil {
			return "", nil, huma.Error400BadRequest("invalid date: " + err.Error())
		}
		ref = d
	}
	start, end := store.DayBounds(ref, h.loc)

	alerts, err := h.store.QueryAlerts(ctx, &store.AlertQuery{
		UserID:     input.UserID,
		AccountID:  accountFilter(input.AccountID),
		ActiveOnly: true,
		Since:      &start,
		Until:      &end,
		Limit:      store.DefaultMaxAlertEntries,
	})
	if err != nil {
		return "", nil, huma.Error500InternalServerError("reading alerts failed: " + err.Error())
	}
	return start.Format(dateLayout), alerts, nil
}

func accountFilter(id string) *string {
	switch id {
	case "":
		return nil
	case primaryAccount:
		empty := ""
		return &empty
	default:
		return &id
	}
}

// RegisterAlertRoutes registers alert history endpoints with the Huma API.
func RegisterAlertRoutes(api huma.API, h *AlertsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-alerts",
		Method:      http.MethodGet,
		Path:        "/api/v1/alerts",
		Summary:     "List alert history",
		Description: "Returns recorded alerts, newest first, with optional user, account, metric and day filters.",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.ListAlerts)

	huma.Register(api, huma.Operation{
		OperationID: "list-confirmations",
		Method:      http.MethodGet,
		Path:        "/api/v1/alerts/confirmations",
		Summary:     "List confirmation items",
		Description: "Returns the check items attached to a user's active alerts for one day.",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Confirmations)

	huma.Register(api, huma.Operation{
		OperationID: "list-improvements",
		Method:      http.MethodGet,
		Path:        "/api/v1/alerts/improvements",
		Summary:     "List improvement strategies",
		Description: "Returns the improvement strategies attached to a user's active alerts for one day.",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Improvements)
}
