// Package main implements a mock Meta Graph API, Chatwork and Discord server
// for local development. Insights are synthesized per requested day so the
// alert engine can run end to end without real credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Scenarios shape the synthesized insights.
const (
	scenarioHealthy         = "healthy"
	scenarioUnderperforming = "underperforming"
)

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

type insightsRow struct {
	DateStart   string   `json:"date_start"`
	DateStop    string   `json:"date_stop"`
	Spend       string   `json:"spend"`
	Impressions string   `json:"impressions"`
	Clicks      string   `json:"clicks"`
	CPM         string   `json:"cpm"`
	CPC         string   `json:"cpc"`
	CTR         string   `json:"ctr"`
	Actions     []action `json:"actions,omitempty"`
}

type insightsResponse struct {
	Data   []insightsRow `json:"data"`
	Paging struct {
		Next string `json:"next,omitempty"`
	} `json:"paging"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	scenario := flag.String("scenario", scenarioUnderperforming, "insights shape: healthy or underperforming")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if *scenario != scenarioHealthy && *scenario != scenarioUnderperforming {
		logger.Error("unknown scenario", "scenario", *scenario)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Meta/Chatwork/Discord server", "addr", addr, "scenario", *scenario)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, *scenario)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, scenario string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{version}/{account}/insights", insightsHandler(logger, scenario))
	mux.HandleFunc("POST /v2/rooms/{room}/messages", chatworkHandler(logger))
	mux.HandleFunc("POST /webhooks/{id}/{token}", discordHandler(logger))
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func writeGraphError(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, map[string]graphError{
		"error": {Message: msg, Type: "OAuthException", Code: code},
	})
}

func insightsHandler(logger *slog.Logger, scenario string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			logger.Warn("insights request missing bearer token")
			writeGraphError(w, http.StatusUnauthorized, 190, "Invalid OAuth access token.")
			return
		}

		account := r.PathValue("account")
		if !strings.HasPrefix(account, "act_") {
			writeGraphError(w, http.StatusBadRequest, 100, "Unsupported get request.")
			return
		}

		var tr struct {
			Since string `json:"since"`
			Until string `json:"until"`
		}
		if err := json.Unmarshal([]byte(r.URL.Query().Get("time_range")), &tr); err != nil {
			writeGraphError(w, http.StatusBadRequest, 100, "Invalid parameter time_range.")
			return
		}
		since, err1 := time.Parse(time.DateOnly, tr.Since)
		until, err2 := time.Parse(time.DateOnly, tr.Until)
		if err1 != nil || err2 != nil || until.Before(since) {
			writeGraphError(w, http.StatusBadRequest, 100, "Invalid parameter time_range.")
			return
		}

		resp := insightsResponse{Data: []insightsRow{}}
		for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
			resp.Data = append(resp.Data, synthesize(d, scenario))
		}

		writeJSON(w, http.StatusOK, resp)
		logger.Info("insights", "account", account, "since", tr.Since, "until", tr.Until, "days", len(resp.Data))
	}
}

// synthesize returns one day of insights. Underperforming days have a low
// CTR, no conversions and half the usual spend.
func synthesize(day time.Time, scenario string) insightsRow {
	impressions := 20000 + 500*day.Day()
	clicks := impressions * 3 / 100
	spend := 10000.0
	var actions []action

	if scenario == scenarioUnderperforming {
		clicks = impressions / 100
		spend = 5000
	} else {
		actions = []action{
			{ActionType: "lead", Value: "4"},
			{ActionType: "offsite_conversion.fb_pixel_complete_registration", Value: "2"},
		}
	}

	date := day.Format(time.DateOnly)
	return insightsRow{
		DateStart:   date,
		DateStop:    date,
		Spend:       strconv.FormatFloat(spend, 'f', 2, 64),
		Impressions: strconv.Itoa(impressions),
		Clicks:      strconv.Itoa(clicks),
		CPM:         strconv.FormatFloat(spend/float64(impressions)*1000, 'f', 2, 64),
		CPC:         strconv.FormatFloat(spend/float64(clicks), 'f', 2, 64),
		CTR:         strconv.FormatFloat(float64(clicks)/float64(impressions)*100, 'f', 4, 64),
		Actions:     actions,
	}
}

func chatworkHandler(logger *slog.Logger) http.HandlerFunc {
	var seq atomic.Int64

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-ChatWorkToken") == "" {
			logger.Warn("chatwork request missing token")
			writeJSON(w, http.StatusUnauthorized, map[string][]string{
				"errors": {"Invalid API token"},
			})
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("body") == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{
				"errors": {"Parameter [body] is required"},
			})
			return
		}

		id := seq.Add(1)
		logger.Info("chatwork message",
			"room", r.PathValue("room"),
			"message_id", id,
			"body", r.PostForm.Get("body"),
		)
		writeJSON(w, http.StatusOK, map[string]string{"message_id": strconv.FormatInt(id, 10)})
	}
}

func discordHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Embeds []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"embeds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Embeds) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Cannot send an empty message"})
			return
		}

		for _, e := range payload.Embeds {
			logger.Info("discord embed", "webhook", r.PathValue("id"), "title", e.Title, "description", e.Description)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
