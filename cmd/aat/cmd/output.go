package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	apiclient "github.com/donaldgifford/ad-alert-tracker/internal/api/client"
	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func accountLabel(id string) string {
	if id == "" {
		return "primary"
	}
	return id
}

func printAlertsTable(w io.Writer, alerts []domain.Alert) error {
	tw := newTabWriter(w)
	tw.writef("TIME\tUSER\tACCOUNT\tMETRIC\tSEVERITY\tSTATUS\tCURRENT\tTARGET\n")
	for i := range alerts {
		a := &alerts[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Timestamp.Format(timeLayout),
			a.UserID,
			accountLabel(a.AccountID),
			a.Metric,
			a.Severity,
			a.Status,
			rules.FormatValue(a.Metric, a.CurrentValue),
			rules.FormatValue(a.Metric, a.TargetValue),
		)
	}
	return tw.finish()
}

func printConfirmationsTable(w io.Writer, items []domain.ConfirmationItem) error {
	tw := newTabWriter(w)
	tw.writef("METRIC\tSEVERITY\tPRIORITY\tTITLE\tDESCRIPTION\n")
	for i := range items {
		it := &items[i]
		tw.writef("%s\t%s\t%d\t%s\t%s\n",
			it.Metric,
			it.Severity,
			it.Priority,
			it.Title,
			truncate(it.Description, 60),
		)
	}
	return tw.finish()
}

func printImprovements(w io.Writer, strategies []domain.ImprovementStrategy) error {
	tw := newTabWriter(w)
	for i := range strategies {
		s := &strategies[i]
		tw.writef("[%s] %s\n", s.Metric, s.Category)
		for _, action := range s.Actions {
			tw.writef("  - %s\n", action)
		}
	}
	return tw.finish()
}

func printGoalsTable(w io.Writer, goals []rules.GoalSummary) error {
	tw := newTabWriter(w)
	tw.writef("GOAL\tNAME\tMETRIC\tCONDITION\tTHRESHOLD\tDAYS\n")
	for i := range goals {
		g := &goals[i]
		key := g.Key
		if g.Default {
			key += " (default)"
		}
		for j, r := range g.Rules {
			goalCol, nameCol := key, g.Name
			if j > 0 {
				goalCol, nameCol = "", ""
			}
			tw.writef("%s\t%s\t%s\t%s\t%s\t%d\n",
				goalCol,
				nameCol,
				r.DisplayName,
				r.Condition,
				rules.FormatValue(r.Metric, r.Threshold),
				r.Days,
			)
		}
	}
	return tw.finish()
}

func printRunResult(w io.Writer, res *apiclient.RunResult) error {
	tw := newTabWriter(w)
	s := res.Summary
	tw.writef("Users:\t%d\n", s.Users)
	tw.writef("Accounts:\t%d\n", s.Accounts)
	tw.writef("Fetch errors:\t%d\n", s.FetchErrors)
	tw.writef("Alerts generated:\t%d\n", s.Generated)
	tw.writef("Alerts dispatched:\t%d\n", s.Dispatched)
	tw.writef("Reports sent:\t%d\n", s.Reports)
	tw.writef("Messages sent:\t%d\n", s.Messages)
	tw.writef("Undelivered:\t%d\n", s.Undelivered)
	tw.writef("Send errors:\t%d\n", s.SendErrors)
	if res.Error != "" {
		tw.writef("Error:\t%s\n", res.Error)
	}
	return tw.finish()
}

func printDedupStatus(w io.Writer, s *apiclient.DedupStatus) error {
	tw := newTabWriter(w)
	tw.writef("Mode:\t%s\n", s.Mode)
	tw.writef("Window:\t%s\n", s.Window)
	tw.writef("Retention:\t%s\n", s.Retention)
	tw.writef("Records:\t%d\n", s.Count)
	if len(s.Records) > 0 {
		tw.writef("\nSCOPE\tMETRIC\tSENT\n")
		for i := range s.Records {
			r := &s.Records[i]
			tw.writef("%s\t%s\t%s\n", r.Scope, r.Metric, r.SentAt.Format(timeLayout))
		}
	}
	return tw.finish()
}

func printJobRunsTable(w io.Writer, runs []domain.JobRun) error {
	tw := newTabWriter(w)
	tw.writef("JOB\tSTATUS\tSTARTED\tCOMPLETED\tROWS\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format(timeLayout)
		}
		rows := "-"
		if r.RowsAffected != nil {
			rows = fmt.Sprintf("%d", *r.RowsAffected)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			r.JobName,
			r.Status,
			r.StartedAt.Format(timeLayout),
			completed,
			rows,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

// printJobStatusTable lists scheduled jobs. SENT is alerts/reports/
// undelivered/errors from the last run this server process performed.
func printJobStatusTable(w io.Writer, jobs []domain.JobStatus) error {
	tw := newTabWriter(w)
	tw.writef("JOB\tLAST STATUS\tLAST RUN\tNEXT RUN\tSENT\tERROR\n")
	for i := range jobs {
		j := &jobs[i]
		status, last, errText := "never", "-", ""
		if r := j.LastRun; r != nil {
			status, last, errText = r.Status, r.StartedAt.Format(timeLayout), r.ErrorText
		}
		next := "-"
		if j.NextRun != nil {
			next = j.NextRun.Format(timeLayout)
		}
		sent := "-"
		if s := j.LastSummary; s != nil {
			sent = fmt.Sprintf("%d/%d/%d/%d", s.Dispatched, s.Reports, s.Undelivered, s.SendErrors)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			j.Name, status, last, next, sent, truncate(errText, 40))
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to maxLen runes so multibyte text is never split.
func truncate(s string, maxLen int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= maxLen {
		return string(r)
	}
	return string(r[:maxLen-3]) + "..."
}
