package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuditEntry describes one access to clinical records.
type AuditEntry struct {
	RecordType  string // patients, encounters or notes
	PatientID   string
	EncounterID string
	Action      string // read or create
	IPAddress   string
	UserAgent   string
	Path        string
	Method      string
	Timestamp   time.Time
	RequestID   string
	StatusCode  int
}

// AuditRecorder persists audit entries in addition to the log line.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every request that touches the record collections. Static
// assets, health and metrics are not audited.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			recordType := recordTypeOf(req.URL.Path)
			if recordType == "" {
				return next(c)
			}

			err := next(c)

			entry := AuditEntry{
				RecordType:  recordType,
				PatientID:   c.Param("pid"),
				EncounterID: c.Param("eid"),
				Action:      httpMethodToAction(req.Method),
				IPAddress:   c.RealIP(),
				UserAgent:   req.UserAgent(),
				Path:        req.URL.Path,
				Method:      req.Method,
				Timestamp:   time.Now().UTC(),
				StatusCode:  c.Response().Status,
			}
			if err != nil {
				entry.StatusCode, _ = errorStatus(err)
			}
			if rid, ok := c.Get(RequestIDKey).(string); ok {
				entry.RequestID = rid
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "record_access").
				Str("request_id", entry.RequestID).
				Str("record_type", entry.RecordType).
				Str("patient_id", entry.PatientID).
				Str("encounter_id", entry.EncounterID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_access")

			return err
		}
	}
}

func httpMethodToAction(method string) string {
	if method == http.MethodPost {
		return "create"
	}
	return "read"
}

// recordTypeOf returns the collection a path addresses, or "" when the path
// is not a record route. The last segment decides:
//
//	/patients                 -> patients
//	/patients/p-1/encounters  -> encounters
//	/encounters/e-1/notes     -> notes
func recordTypeOf(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segments) == 1 && segments[0] == "patients":
		return "patients"
	case len(segments) == 3 && segments[0] == "patients" && segments[2] == "encounters":
		return "encounters"
	case len(segments) == 3 && segments[0] == "encounters" && segments[2] == "notes":
		return "notes"
	}
	return ""
}
