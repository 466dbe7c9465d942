package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxRequestBody = 64 << 10

// API serves the guestbook and RSVP actions the invitation page calls.
type API struct {
	guestbook  *GuestbookService
	attendance *AttendanceService
	db         *gorm.DB
	loc        *time.Location
}

func NewAPI(guestbook *GuestbookService, attendance *AttendanceService, db *gorm.DB, loc *time.Location) *API {
	return &API{
		guestbook:  guestbook,
		attendance: attendance,
		db:         db,
		loc:        loc,
	}
}

type entryJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

type deleteRequest struct {
	ID            string `json:"id"`
	Password      string `json:"password"`
	AdminPassword string `json:"adminPassword"`
}

func (a *API) entriesJSON(entries []GuestbookEntry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON{
			ID:      e.ID,
			Name:    e.Name,
			Message: e.Message,
			Date:    formatDisplayDate(e.CreatedAt, a.loc),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// HandleGet serves the read actions selected by the action query parameter.
func (a *API) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch q.Get("action") {
	case "read":
		entries, err := a.guestbook.ReadRecent(r.Context(), positiveIntOr(q.Get("limit"), 0))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    a.entriesJSON(entries),
		})

	case "readAll":
		page, err := a.guestbook.ReadPage(r.Context(),
			positiveIntOr(q.Get("page"), 1),
			positiveIntOr(q.Get("pageSize"), 0))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"data":        a.entriesJSON(page.Entries),
			"total":       page.Total,
			"totalPages":  page.TotalPages,
			"currentPage": page.CurrentPage,
		})

	default:
		writeError(w, r, ErrInvalidAction)
	}
}

// HandlePost serves the mutating actions. The body is JSON whatever the
// Content-Type says; the page posts text/plain to skip the CORS preflight.
func (a *API) HandlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, &fieldError{msg: "Request body is too large"})
			return
		}
		writeError(w, r, err)
		return
	}

	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(w, r, ErrInvalidPayload)
		return
	}

	switch envelope.Action {
	case "write":
		var req WriteEntryRequest
		if err := decodeAction(body, &req); err != nil {
			writeError(w, r, err)
			return
		}
		id, err := a.guestbook.Write(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})

	case "delete":
		var req deleteRequest
		if err := decodeAction(body, &req); err != nil {
			writeError(w, r, err)
			return
		}
		credential := a.guestbook.Credential(req.Password, req.AdminPassword)
		if err := a.guestbook.Delete(r.Context(), req.ID, credential); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	case "attendance":
		var req AttendanceRequest
		if err := decodeAction(body, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := a.attendance.Submit(r.Context(), req); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeError(w, r, ErrInvalidAction)
	}
}

// decodeAction decodes an already well-formed body into the payload of one
// action. Fields of the wrong type are reported as a payload problem.
func decodeAction(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &fieldError{msg: typeErr.Field + " has the wrong type"}
		}
		return &fieldError{msg: err.Error()}
	}
	return nil
}

// HandleHealth reports whether the database answers.
func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
