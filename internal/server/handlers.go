package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
	"github.com/pfrederiksen/tm-roles/internal/calendar"
	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/service"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// syncErrorBody keeps the run log of a failed sync
type syncErrorBody struct {
	Detail string   `json:"detail"`
	Logs   []string `json:"logs"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", logger.Fields{"error": err.Error()})
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// serviceStatus maps service errors onto a status code and detail message
func serviceStatus(r *http.Request, err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyAgenda), errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "no valid agenda found for this date"
	case errors.Is(err, service.ErrUnknownMember):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrSyncInProgress):
		return http.StatusConflict, err.Error()
	default:
		logger.Error("Request failed", logger.Fields{"method": r.Method, "path": r.URL.Path}, err)
		return http.StatusInternalServerError, err.Error()
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := serviceStatus(r, err)
	writeError(w, status, detail)
}

// dateParam parses a YYYY-MM-DD query parameter. A missing value is an error
// unless optional is set, in which case the zero time is returned.
func dateParam(r *http.Request, name string, optional bool) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		if optional {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("%s is required (YYYY-MM-DD)", name)
	}
	t, err := agenda.ParseDateKey(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return t, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	target, err := dateParam(r, "target_date", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.svc.SyncAgendas(r.Context(), target)
	if err != nil {
		if res == nil {
			writeServiceError(w, r, err)
			return
		}
		status, detail := serviceStatus(r, err)
		writeJSON(w, status, syncErrorBody{Detail: detail, Logs: res.Logs})
		return
	}
	writeData(w, res)
}

func (s *Server) handleSaveAssignment(w http.ResponseWriter, r *http.Request) {
	var a agenda.Assignment
	if err := decodeBody(w, r, &a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.SaveAssignment(r.Context(), a); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, []agenda.Assignment{a})
}

func (s *Server) handleSaveAssignmentsBulk(w http.ResponseWriter, r *http.Request) {
	var batch []agenda.Assignment
	if err := decodeBody(w, r, &batch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.SaveAssignments(r.Context(), batch); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, batch)
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "meeting_date", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.svc.Assignments(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, list)
}

func (s *Server) handleAssignmentsICS(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "meeting_date", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.svc.Assignments(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	ics := calendar.GenerateICS(calendar.Meeting{
		Date:        date,
		Assignments: list,
		Club:        s.opts.Club,
	}, s.now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="meeting-%s.ics"`, date.Format(agenda.DateLayout)))
	w.Write([]byte(ics)) // nolint:errcheck
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "meeting_date", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.svc.Suggest(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, results)
}

func (s *Server) handleAgendas(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "meeting_date", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if date.IsZero() {
		list, err := s.svc.Agendas(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeData(w, list)
		return
	}

	a, err := s.svc.Agenda(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, a)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	members, err := s.svc.Members(r.Context(), all)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, members)
}

type addMembersRequest struct {
	Names []string `json:"names"`
}

func (s *Server) handleAddMembers(w http.ResponseWriter, r *http.Request) {
	var req addMembersRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.svc.AddMembers(r.Context(), req.Names)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, map[string]int{"added": n})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
