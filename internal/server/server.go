package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dodam-health/glucoquest/internal/domain"
	apperrors "github.com/dodam-health/glucoquest/internal/errors"
	"github.com/dodam-health/glucoquest/internal/logger"
	"github.com/dodam-health/glucoquest/internal/services"
	"github.com/dodam-health/glucoquest/internal/utils"
)

// Server exposes the coaching engine over JSON HTTP. Identity comes from
// the auth provider; when none is configured (local development, tests)
// requests fall back to query-parameter profiles.
type Server struct {
	quests   *services.QuestService
	analysis *services.AnalysisService
	auth     domain.AuthProvider
	profiles domain.ProfileCache
	httpSrv  *http.Server
}

func New(port string, quests *services.QuestService, analysis *services.AnalysisService, auth domain.AuthProvider, profiles domain.ProfileCache) *Server {
	s := &Server{
		quests:   quests,
		analysis: analysis,
		auth:     auth,
		profiles: profiles,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/subjects/", s.route)
	mux.HandleFunc("/api/v1/quests/", s.routeQuests)

	s.httpSrv = &http.Server{
		Addr:              ":" + port,
		Handler:           withRequestID(withRecovery(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	logger.Info("http server listening", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// route dispatches /api/v1/subjects/{id}/... paths.
func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/subjects/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, apperrors.NewValidationError("subject id is required"))
		return
	}
	subjectID, err := parseID(parts[0])
	if err != nil {
		writeError(w, err)
		return
	}

	principal, err := s.resolvePrincipal(r, subjectID)
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "quests" && r.Method == http.MethodGet:
		s.handleListQuests(w, r, subjectID)
	case len(parts) == 3 && parts[1] == "quests" && parts[2] == "generate" && r.Method == http.MethodPost:
		s.handleGenerateQuests(w, r, principal)
	case len(parts) == 4 && parts[1] == "quests" && parts[3] == "complete" && r.Method == http.MethodPost:
		s.handleCompleteQuest(w, r, subjectID, parts[2])
	case len(parts) == 2 && parts[1] == "metrics" && r.Method == http.MethodGet:
		s.handleMetrics(w, r, subjectID)
	case len(parts) == 2 && parts[1] == "impacts" && r.Method == http.MethodGet:
		s.handleImpacts(w, r, subjectID)
	case len(parts) == 3 && parts[1] == "reports" && r.Method == http.MethodGet:
		s.handleReport(w, r, principal, parts[2])
	default:
		http.NotFound(w, r)
	}
}

// routeQuests dispatches /api/v1/quests/{id}/approval.
func (s *Server) routeQuests(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/quests/"), "/"), "/")
	if len(parts) == 2 && parts[1] == "approval" && r.Method == http.MethodPost {
		s.handleApproval(w, r, parts[0])
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerateQuests(w http.ResponseWriter, r *http.Request, principal *domain.Principal) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	}

	result, err := s.quests.GenerateDaily(r.Context(), principal.SubjectID, date, principal.Age)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Generated {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"quests":        result.Quests,
		"fallback_used": result.FallbackUsed,
		"generated":     result.Generated,
	})
}

func (s *Server) handleListQuests(w http.ResponseWriter, r *http.Request, subjectID uint) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	}
	if !utils.ValidDate(date) {
		writeError(w, apperrors.NewValidationError("date must be formatted as YYYY-MM-DD"))
		return
	}

	quests, err := s.quests.List(r.Context(), subjectID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quests": quests})
}

func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request, subjectID uint, rawQuestID string) {
	questID, err := parseID(rawQuestID)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.quests.Complete(r.Context(), subjectID, questID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quest":           result.Quest,
		"completed_count": result.CompletedCount,
		"total_count":     result.TotalCount,
		"encouragement":   result.Encouragement,
	})
}

func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request, rawQuestID string) {
	questID, err := parseID(rawQuestID)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Approved bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.NewValidationError("request body must be JSON with an approved field"))
		return
	}

	quest, err := s.quests.Approve(r.Context(), questID, body.Approved)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quest": quest})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request, subjectID uint) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	}

	metrics, err := s.analysis.DailyMetrics(r.Context(), subjectID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "metrics": metrics})
}

func (s *Server) handleImpacts(w http.ResponseWriter, r *http.Request, subjectID uint) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	}

	report, err := s.analysis.DailyImpacts(r.Context(), subjectID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, principal *domain.Principal, audience string) {
	var aud services.Audience
	switch audience {
	case "child":
		aud = services.AudienceChild
	case "parent":
		aud = services.AudienceParent
	default:
		http.NotFound(w, r)
		return
	}

	report, err := s.analysis.WeeklyReportFor(r.Context(), principal.SubjectID, principal.Age, aud)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// resolvePrincipal looks up the caller profile, consulting the cache before
// the auth backend. Without an auth provider the profile comes from query
// parameters.
func (s *Server) resolvePrincipal(r *http.Request, subjectID uint) (*domain.Principal, error) {
	if s.profiles != nil {
		if p, ok := s.profiles.Get(r.Context(), subjectID); ok {
			return p, nil
		}
	}

	var principal *domain.Principal
	if s.auth != nil {
		token := bearerToken(r)
		if token == "" {
			return nil, apperrors.New(apperrors.ErrorTypeValidation, "MISSING_TOKEN", "authorization bearer token is required")
		}
		p, err := s.auth.Verify(r.Context(), token)
		if err != nil {
			return nil, err
		}
		principal = p
	} else {
		age, _ := strconv.Atoi(r.URL.Query().Get("age"))
		principal = &domain.Principal{SubjectID: subjectID, Age: age}
	}

	if s.profiles != nil {
		s.profiles.Set(r.Context(), principal.SubjectID, principal)
	}
	return principal, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("id must be a positive integer")
	}
	return uint(id), nil
}
