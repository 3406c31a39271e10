package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	serviceTimeout = 8 * time.Second
	nasaSource     = "NASA_SIMULATION"
)

type handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func registerRoutes(r chi.Router, svc *service.Service, logger *slog.Logger) {
	h := &handler{svc: svc, logger: logger}

	r.Route("/api", func(r chi.Router) {
		r.Get("/nasa-data", h.nasaData)

		r.Route("/rivers", func(r chi.Router) {
			r.Get("/", h.listRivers)
			r.Route("/{river}", func(r chi.Router) {
				r.Get("/", h.getRiver)
				r.Get("/environment", h.getEnvironment)
				r.Put("/environment", h.updateEnvironment)
				r.Get("/predictions", h.predictions)
			})
		})

		r.Post("/auth/login", h.login)
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.register)
			r.Get("/me", h.currentUser)
			r.Get("/{id}/activities", h.activities)
			r.Get("/{id}/quiz-progress", h.quizProgress)
		})
		r.Get("/leaderboard", h.leaderboard)

		r.Get("/quiz/questions", h.questions)
		r.Post("/quiz/answers", h.answer)
		r.Post("/simulations/daily-usage", h.dailyUsage)
		r.Post("/farm/irrigation", h.irrigation)

		r.Post("/events/{id}/qr-codes", h.generateQRCode)
		r.Post("/events/check-in", h.checkIn)
	})
}

type nasaResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// nasaData keeps its own {"error": ...} body shape for compatibility with
// existing clients.
func (h *handler) nasaData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	river, err := domain.ParseRiver(q.Get("river"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid river parameter"})
		return
	}
	dataset := domain.ParseDataset(q.Get("type"))

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	data, err := h.svc.NASAData(ctx, river, dataset)
	if err != nil {
		logRequestError(r.Context(), h.logger, "failed to fetch nasa data", err, "")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch NASA data"})
		return
	}
	writeJSON(w, http.StatusOK, nasaResponse{
		Success:   true,
		Data:      data,
		Source:    nasaSource,
		Timestamp: domain.Now(),
	})
}

func (h *handler) listRivers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rivers": domain.Profiles()})
}

func (h *handler) getRiver(w http.ResponseWriter, r *http.Request) {
	river, ok := h.riverParam(w, r)
	if !ok {
		return
	}
	p, _ := domain.Profile(river)
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) getEnvironment(w http.ResponseWriter, r *http.Request) {
	river, ok := h.riverParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	report, err := h.svc.EnvironmentalData(ctx, river)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to load environmental data", err, "")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) updateEnvironment(w http.ResponseWriter, r *http.Request) {
	river, ok := h.riverParam(w, r)
	if !ok {
		return
	}
	var patch domain.EnvironmentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	updated, err := h.svc.UpdateEnvironmentalData(ctx, river, patch)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to update environmental data", err, "")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) predictions(w http.ResponseWriter, r *http.Request) {
	river, ok := h.riverParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	p, err := h.svc.Predictions(ctx, river)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to build predictions", err, "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	u, err := h.svc.Login(ctx, body.Email, body.Password)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to log in", err, "")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var body service.RegisterInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	u, err := h.svc.Register(ctx, body)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to register user", err, "")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	u, err := h.svc.CurrentUser(ctx, userID)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to load user", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) activities(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	acts, err := h.svc.Activities(ctx, userID)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to list activities", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": acts})
}

func (h *handler) quizProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	p, err := h.svc.QuizProgress(ctx, userID)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to load quiz progress", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	board, err := h.svc.Leaderboard(ctx)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to build leaderboard", err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": board})
}

func (h *handler) questions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"questions": h.svc.Questions()})
}

// answerRequest carries either an option index, graded here, or a
// client-side verdict in IsCorrect.
type answerRequest struct {
	QuestionID string `json:"questionId"`
	Option     *int   `json:"option"`
	IsCorrect  *bool  `json:"isCorrect"`
}

func (h *handler) answer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var body answerRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	switch {
	case body.Option != nil:
		res, err := h.svc.AnswerQuestion(ctx, userID, body.QuestionID, *body.Option)
		if err != nil {
			respondServiceError(w, r, h.logger, "failed to grade answer", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case body.IsCorrect != nil:
		res, err := h.svc.SubmitQuizAnswer(ctx, userID, body.QuestionID, *body.IsCorrect)
		if err != nil {
			respondServiceError(w, r, h.logger, "failed to submit answer", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		writeError(w, r, http.StatusBadRequest, "option or isCorrect is required")
	}
}

func (h *handler) dailyUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var body domain.DailyUsage
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	res, err := h.svc.SubmitDailyUsage(ctx, userID, body)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to score daily usage", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// irrigation works without a user; the header only enables NASA tuning.
func (h *handler) irrigation(w http.ResponseWriter, r *http.Request) {
	userID := headerUserID(r)
	var body domain.FieldData
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	plan, err := h.svc.IrrigationRecommendation(ctx, userID, body)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to plan irrigation", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *handler) generateQRCode(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "event id must be an integer")
		return
	}
	var body struct {
		EventType string `json:"eventType"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	code, err := h.svc.GenerateQRCode(eventID, body.EventType)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to generate qr code", err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"qrCode": code})
}

func (h *handler) checkIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var body struct {
		QRCode    string `json:"qrCode"`
		EventType string `json:"eventType"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	res, err := h.svc.ValidateQRCode(ctx, userID, body.QRCode, body.EventType)
	if err != nil {
		respondServiceError(w, r, h.logger, "failed to check in", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) riverParam(w http.ResponseWriter, r *http.Request) (domain.River, bool) {
	river, err := domain.ParseRiver(chi.URLParam(r, "river"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return "", false
	}
	return river, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := headerUserID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return "", false
	}
	return userID, true
}
