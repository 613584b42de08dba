package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stackedwins/models"
	"stackedwins/services"
	"stackedwins/utils"
)

const (
	msgInvalidRequest = "Invalid request format."
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	healthTimeLayout  = "2006-01-02T15:04:05.000Z07:00"
)

// Services bundles what the handlers call into.
type Services struct {
	Assessments services.AssessmentService
	Baselines   services.BaselineService
	Plans       services.PlanService
	Tasks       services.TaskService
	CheckIns    services.CheckInService
	Progress    services.ProgressService
	Export      services.ExportService
	Journal     services.JournalService
	Feedback    services.FeedbackService
	Coach       services.CoachService
}

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	svc Services
	now func() time.Time
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(svc Services) *APIHandler {
	return &APIHandler{svc: svc, now: time.Now}
}

func userID(c *gin.Context) string {
	return c.GetString(utils.UserIDKey)
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, msgInvalidRequest, err)
		return false
	}
	return true
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": h.now().UTC().Format(healthTimeLayout)})
}

// NotFoundHandler answers unknown routes.
func (h *APIHandler) NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func (h *APIHandler) SubmitAssessmentHandler(c *gin.Context) {
	var in services.AssessmentInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.svc.Assessments.Submit(c.Request.Context(), userID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *APIHandler) GetAssessmentHandler(c *gin.Context) {
	res, err := h.svc.Assessments.Get(c.Request.Context(), userID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *APIHandler) ReassessmentHandler(c *gin.Context) {
	days := queryInt(c, "days", services.DefaultReassessmentDays)
	needs := h.svc.Baselines.NeedsReassessment(c.Request.Context(), userID(c), days)
	c.JSON(http.StatusOK, gin.H{"needsReassessment": needs, "threshold": days})
}

func (h *APIHandler) GeneratePlanHandler(c *gin.Context) {
	plan, err := h.svc.Plans.GeneratePlan(c.Request.Context(), userID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *APIHandler) GetCurrentPlanHandler(c *gin.Context) {
	plan, err := h.svc.Plans.GetCurrentPlan(c.Request.Context(), userID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *APIHandler) TodayTasksHandler(c *gin.Context) {
	tasks, err := h.svc.Tasks.GetTodayTasks(c.Request.Context(), userID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *APIHandler) CompleteTaskHandler(c *gin.Context) {
	var req struct {
		TaskID string `json:"taskId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Tasks.CompleteTask(c.Request.Context(), userID(c), req.TaskID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *APIHandler) AdjustTasksHandler(c *gin.Context) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !bindJSON(c, &req) {
		return
	}
	tasks, err := h.svc.Tasks.AdjustTodayPlan(c.Request.Context(), userID(c), req.Mode)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *APIHandler) SubmitCheckInHandler(c *gin.Context) {
	var in services.CheckInInput
	if !bindJSON(c, &in) {
		return
	}
	checkIn, err := h.svc.CheckIns.Submit(c.Request.Context(), userID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkIn)
}

func (h *APIHandler) CheckInHistoryHandler(c *gin.Context) {
	limit := queryInt(c, "limit", services.DefaultHistoryLimit)
	checkIns, err := h.svc.CheckIns.History(c.Request.Context(), userID(c), limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkIns)
}

// ExportCheckInsHandler streams the user's check-ins as an xlsx download.
func (h *APIHandler) ExportCheckInsHandler(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export.WriteCheckIns(c.Request.Context(), userID(c), &buf); err != nil {
		utils.RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("checkins-%s.xlsx", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *APIHandler) DashboardHandler(c *gin.Context) {
	d, err := h.svc.Progress.Dashboard(c.Request.Context(), userID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *APIHandler) MetricsHandler(c *gin.Context) {
	m, err := h.svc.Progress.Metrics(c.Request.Context(), userID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *APIHandler) CreateJournalHandler(c *gin.Context) {
	var in services.JournalInput
	if !bindJSON(c, &in) {
		return
	}
	entry, err := h.svc.Journal.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *APIHandler) ListJournalHandler(c *gin.Context) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	page, err := h.svc.Journal.List(c.Request.Context(), models.JournalFilter{
		UserID:      userID(c),
		Mood:        c.Query("mood"),
		MilestoneID: c.Query("milestoneId"),
		Limit:       queryInt(c, "limit", services.DefaultJournalLimit),
		Offset:      offset,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *APIHandler) GetJournalHandler(c *gin.Context) {
	entry, err := h.svc.Journal.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *APIHandler) UpdateJournalHandler(c *gin.Context) {
	var in services.JournalInput
	if !bindJSON(c, &in) {
		return
	}
	entry, err := h.svc.Journal.Update(c.Request.Context(), userID(c), c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *APIHandler) DeleteJournalHandler(c *gin.Context) {
	if err := h.svc.Journal.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Journal entry deleted successfully"})
}

func (h *APIHandler) SubmitFeedbackHandler(c *gin.Context) {
	var in services.FeedbackInput
	if !bindJSON(c, &in) {
		return
	}
	receipt, err := h.svc.Feedback.Submit(c.Request.Context(), userID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *APIHandler) ListFeedbackHandler(c *gin.Context) {
	items, err := h.svc.Feedback.List(c.Request.Context(), userID(c), queryInt(c, "limit", services.DefaultFeedbackLimit))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
