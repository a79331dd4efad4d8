package leave

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kirankattii/Leave-approval/internal/actiontoken"
	"github.com/kirankattii/Leave-approval/internal/shared/apperror"
	"github.com/kirankattii/Leave-approval/internal/shared/contextutil"
	"github.com/kirankattii/Leave-approval/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	svc         Service
	frontendURL string
	logger      *zap.Logger
}

func NewHandler(svc Service, frontendURL string, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{
		svc:         svc,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      l,
	}
}

func writeError(c *gin.Context, err error) {
	he := apperror.ToHTTP(err)
	response.Error(c, he.Status, he.Code, he.Message, he.Details)
}

func writeBindingError(c *gin.Context, err error) {
	writeError(c, apperror.MapValidationError(err))
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.svc.Submit(ctx, c.GetString("user_id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.svc.ListMine(ctx, c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) ListPending(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.svc.ListPending(ctx, c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) ListProcessed(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.svc.ListProcessed(ctx, c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// Approve is the authenticated dashboard approval.
func (h *Handler) Approve(c *gin.Context) {
	h.dashboardAction(c, actiontoken.ActionApprove)
}

// Reject is the authenticated dashboard rejection.
func (h *Handler) Reject(c *gin.Context) {
	h.dashboardAction(c, actiontoken.ActionReject)
}

func (h *Handler) dashboardAction(c *gin.Context, action string) {
	// The comment body is optional; an empty body is a valid decision.
	var req ActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindingError(c, err)
			return
		}
	}

	approverID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		writeError(c, apperror.ErrUnauthorized)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.svc.ApplyAction(ctx, SessionProof{ApproverID: approverID}, c.Param("id"), action, req.Comments)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// ActionWithToken handles the form posted from the email approval page.
// The token plus the approver's password authorize the transition.
func (h *Handler) ActionWithToken(c *gin.Context) {
	var form TokenActionForm
	if err := c.ShouldBind(&form); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	proof := TokenPasswordProof{Token: form.Token, Password: form.Password}
	res, err := h.svc.ApplyAction(ctx, proof, form.LeaveID, form.Action, form.Comments)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// RejectWithToken is the link target from the approver email. The token
// is consumed here and the caller lands on the dashboard to finish the
// rejection with full context.
func (h *Handler) RejectWithToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.redirectToDashboard(c, url.Values{"error": {"missing_token"}})
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	leaveID, err := h.svc.RedeemRejectEntry(ctx, TokenProof{Token: token})
	if err != nil {
		he := apperror.ToHTTP(err)
		h.redirectToDashboard(c, url.Values{"error": {strings.ToLower(he.Code)}})
		return
	}

	h.redirectToDashboard(c, url.Values{
		"leave_id": {leaveID},
		"action":   {actiontoken.ActionReject},
	})
}

func (h *Handler) redirectToDashboard(c *gin.Context, params url.Values) {
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/dashboard?%s", h.frontendURL, params.Encode()))
}
