// Package api exposes the plugin methods over HTTP.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smskit/internal/logger"
	"smskit/internal/permission"
	"smskit/internal/plugin"
	"smskit/pkg/errors"
)

type Invoker interface {
	Invoke(ctx context.Context, method string, args plugin.Args) (interface{}, error)
}

// PermissionRequests is the part of permission.Flow the decision routes use.
type PermissionRequests interface {
	Pending() (*permission.Handle, bool)
	Resolve(ctx context.Context, id string, granted bool) error
}

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.WarnwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

type Handler struct {
	BaseHandler
	plugin   Invoker
	requests PermissionRequests
}

func NewHandler(p Invoker, requests PermissionRequests, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{Logger: log},
		plugin:      p,
		requests:    requests,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		methods := v1.Group("/methods")
		{
			methods.GET("", h.ListMethods)
			methods.POST("/:method", h.InvokeMethod)
		}

		v1.GET("/platform/version", h.GetPlatformVersion)

		perm := v1.Group("/permission")
		{
			perm.GET("", h.GetPermission)
			perm.POST("/requests", h.RequestPermission)
			perm.POST("/requests/:id/decision", h.DecidePermission)
		}

		messages := v1.Group("/sms")
		{
			messages.GET("", h.ReadSms)
			messages.GET("/simple", h.GetSimpleSms)
			messages.GET("/transactions", h.GetTransactionSms)
			messages.GET("/query", h.QuerySms)
		}

		v1.POST("/classify", h.Classify)
	}
}

func (h *Handler) invoke(c *gin.Context, method string, args plugin.Args) (interface{}, bool) {
	result, err := h.plugin.Invoke(c.Request.Context(), method, args)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return result, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
}

// ListMethods godoc
// @Summary      List supported methods
// @Tags         methods
// @Produce      json
// @Success      200  {object}  MethodsResponse
// @Router       /methods [get]
func (h *Handler) ListMethods(c *gin.Context) {
	c.JSON(http.StatusOK, MethodsResponse{Methods: plugin.Methods()})
}

// InvokeMethod godoc
// @Summary      Invoke a plugin method
// @Description  Runs the named method with a JSON object of arguments and returns its raw result
// @Tags         methods
// @Accept       json
// @Produce      json
// @Param        method  path      string  true   "Method name"
// @Param        args    body      object  false  "Method arguments"
// @Success      200     {object}  interface{}
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      403     {object}  errors.ErrorResponse
// @Failure      409     {object}  errors.ErrorResponse
// @Failure      501     {object}  errors.ErrorResponse
// @Router       /methods/{method} [post]
func (h *Handler) InvokeMethod(c *gin.Context) {
	var args plugin.Args
	if err := c.ShouldBindJSON(&args); err != nil && !stderrors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	result, ok := h.invoke(c, c.Param("method"), args)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPlatformVersion godoc
// @Summary      Host platform version
// @Tags         platform
// @Produce      json
// @Success      200  {object}  PlatformVersionResponse
// @Router       /platform/version [get]
func (h *Handler) GetPlatformVersion(c *gin.Context) {
	result, ok := h.invoke(c, plugin.MethodGetPlatformVersion, nil)
	if !ok {
		return
	}
	version, _ := result.(string)
	c.JSON(http.StatusOK, PlatformVersionResponse{Version: version})
}

// GetPermission godoc
// @Summary      Current SMS permission state
// @Description  Reports granted, denied or notDetermined, plus the outstanding request if one is waiting for a decision
// @Tags         permission
// @Produce      json
// @Success      200  {object}  PermissionStatus
// @Router       /permission [get]
func (h *Handler) GetPermission(c *gin.Context) {
	result, ok := h.invoke(c, plugin.MethodCheckSmsPermission, nil)
	if !ok {
		return
	}
	state, _ := result.(string)

	resp := PermissionStatus{State: state}
	if pending, ok := h.requests.Pending(); ok {
		resp.PendingRequest = &PendingRequest{
			ID:         pending.ID(),
			Permission: pending.Permission(),
			CreatedAt:  pending.CreatedAt(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RequestPermission godoc
// @Summary      Request the SMS permission
// @Description  Blocks until the request is decided or times out
// @Tags         permission
// @Produce      json
// @Success      200  {object}  PermissionRequestResult
// @Failure      408  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /permission/requests [post]
func (h *Handler) RequestPermission(c *gin.Context) {
	result, ok := h.invoke(c, plugin.MethodRequestSmsPermission, nil)
	if !ok {
		return
	}
	state, _ := result.(string)
	c.JSON(http.StatusOK, PermissionRequestResult{State: state})
}

// DecidePermission godoc
// @Summary      Decide an outstanding permission request
// @Tags         permission
// @Accept       json
// @Param        id        path  string           true  "Request ID"
// @Param        decision  body  DecisionRequest  true  "Decision"
// @Success      204
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /permission/requests/{id}/decision [post]
func (h *Handler) DecidePermission(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := c.Param("id")
	if err := h.requests.Resolve(c.Request.Context(), id, *req.Granted); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Logger.InfowCtx(c.Request.Context(), "Permission request decided", "request_id", id, "granted", *req.Granted)
	c.Status(http.StatusNoContent)
}

// ReadSms godoc
// @Summary      Read the inbox
// @Description  Newest first, at most 100 records
// @Tags         sms
// @Produce      json
// @Success      200  {array}   sms.RawMessage
// @Failure      403  {object}  errors.ErrorResponse
// @Router       /sms [get]
func (h *Handler) ReadSms(c *gin.Context) {
	result, ok := h.invoke(c, plugin.MethodReadSms, nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSimpleSms godoc
// @Summary      Read the inbox in simplified form
// @Tags         sms
// @Produce      json
// @Param        limit  query     int  false  "Maximum records (default 100)"
// @Success      200    {array}   sms.SimplifiedMessage
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      403    {object}  errors.ErrorResponse
// @Router       /sms/simple [get]
func (h *Handler) GetSimpleSms(c *gin.Context) {
	args, ok := limitArgs(c)
	if !ok {
		return
	}

	result, ok := h.invoke(c, plugin.MethodGetSimpleSms, args)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTransactionSms godoc
// @Summary      Read transaction messages
// @Description  Scans the newest 500 records and keeps those the classifier accepts
// @Tags         sms
// @Produce      json
// @Success      200  {array}   sms.RawMessage
// @Failure      403  {object}  errors.ErrorResponse
// @Router       /sms/transactions [get]
func (h *Handler) GetTransactionSms(c *gin.Context) {
	result, ok := h.invoke(c, plugin.MethodGetTransactionSms, nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// QuerySms godoc
// @Summary      Filter the inbox with an expression
// @Description  Variables: address, body, date, type, is_transaction
// @Tags         sms
// @Produce      json
// @Param        filter  query     string  true   "Boolean filter expression"
// @Param        limit   query     int     false  "Maximum records (default 100)"
// @Success      200     {array}   sms.RawMessage
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      403     {object}  errors.ErrorResponse
// @Router       /sms/query [get]
func (h *Handler) QuerySms(c *gin.Context) {
	args, ok := limitArgs(c)
	if !ok {
		return
	}
	if filter, present := c.GetQuery("filter"); present {
		args["filter"] = filter
	}

	result, ok := h.invoke(c, plugin.MethodQuerySms, args)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// Classify godoc
// @Summary      Classify a message body
// @Tags         classifier
// @Accept       json
// @Produce      json
// @Param        message  body      ClassifyRequest  true  "Message body"
// @Success      200      {object}  classifier.Verdict
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /classify [post]
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, ok := h.invoke(c, plugin.MethodClassifySms, plugin.Args{"body": *req.Body})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func limitArgs(c *gin.Context) (plugin.Args, bool) {
	args := plugin.Args{}
	raw, present := c.GetQuery("limit")
	if !present {
		return args, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithCause(err).WithDetail("argument", "limit"),
		))
		return nil, false
	}
	args["limit"] = limit
	return args, true
}
