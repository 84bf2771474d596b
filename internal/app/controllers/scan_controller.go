package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
)

// Subscriber attaches a websocket connection to a topic
type Subscriber interface {
	Subscribe(w http.ResponseWriter, r *http.Request, topic string, operatorID int64) error
}

// ScanController drives face recognition attendance sessions
type ScanController struct {
	scanService services.ScanService
	subscriber  Subscriber
	maxUpload   int64
	logger      zerolog.Logger
}

// NewScanController creates a new ScanController
func NewScanController(scanService services.ScanService, subscriber Subscriber, maxUpload int64, logger zerolog.Logger) *ScanController {
	return &ScanController{
		scanService: scanService,
		subscriber:  subscriber,
		maxUpload:   maxUpload,
		logger:      logger,
	}
}

// StartSession encodes the class gallery and opens a session
// @Summary Start a scan session
// @Tags scans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartScanRequest true "Class and subject"
// @Success 201 {object} dto.APIResponse{data=dto.ScanSessionResponse}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail} "Not scheduled today"
// @Failure 422 {object} dto.APIResponse{error=dto.ErrorDetail} "No usable photos"
// @Failure 503 {object} dto.APIResponse{error=dto.ErrorDetail} "Face encoder unavailable"
// @Router /scans [post]
func (c *ScanController) StartSession(ctx *gin.Context) {
	var req dto.StartScanRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.scanService.Start(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("sessionId", session.ID).
		Int64("classId", session.ClassID).
		Int64("subjectId", session.SubjectID).
		Int64("operatorId", middleware.OperatorID(ctx)).
		Msg("Scan session started")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(session))
}

func (c *ScanController) GetSession(ctx *gin.Context) {
	session, err := c.scanService.Get(ctx.Param("sessionId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, session)
}

// PostFrame matches the faces of one camera frame. The frame is either a
// multipart "frame" field or a raw image body.
func (c *ScanController) PostFrame(ctx *gin.Context) {
	var (
		frame []byte
		err   error
	)
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		frame, err = readUpload(ctx, "frame", c.maxUpload)
	} else {
		frame, err = readLimited(ctx.Request.Body, c.maxUpload)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.scanService.ProcessFrame(ctx, ctx.Param("sessionId"), frame)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, result)
}

// CloseSession ends a session and returns who was marked present
func (c *ScanController) CloseSession(ctx *gin.Context) {
	summary, err := c.scanService.Close(ctx.Param("sessionId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, summary)
}

// Stream upgrades to a websocket that receives the session's events
func (c *ScanController) Stream(ctx *gin.Context) {
	id := ctx.Param("sessionId")
	if _, err := c.scanService.Get(id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.subscriber.Subscribe(ctx.Writer, ctx.Request, id, middleware.OperatorID(ctx)); err != nil {
		c.logger.Warn().Err(err).Str("sessionId", id).Msg("Websocket subscription failed")
	}
}
