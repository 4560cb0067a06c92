package httptransport

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"voicecast-server-go/internal/app/services"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/errors"
	"voicecast-server-go/internal/platform/logging"
)

// WebAPI exposes the synthesis pipeline over REST.
type WebAPI struct {
	service  *services.VoiceCastService
	audioDir string
	logger   *logging.Logger
}

func NewWebAPI(service *services.VoiceCastService, cfg *config.Config, logger *logging.Logger) *WebAPI {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &WebAPI{
		service:  service,
		audioDir: cfg.Audio.OutputDir,
		logger:   logger,
	}
}

// RegisterRoutes mounts all endpoints on the API group.
func (w *WebAPI) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/health", w.health)
	api.GET("/voices", w.voices)

	sessions := api.Group("/sessions")
	sessions.POST("", w.importConversation)
	sessions.GET("", w.listSessions)
	sessions.GET("/:id", w.sessionResults)
	sessions.POST("/:id/generate", w.generate)
	sessions.PUT("/:id/speakers/:speaker/voice", w.setSpeakerVoice)

	api.GET("/audio/:filename", w.serveAudio)
}

func (w *WebAPI) health(c *gin.Context) {
	RespondSuccess(c, http.StatusOK, gin.H{"status": "ok"}, "")
}

func (w *WebAPI) voices(c *gin.Context) {
	voices, err := w.service.Voices(c.Request.Context())
	if err != nil {
		w.respondError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, voices, "")
}

// importConversation accepts either a JSON body or a multipart upload with
// the chat export in a "file" field.
func (w *WebAPI) importConversation(c *gin.Context) {
	var req services.ImportRequest

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req.Platform = c.PostForm("platform")
		req.GroupName = c.PostForm("group_name")
		req.MainUser = c.PostForm("main_user")

		file, err := c.FormFile("file")
		if err != nil {
			RespondError(c, http.StatusBadRequest, "file field is required", nil)
			return
		}
		opened, err := file.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "failed to open upload", nil)
			return
		}
		defer opened.Close()
		content, err := io.ReadAll(opened)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "failed to read upload", nil)
			return
		}
		req.Content = string(content)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	session, err := w.service.Import(c.Request.Context(), req)
	if err != nil {
		w.respondError(c, err)
		return
	}
	RespondSuccess(c, http.StatusCreated, session, "conversation imported")
}

func (w *WebAPI) listSessions(c *gin.Context) {
	sessions, err := w.service.Sessions(c.Request.Context(), c.Query("main_user"))
	if err != nil {
		w.respondError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, sessions, "")
}

func (w *WebAPI) sessionResults(c *gin.Context) {
	session, results, err := w.service.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		w.respondError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, gin.H{
		"session": session,
		"results": results,
	}, "")
}

func (w *WebAPI) generate(c *gin.Context) {
	var opts services.GenerateOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}

	outcome, err := w.service.Generate(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		// "nothing to assemble" still carries the per-line results
		if outcome != nil {
			RespondError(c, http.StatusUnprocessableEntity, err.Error(), outcome)
			return
		}
		w.respondError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, outcome, "generation completed")
}

func (w *WebAPI) setSpeakerVoice(c *gin.Context) {
	var body struct {
		VoiceID string `json:"voice_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "voice_id is required", nil)
		return
	}

	err := w.service.SetSpeakerVoice(c.Request.Context(), c.Param("id"), c.Param("speaker"), body.VoiceID)
	if err != nil {
		w.respondError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, nil, "voice assigned")
}

// serveAudio streams one artifact or fragment. The filename is restricted to
// a bare name so the handler cannot escape the audio directory.
func (w *WebAPI) serveAudio(c *gin.Context) {
	filename := c.Param("filename")
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		RespondError(c, http.StatusBadRequest, "invalid filename", nil)
		return
	}
	c.File(filepath.Join(w.audioDir, filename))
}

func (w *WebAPI) respondError(c *gin.Context, err error) {
	switch {
	case errors.IsKind(err, errors.KindStorage) && strings.Contains(err.Error(), "not found"):
		RespondError(c, http.StatusNotFound, err.Error(), nil)
	case errors.IsKind(err, errors.KindConfig), errors.IsKind(err, errors.KindScript):
		RespondError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		w.logger.ErrorTag("HTTP", "request failed: %v", err)
		RespondError(c, http.StatusInternalServerError, err.Error(), nil)
	}
}
