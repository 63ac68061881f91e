package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/youruser/staffbadge/internal/badge"
	imagepkg "github.com/youruser/staffbadge/internal/image"
	"github.com/youruser/staffbadge/internal/service"
	"github.com/youruser/staffbadge/internal/storage"
)

// BadgeIssuer is the part of the badge service the handlers need.
type BadgeIssuer interface {
	Issue(ctx context.Context, req badge.Request) (*service.Result, error)
}

type Handler struct {
	issuer      BadgeIssuer
	institution string
	maxUpload   int64
	log         *zap.Logger
}

func NewHandler(issuer BadgeIssuer, institution string, maxUpload int64, log *zap.Logger) *Handler {
	return &Handler{
		issuer:      issuer,
		institution: institution,
		maxUpload:   maxUpload,
		log:         log,
	}
}

type badgeForm struct {
	Name         string `form:"name" binding:"required,max=80"`
	Position     string `form:"position" binding:"required,max=80"`
	Department   string `form:"department" binding:"required,max=80"`
	Email        string `form:"email" binding:"required,email"`
	PhotoSize    string `form:"photo_size"`
	CustomWidth  string `form:"custom_width"`
	CustomHeight string `form:"custom_height"`
}

// formOverhead is the room left for the text fields and multipart framing
// on top of the photo limit.
const formOverhead = 1 << 20

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) badgeForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"institution": h.institution})
}

func (h *Handler) submitBadge(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formOverhead)

	var form badgeForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, "upload is too large", err)
			return
		}
		h.fail(c, http.StatusBadRequest, "please fill in name, position, department and a valid email", err)
		return
	}

	photo, status, err := h.readPhoto(c)
	if err != nil {
		h.fail(c, status, "please upload a photo", err)
		return
	}

	req := badge.Request{
		Name:            form.Name,
		Position:        form.Position,
		Department:      form.Department,
		InstitutionName: h.institution,
		RecipientEmail:  form.Email,
		Photo:           photo,
		Preset:          badge.Preset(form.PhotoSize),
		CustomWidth:     form.CustomWidth,
		CustomHeight:    form.CustomHeight,
	}

	res, err := h.issuer.Issue(c.Request.Context(), req)
	if err != nil {
		status, msg := issueErrorStatus(err)
		h.fail(c, status, msg, err)
		return
	}

	respond(c, http.StatusOK, "success.html", gin.H{
		"name":       req.Normalize().Name,
		"filename":   res.Filename,
		"url":        "/output/" + res.Filename,
		"email_sent": res.EmailSent,
	})
}

func (h *Handler) readPhoto(c *gin.Context) ([]byte, int, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	if fh.Size > h.maxUpload {
		return nil, http.StatusRequestEntityTooLarge, errors.New("photo too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if int64(len(data)) > h.maxUpload {
		return nil, http.StatusRequestEntityTooLarge, errors.New("photo too large")
	}
	return data, http.StatusOK, nil
}

func issueErrorStatus(err error) (int, string) {
	switch {
	case imagepkg.IsPhotoDecodeError(err):
		return http.StatusBadRequest, "the uploaded photo could not be read as an image"
	case errors.Is(err, imagepkg.ErrInvalidDimensions):
		return http.StatusBadRequest, "custom photo size must be positive and fit on the badge"
	case errors.Is(err, storage.ErrUnsafeFilename):
		return http.StatusBadRequest, "name cannot be used as a file name"
	default:
		return http.StatusInternalServerError, "failed to generate badge"
	}
}

func (h *Handler) fail(c *gin.Context, status int, msg string, err error) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("Badge request failed", fields...)
	} else {
		h.log.Warn("Badge request rejected", fields...)
	}
	respond(c, status, "error.html", gin.H{"error": msg})
}

// respond renders tmpl for browsers and JSON for API clients.
func respond(c *gin.Context, status int, tmpl string, data gin.H) {
	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: tmpl,
		Data:     data,
	})
}
