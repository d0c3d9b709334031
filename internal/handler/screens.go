package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/middleware"
	"github.com/iliyamo/justloook-provider-portal/internal/preview"
	"github.com/iliyamo/justloook-provider-portal/internal/service"
)

const (
	MsgUnsupportedImage = "Unsupported image format."
	MsgImageTooLarge    = "Image is too large."
)

// allowedImageTypes are sniffed by net/http. WebP has no signature in
// the sniffing table and is detected separately.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// CreateScreen handles POST /screens. Nothing reaches the preview cache
// until the provider is known and the form has failed its checks; a saved
// screen redirects to the screens view.
func (h *Handler) CreateScreen(c echo.Context) error {
	ctx := c.Request().Context()
	store := middleware.SessionStore(c)
	id, ok := store.Current()
	if !ok {
		return h.renderAuth(c, http.StatusUnauthorized, authPage{Error: service.MsgScreenNeedsSession})
	}

	var in service.ScreenInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	page := dashboardPage{View: service.ViewAddScreen}

	att, err := h.readAttachment(c, id.UID)
	if err != nil {
		page.Form = formView{Input: in, Error: service.Message(err, MsgUnsupportedImage)}
		return h.renderDashboard(c, statusFor(err), page)
	}

	form := service.NewScreenForm(service.ScreenFormDeps{
		Screens:  h.Screens,
		Objects:  h.Objects,
		Previews: h.Previews,
		Events:   h.Events,
		Logger:   h.Logger,
	})
	form.Edit(in, att)
	if _, err := form.Submit(ctx, store); err != nil {
		page.Form = formView{Input: form.Input(), Error: service.Message(err, service.MsgScreenSaveFailed)}
		if a := form.Attachment(); a != nil {
			page.Form.PreviewToken = h.keepPreview(ctx, a)
		}
		return h.renderDashboard(c, statusFor(err), page)
	}
	return c.Redirect(http.StatusSeeOther, "/?view="+string(service.ViewScreens)+"&notice="+noticeScreenSaved)
}

// keepPreview caches a newly uploaded image after a failed submit so the
// next attempt can reuse it. An image that came from the cache keeps its
// token.
func (h *Handler) keepPreview(ctx context.Context, att *service.Attachment) string {
	if att.PreviewToken != "" {
		return att.PreviewToken
	}
	token, err := h.Previews.Put(ctx, att.Image)
	if err != nil {
		h.Logger.WarnContext(ctx, "store image preview failed", "error", err)
		return ""
	}
	return token
}

// readAttachment returns the newly uploaded image, or the one uid kept
// from a previous failed attempt when no new file was chosen.
func (h *Handler) readAttachment(c echo.Context, uid string) (*service.Attachment, error) {
	ctx := c.Request().Context()
	fh, err := c.FormFile("image")
	if err == nil && fh.Size > 0 {
		if fh.Size > h.MaxImageBytes {
			return nil, &service.UserError{Kind: service.KindValidation, Message: MsgImageTooLarge}
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, h.MaxImageBytes+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > h.MaxImageBytes {
			return nil, &service.UserError{Kind: service.KindValidation, Message: MsgImageTooLarge}
		}
		mime, ok := allowedImageMIME(data)
		if !ok {
			return nil, &service.UserError{Kind: service.KindValidation, Message: MsgUnsupportedImage}
		}
		return &service.Attachment{Image: preview.Image{Owner: uid, Filename: fh.Filename, ContentType: mime, Data: data}}, nil
	}

	token := c.FormValue("previewToken")
	if token == "" {
		return nil, nil
	}
	img, err := h.Previews.Get(ctx, token)
	if err != nil {
		h.Logger.InfoContext(ctx, "kept preview unavailable", "error", err)
		return nil, nil
	}
	if !img.OwnedBy(uid) {
		h.Logger.WarnContext(ctx, "kept preview belongs to another provider", "uid", uid)
		return nil, nil
	}
	return &service.Attachment{PreviewToken: token, Image: img}, nil
}

// ServePreview handles GET /previews/:token for the provider who uploaded
// the image.
func (h *Handler) ServePreview(c echo.Context) error {
	id, ok := middleware.SessionStore(c).Current()
	if !ok {
		return echo.ErrNotFound
	}
	img, err := h.Previews.Get(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, preview.ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	if !img.OwnedBy(id.UID) {
		return echo.ErrNotFound
	}
	c.Response().Header().Set("Cache-Control", "private, no-store")
	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}

// ServeMedia handles GET /media/* for object stores served by this
// process.
func (h *Handler) ServeMedia(c echo.Context) error {
	if h.Media == nil {
		return echo.ErrNotFound
	}
	key, err := url.PathUnescape(c.Param("*"))
	if err != nil || key == "" {
		return echo.ErrNotFound
	}
	rc, contentType, err := h.Media.Open(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	defer rc.Close()
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
