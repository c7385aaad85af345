// internal/app/features/credentials/upload.go
package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/dalemusser/projectorhub/internal/app/features/errors"
	"github.com/dalemusser/projectorhub/internal/app/policy/reservationpolicy"
	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/inputval"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

// multipartSlack covers the multipart framing around the file part.
const multipartSlack = 64 << 10

type uploadInput struct {
	FileName string `validate:"required,max=255" label:"File name"`
}

// ServeUpload handles POST /credentials (multipart field "file").
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := reservationpolicy.ActorFrom(r)
	if !ok {
		apperrors.Write(w, r, h.Log, apperr.Validation("Uploader is required."))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartSlack)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			apperrors.Write(w, r, h.Log, h.tooLarge())
			return
		}
		apperrors.BadRequest(w, "Invalid form data.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apperrors.BadRequest(w, "File is required.")
		return
	}
	defer file.Close()

	if header.Size > h.MaxBytes {
		apperrors.Write(w, r, h.Log, h.tooLarge())
		return
	}
	name := strings.TrimSpace(filepath.Base(header.Filename))
	if res := inputval.Validate(uploadInput{FileName: name}); res.HasErrors() {
		apperrors.BadRequest(w, res.First())
		return
	}
	if ct := detectContentType(file); ct != pdfContentType {
		h.Log.Info("credential upload rejected",
			zap.String("user_id", actor.UserID.Hex()),
			zap.String("detected", ct))
		apperrors.BadRequest(w, "Only PDF files are accepted.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "credential upload")
	defer cancel()

	key := credentialKey(time.Now().UTC())
	if err := h.Files.Put(ctx, key, file, &storage.PutOptions{ContentType: pdfContentType}); err != nil {
		apperrors.Write(w, r, h.Log, fmt.Errorf("store credential file: %w", err))
		return
	}
	url := h.Files.URL(key)

	cred, err := h.Store.Create(ctx, models.Credential{
		UserID:     actor.UserID,
		FileName:   name,
		StorageKey: key,
		URL:        url,
		Size:       header.Size,
	}, h.Retention)
	if err != nil {
		if delErr := h.Files.Delete(ctx, key); delErr != nil && !errors.Is(delErr, storage.ErrNotFound) {
			h.Log.Warn("failed to clean up credential file after create error",
				zap.String("key", key),
				zap.Error(delErr))
		}
		apperrors.Write(w, r, h.Log, err)
		return
	}

	h.Log.Info("credential uploaded",
		zap.String("credential_id", cred.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()),
		zap.Int64("size", cred.Size))

	if h.Notify != nil {
		msg := fmt.Sprintf("Your credential %q was received. It will be deleted on %s.",
			cred.FileName, cred.ExpiresAt.Format("Jan 2, 2006"))
		if err := h.Notify.Notify(ctx, actor.UserID, models.NotificationCredentialUploaded, msg); err != nil {
			h.Log.Warn("credential notification failed",
				zap.String("credential_id", cred.ID.Hex()),
				zap.Error(err))
		}
	}

	apperrors.WriteJSON(w, http.StatusCreated, cred)
}

// ServeMine handles GET /credentials/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.ListByUser(ctx, actor.UserID)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Credential{}
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"credentials": list})
}

// credentialKey places an upload under credentials/YYYY/MM/ with a random name.
// The uploader's file name is kept only on the record.
func credentialKey(now time.Time) string {
	return path.Join("credentials", now.Format("2006/01"), uuid.NewString()+".pdf")
}

func (h *Handler) tooLarge() error {
	return apperr.Validation("File must be at most %d KB.", h.MaxBytes>>10)
}

// detectContentType sniffs the first 512 bytes and rewinds the file.
func detectContentType(file io.ReadSeeker) string {
	buf := make([]byte, 512)
	n, _ := io.ReadFull(file, buf)
	_, _ = file.Seek(0, io.SeekStart)
	if n == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(buf[:n])
}
