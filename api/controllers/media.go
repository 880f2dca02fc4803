package controllers

import (
	"net/http"

	"github.com/crumbandco/cakeshop-backend/api/responses"
	"github.com/crumbandco/cakeshop-backend/api/validators"
	mediasvc "github.com/crumbandco/cakeshop-backend/internal/media"
	"github.com/crumbandco/cakeshop-backend/pkg/enums"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

type mediaPresignRequest struct {
	Bucket    string `json:"bucket" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	MimeType  string `json:"mime_type" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,min=1"`
}

// MediaPresign hands back a short-lived signed PUT URL. The client uploads
// directly to the bucket; the API never proxies image bytes.
func MediaPresign(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var body mediaPresignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bucket, err := enums.ParseMediaBucket(body.Bucket)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bucket"))
			return
		}

		out, err := svc.PresignUpload(r.Context(), mediasvc.PresignInput{
			Bucket:    bucket,
			FileName:  body.FileName,
			MimeType:  body.MimeType,
			SizeBytes: body.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, out)
	}
}
