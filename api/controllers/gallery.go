package controllers

import (
	"net/http"

	"github.com/crumbandco/cakeshop-backend/api/responses"
	"github.com/crumbandco/cakeshop-backend/api/validators"
	gallerysvc "github.com/crumbandco/cakeshop-backend/internal/gallery"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

// GalleryList serves the public cake wall with freshly signed image URLs.
func GalleryList(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gallery service unavailable"))
			return
		}

		images, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"images": images})
	}
}

type galleryRequest struct {
	Title      string  `json:"title" validate:"required"`
	Caption    *string `json:"caption"`
	ObjectPath string  `json:"object_path" validate:"required"`
	Position   int     `json:"position"`
}

func (g galleryRequest) toInput() gallerysvc.UpsertInput {
	return gallerysvc.UpsertInput{
		Title:      g.Title,
		Caption:    g.Caption,
		ObjectPath: g.ObjectPath,
		Position:   g.Position,
	}
}

func AdminGalleryCreate(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gallery service unavailable"))
			return
		}

		var body galleryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, image)
	}
}

func AdminGalleryUpdate(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gallery service unavailable"))
			return
		}

		imageID, err := parseUUIDParam(r, "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body galleryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.Update(r.Context(), imageID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, image)
	}
}

func AdminGalleryDelete(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gallery service unavailable"))
			return
		}

		imageID, err := parseUUIDParam(r, "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
