package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

// UploadController accepts image uploads.
type UploadController struct {
	store services.BlobStore
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(store services.BlobStore) *UploadController {
	return &UploadController{store: store}
}

// Upload stores the multipart file field "image" and returns its URL.
func (u *UploadController) Upload(ctx *gin.Context) {
	fh, err := ctx.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "image file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "cannot read uploaded file")
		return
	}
	defer f.Close()

	rec, err := u.store.Store(ctx.Request.Context(), identity(ctx).UserID, fh.Filename, f)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"url": rec.URL, "imageUrl": rec.URL, "size": rec.Size})
}
