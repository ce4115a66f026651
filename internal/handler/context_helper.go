package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

// uploadField is the multipart field carrying spreadsheet uploads.
const uploadField = "file"

type uploadChecker interface {
	CheckFile(filename string, size int64) (service.RosterFileKind, error)
	MaxUploadBytes() int64
}

// currentUser writes a 401 and returns false when the JWT middleware did not run.
func currentUser(c *gin.Context) (*models.JWTClaims, bool) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// readUpload loads the multipart file after checking its extension and size.
func readUpload(c *gin.Context, checker uploadChecker) (service.RosterFile, bool) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("multipart field %q is required", uploadField)))
		return service.RosterFile{}, false
	}
	if _, err := checker.CheckFile(header.Filename, header.Size); err != nil {
		response.Error(c, err)
		return service.RosterFile{}, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
		return service.RosterFile{}, false
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, checker.MaxUploadBytes()+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return service.RosterFile{}, false
	}
	if int64(len(data)) > checker.MaxUploadBytes() {
		response.Error(c, appErrors.ErrFileTooLarge)
		return service.RosterFile{}, false
	}
	return service.RosterFile{Filename: header.Filename, Data: data}, true
}

func sendDownload(c *gin.Context, download *service.Download) {
	response.Attachment(c, download.Filename, download.ContentType, download.Data)
}
