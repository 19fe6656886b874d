package middlewares

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"snip_api/tools"
	"snip_api/types"

	"cloud.google.com/go/logging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// ImageUploadsKey is the context key under which validated uploads are
// stored for the submit handler.
const ImageUploadsKey = "imageUploads"

// ImageValidationMiddleware validates every image file on the request
// before any of them is uploaded: size at most 100MB, MIME type in the
// allowed image set. A text-only submission carries no files and passes
// through. On success the opened files are stored in the context under
// ImageUploadsKey; the consuming handler closes them.
func ImageValidationMiddleware(logger tools.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			logger.Log(logging.Entry{
				Severity: logging.Error,
				Payload:  "Failed to get the multipart form data from the request: " + err.Error(),
			})

			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			c.Abort()
			return
		}

		files := form.File[types.FIREBASE_POSTS_FIELDS_IMAGES]
		uploads := make([]types.ImageUpload, 0, len(files))

		for _, file := range files {
			upload, err := validateImageFile(file)
			if err != nil {
				closeUploads(uploads)

				logger.Log(logging.Entry{
					Severity: logging.Error,
					Payload:  "Rejected image upload: " + err.Error(),
				})

				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				c.Abort()
				return
			}

			uploads = append(uploads, upload)
		}

		c.Set(ImageUploadsKey, uploads)
		c.Next()
	}
}

func validateImageFile(file *multipart.FileHeader) (types.ImageUpload, error) {
	if err := checkImageSize(file.Size); err != nil {
		return types.ImageUpload{}, err
	}

	f, err := file.Open()
	if err != nil {
		return types.ImageUpload{}, fmt.Errorf("error opening file: %v", err)
	}

	contentType, err := resolveContentType(f, file.Header.Get("Content-Type"))
	if err != nil {
		f.Close()
		return types.ImageUpload{}, err
	}

	if err := checkImageType(contentType); err != nil {
		f.Close()
		return types.ImageUpload{}, err
	}

	return types.ImageUpload{
		File:        f,
		ContentType: contentType,
		Extension:   filepath.Ext(file.Filename),
	}, nil
}

// resolveContentType prefers the declared part header and falls back
// to sniffing the file bytes when the client declared nothing useful.
// Sniffing covers svg and heic, which net/http's detection does not.
func resolveContentType(f multipart.File, declared string) (string, error) {
	if declared != "" && declared != "application/octet-stream" {
		parsed, _, err := mime.ParseMediaType(declared)
		if err == nil {
			return parsed, nil
		}
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("error detecting file type: %v", err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return "", fmt.Errorf("error seeking file: %v", err)
	}

	return mtype.String(), nil
}

func checkImageSize(size int64) error {
	if size > types.MAX_IMAGE_SIZE_BYTES {
		return fmt.Errorf("file too large: maximum size is 100MB")
	}
	return nil
}

func checkImageType(contentType string) error {
	if !types.ALLOWED_IMAGE_TYPES[contentType] {
		return fmt.Errorf("invalid file type %q: allowed types are jpg, jpeg, png, gif, svg, heic", contentType)
	}
	return nil
}

func closeUploads(uploads []types.ImageUpload) {
	for _, upload := range uploads {
		upload.File.Close()
	}
}
