package handlers

import (
	"errors"
	"net/http"
	"time"

	"snip_api/middlewares"
	"snip_api/tasks"
	"snip_api/tools"
	"snip_api/types"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// SubmitPostHandler accepts a multipart form with an optional text
// field and zero or more image files, uploads the images and creates
// the post record. Validation of every image happens before the first
// upload, so a rejected request never leaves blobs behind. An upload
// failure mid-batch does leave the earlier objects orphaned — there is
// no rollback, they stay until the bucket is cleaned by hand.
func SubmitPostHandler(logger tools.Logger, store tools.PostStore, blobs tools.BlobStore, scheduler tasks.SweepScheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Validate all images before uploading any of them.
		middlewares.ImageValidationMiddleware(logger)(c)
		if c.IsAborted() {
			return
		}

		uploadsInterface, _ := c.Get(middlewares.ImageUploadsKey)
		uploads, _ := uploadsInterface.([]types.ImageUpload)

		text := c.PostForm(types.FIREBASE_POSTS_FIELDS_TEXT)
		if text == "" && len(uploads) == 0 {
			tools.LogError(logger, c, http.StatusBadRequest,
				errors.New("either text or images must be provided"))
			return
		}

		imageUrls := make([]string, 0, len(uploads))
		for _, upload := range uploads {
			url, err := blobs.Upload(c, upload.File, upload.ContentType, upload.Extension)
			upload.File.Close()
			if err != nil {
				tools.LogError(logger, c, http.StatusInternalServerError, err)
				return
			}

			imageUrls = append(imageUrls, url)
		}

		post := types.NewPost(text, imageUrls, time.Now())
		if err := store.Create(c, &post); err != nil {
			tools.LogError(logger, c, http.StatusInternalServerError, err)
			return
		}

		// The Firestore TTL policy already covers expiry; the scheduled
		// sweep just makes the purge prompt. Not worth failing the post.
		if err := scheduler.ScheduleSweep(c, post.ExpiresAt); err != nil {
			logger.Log(logging.Entry{
				Severity: logging.Warning,
				Payload:  "Error scheduling cleanup sweep at post expiry",
				Labels:   map[string]string{"error": err.Error(), "postId": post.Id},
			})
		}

		c.JSON(http.StatusCreated, gin.H{
			"post": post,
		})
	}
}

// GetPostsHandler lists all live posts, newest first. Posts whose TTL
// has elapsed are filtered out even when their documents still exist.
func GetPostsHandler(logger tools.Logger, store tools.PostStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := store.Live(c, time.Now())
		if err != nil {
			tools.LogError(logger, c, http.StatusInternalServerError, err)
			return
		}

		if posts == nil {
			posts = []types.Post{}
		}

		c.JSON(http.StatusOK, gin.H{
			"posts": posts,
		})
	}
}

// DeletePostHandler removes one post and its images. Each blob
// deletion is independent and best-effort; the record goes away even
// when a blob refuses to.
func DeletePostHandler(logger tools.Logger, store tools.PostStore, blobs tools.BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		post, err := store.ByID(c, id)
		if err != nil {
			tools.LogError(logger, c, http.StatusInternalServerError, err)
			return
		}
		if post == nil {
			tools.LogError(logger, c, http.StatusNotFound, errors.New("post not found"))
			return
		}

		for _, imageUrl := range post.Images {
			if err := blobs.Delete(c, imageUrl); err != nil {
				logger.Log(logging.Entry{
					Severity: logging.Warning,
					Payload:  "Error deleting image from storage",
					Labels:   map[string]string{"error": err.Error(), "url": imageUrl},
				})
			}
		}

		if err := store.Delete(c, post.Id); err != nil {
			tools.LogError(logger, c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Post deleted successfully",
		})
	}
}
