package handlers

import (
	"net/http"
	"time"

	"snip_api/tools"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// CleanupHandler purges every expired post and its images. It is the
// target of scheduled Cloud Tasks invocations and is safe to call any
// time: a failure on one post never stops the batch, and re-running
// simply finds fewer expired posts. Firestore's own TTL eviction may
// delete the same documents concurrently; "already gone" is a no-op on
// both sides.
func CleanupHandler(logger tools.Logger, store tools.PostStore, blobs tools.BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		expired, err := store.Expired(c, time.Now())
		if err != nil {
			tools.LogError(logger, c, http.StatusInternalServerError, err)
			return
		}

		postsDeleted := 0
		imagesDeleted := 0

		for _, post := range expired {
			for _, imageUrl := range post.Images {
				if err := blobs.Delete(c, imageUrl); err != nil {
					logger.Log(logging.Entry{
						Severity: logging.Warning,
						Payload:  "Error deleting expired image from storage",
						Labels:   map[string]string{"error": err.Error(), "url": imageUrl},
					})
					continue
				}
				imagesDeleted++
			}

			if err := store.Delete(c, post.Id); err != nil {
				logger.Log(logging.Entry{
					Severity: logging.Error,
					Payload:  "Error deleting expired post",
					Labels:   map[string]string{"error": err.Error(), "postId": post.Id},
				})
				continue
			}
			postsDeleted++
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Cleanup completed",
			"postsDeleted":  postsDeleted,
			"imagesDeleted": imagesDeleted,
		})
	}
}
