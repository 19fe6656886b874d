package types

import "time"

const (
	FIREBASE_POSTS_COLLECTION = "posts"

	FIREBASE_POSTS_FIELDS_ID         = "id"
	FIREBASE_POSTS_FIELDS_TEXT       = "text"
	FIREBASE_POSTS_FIELDS_IMAGES     = "images"
	FIREBASE_POSTS_FIELDS_CREATED_AT = "createdAt"
	FIREBASE_POSTS_FIELDS_EXPIRES_AT = "expiresAt"

	FIREBASE_STORAGE_POSTS_FOLDER = "posts/"

	CLEANUP_HANDLER_PATH = "/cleanup"

	// Every post expires this long after creation. The Firestore TTL
	// policy on the expiresAt field and the cleanup sweep both key on it.
	POSTS_TTL = 12 * time.Hour

	MAX_IMAGE_SIZE_BYTES = 100 * 1024 * 1024
)

// Image MIME types accepted on ingestion.
var ALLOWED_IMAGE_TYPES = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/gif":     true,
	"image/svg+xml": true,
	"image/heic":    true,
}
