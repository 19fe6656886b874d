package types

import "mime/multipart"

// ImageUpload is one validated image file from a multipart submission,
// ready to be copied to blob storage. The handler that consumes it is
// responsible for closing File.
type ImageUpload struct {
	File        multipart.File
	ContentType string
	Extension   string
}
