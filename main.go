package main

import (
	"log"
	"os"

	"snip_api/config"
	"snip_api/firebase"
	"snip_api/handlers"
	"snip_api/tasks"
	"snip_api/tools"
	"snip_api/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("SNIP_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize Firebase app
	firebaseApp, err := firebase.InitFirebaseApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v\n", err)
	}

	// Check each component of the Firebase app
	if firebaseApp.Admin == nil {
		log.Fatalf("Failed to initialize Firebase Admin app\n")
	}
	if firebaseApp.DB == nil {
		log.Fatalf("Failed to initialize Firestore client\n")
	}
	if firebaseApp.Storage == nil {
		log.Fatalf("Failed to initialize Google Cloud Storage client\n")
	}
	if firebaseApp.Logger == nil {
		log.Fatalf("Failed to initialize Firebase Logger\n")
	}
	if firebaseApp.TaskClient == nil {
		log.Fatalf("Failed to initialize Cloud Tasks client\n")
	}

	store := tools.NewFirestorePostStore(firebaseApp.DB)
	blobs := tools.NewGCSBlobStore(firebaseApp.Storage, cfg.Google.StorageBucket)
	scheduler := tasks.NewCloudTasksScheduler(firebaseApp.TaskClient, cfg.Google)

	r := gin.Default()

	// Disable TrustedProxies feature
	err = r.SetTrustedProxies(nil)
	if err != nil {
		log.Fatalf("Failed to set trusted proxies: %v\n", err)
	}

	// The wall is anonymous and public; any origin may read and post.
	r.Use(cors.Default())

	// Define the routes for the application
	postsGroup := r.Group("/posts")
	postsGroup.GET("", handlers.GetPostsHandler(firebaseApp.Logger, store))
	postsGroup.POST("", handlers.SubmitPostHandler(firebaseApp.Logger, store, blobs, scheduler))
	postsGroup.DELETE("/:id", handlers.DeletePostHandler(firebaseApp.Logger, store, blobs))

	// Scheduled Cloud Tasks invocations land here
	r.GET(types.CLEANUP_HANDLER_PATH, handlers.CleanupHandler(firebaseApp.Logger, store, blobs))

	// Start the server on the configured port (PORT env wins)
	r.Run("0.0.0.0:" + cfg.Server.EffectivePort())
}
