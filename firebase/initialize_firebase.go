package firebase

import (
	"context"
	"fmt"

	"snip_api/config"
	"snip_api/types"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/logging"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
)

// InitFirebaseApp builds every GCP client the wall needs: Cloud
// Logging, the Firebase app with its Firestore client, Cloud Storage
// and Cloud Tasks. Credentials come from the ambient service account.
func InitFirebaseApp(cfg *config.Config) (*types.FirebaseApp, error) {
	ctx := context.Background()

	loggingClient, err := logging.NewClient(ctx, cfg.Google.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging client: %v", err)
	}
	logger := loggingClient.Logger("snip-api")

	logger.Log(logging.Entry{
		Severity: logging.Info,
		Payload:  "Logging client initialized successfully",
		Labels:   map[string]string{"status": "success"},
	})

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Google.ProjectID})
	if err != nil {
		logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error initializing Firebase app",
			Labels:   map[string]string{"error": err.Error()},
		})
		return nil, err
	}

	db, err := app.Firestore(ctx)
	if err != nil {
		logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error initializing Firestore client",
			Labels:   map[string]string{"error": err.Error()},
		})
		return nil, err
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error initializing Google Cloud Storage client",
			Labels:   map[string]string{"error": err.Error()},
		})
		return nil, err
	}

	taskClient, err := cloudtasks.NewClient(ctx)
	if err != nil {
		logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error initializing Cloud Tasks client",
			Labels:   map[string]string{"error": err.Error()},
		})
		return nil, err
	}

	logger.Log(logging.Entry{
		Severity: logging.Info,
		Payload:  "Firebase app initialized successfully",
		Labels:   map[string]string{"status": "success"},
	})

	return &types.FirebaseApp{
		Context:    ctx,
		Admin:      app,
		DB:         db,
		Storage:    gcs,
		Logger:     logger,
		TaskClient: taskClient,
	}, nil
}
