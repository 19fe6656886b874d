package tasks

import (
	"context"
	"fmt"
	"time"

	"snip_api/config"
	"snip_api/types"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// SweepScheduler arranges for a cleanup sweep to run at a given time.
// Scheduling is best-effort: the Firestore TTL policy and any later
// sweep cover for a task that was never created.
type SweepScheduler interface {
	ScheduleSweep(ctx context.Context, at time.Time) error
}

// CloudTasksScheduler enqueues an HTTP task that hits the cleanup
// endpoint. Submitting a post schedules one sweep at its expiry, so
// expired posts are purged promptly without a standing cron.
type CloudTasksScheduler struct {
	client     *cloudtasks.Client
	projectID  string
	locationID string
	queueID    string
	serviceURL string
}

func NewCloudTasksScheduler(client *cloudtasks.Client, google config.GoogleConfig) *CloudTasksScheduler {
	return &CloudTasksScheduler{
		client:     client,
		projectID:  google.ProjectID,
		locationID: google.LocationID,
		queueID:    google.CleanupQueueID,
		serviceURL: google.ServiceURL,
	}
}

func (s *CloudTasksScheduler) ScheduleSweep(ctx context.Context, at time.Time) error {
	if s.queueID == "" || s.locationID == "" || s.serviceURL == "" {
		return fmt.Errorf("cleanup queue is not configured")
	}

	queuePath := fmt.Sprintf("projects/%s/locations/%s/queues/%s",
		s.projectID, s.locationID, s.queueID)

	req := &taskspb.CreateTaskRequest{
		Parent: queuePath,
		Task: &taskspb.Task{
			ScheduleTime: timestamppb.New(at),
			MessageType: &taskspb.Task_HttpRequest{
				HttpRequest: &taskspb.HttpRequest{
					HttpMethod: taskspb.HttpMethod_GET,
					Url:        s.serviceURL + types.CLEANUP_HANDLER_PATH,
				},
			},
		},
	}

	_, err := s.client.CreateTask(ctx, req)
	return err
}
