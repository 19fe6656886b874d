package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"testing"
	"time"

	"snip_api/types"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

type fakeLogger struct {
	entries []logging.Entry
}

func (l *fakeLogger) Log(e logging.Entry) {
	l.entries = append(l.entries, e)
}

// fakePostStore keeps posts in a map and mirrors the Firestore store's
// contract: ByID returns nil for unknown ids, Delete of an absent id
// succeeds.
type fakePostStore struct {
	posts  map[string]types.Post
	nextID int

	createErr  error
	liveErr    error
	expiredErr error
	byIDErr    error
	deleteErr  error
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[string]types.Post)}
}

func (s *fakePostStore) Create(ctx context.Context, post *types.Post) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	post.Id = fmt.Sprintf("post-%d", s.nextID)
	s.posts[post.Id] = *post
	return nil
}

func (s *fakePostStore) Live(ctx context.Context, now time.Time) ([]types.Post, error) {
	if s.liveErr != nil {
		return nil, s.liveErr
	}
	var posts []types.Post
	for _, post := range s.posts {
		if post.ExpiresAt.After(now) {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *fakePostStore) Expired(ctx context.Context, now time.Time) ([]types.Post, error) {
	if s.expiredErr != nil {
		return nil, s.expiredErr
	}
	var posts []types.Post
	for _, post := range s.posts {
		if post.ExpiresAt.Before(now) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *fakePostStore) ByID(ctx context.Context, id string) (*types.Post, error) {
	if s.byIDErr != nil {
		return nil, s.byIDErr
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (s *fakePostStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.posts, id)
	return nil
}

type fakeBlobStore struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr map[string]error
}

func (b *fakeBlobStore) Upload(ctx context.Context, r io.Reader, contentType, extension string) (string, error) {
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	url := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/test/o/posts%%2Fimg-%d%s?alt=media&token=t", len(b.uploaded)+1, extension)
	b.uploaded = append(b.uploaded, url)
	return url, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, downloadURL string) error {
	if err := b.deleteErr[downloadURL]; err != nil {
		return err
	}
	b.deleted = append(b.deleted, downloadURL)
	return nil
}

type fakeScheduler struct {
	scheduled []time.Time
	err       error
}

func (s *fakeScheduler) ScheduleSweep(ctx context.Context, at time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, at)
	return nil
}

type wall struct {
	router    *gin.Engine
	logger    *fakeLogger
	store     *fakePostStore
	blobs     *fakeBlobStore
	scheduler *fakeScheduler
}

func newTestWall() *wall {
	gin.SetMode(gin.TestMode)

	w := &wall{
		logger:    &fakeLogger{},
		store:     newFakePostStore(),
		blobs:     &fakeBlobStore{},
		scheduler: &fakeScheduler{},
	}

	r := gin.New()
	r.GET("/posts", GetPostsHandler(w.logger, w.store))
	r.POST("/posts", SubmitPostHandler(w.logger, w.store, w.blobs, w.scheduler))
	r.DELETE("/posts/:id", DeletePostHandler(w.logger, w.store, w.blobs))
	r.GET(types.CLEANUP_HANDLER_PATH, CleanupHandler(w.logger, w.store, w.blobs))

	w.router = r
	return w
}

func (w *wall) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	w.router.ServeHTTP(rec, req)
	return rec
}

// seed puts a post directly into the fake store.
func (w *wall) seed(id, text string, images []string, createdAt time.Time) {
	if images == nil {
		images = []string{}
	}
	w.store.posts[id] = types.Post{
		Id:        id,
		Text:      text,
		Images:    images,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(types.POSTS_TTL),
	}
}

type formFile struct {
	fileName    string
	contentType string
	body        []byte
}

func submitRequest(t *testing.T, text string, files []formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if text != "" {
		if err := w.WriteField(types.FIREBASE_POSTS_FIELDS_TEXT, text); err != nil {
			t.Fatalf("write text field: %v", err)
		}
	}

	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="images"; filename="`+file.fileName+`"`)
		if file.contentType != "" {
			header.Set("Content-Type", file.contentType)
		}

		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.body); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

type postResponse struct {
	Post types.Post `json:"post"`
}

type postsResponse struct {
	Posts []types.Post `json:"posts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type cleanupResponse struct {
	Message       string `json:"message"`
	PostsDeleted  int    `json:"postsDeleted"`
	ImagesDeleted int    `json:"imagesDeleted"`
}
