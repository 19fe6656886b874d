package tools

import (
	"context"
	"time"

	"snip_api/types"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PostStore is the database contract the handlers work against:
// create, list by expiry filter, find by id, delete by id. Delete is
// idempotent — deleting an absent id is not an error, which lets the
// cleanup sweep, manual deletion and the Firestore TTL policy race
// safely for the same record.
type PostStore interface {
	Create(ctx context.Context, post *types.Post) error
	Live(ctx context.Context, now time.Time) ([]types.Post, error)
	Expired(ctx context.Context, now time.Time) ([]types.Post, error)
	ByID(ctx context.Context, id string) (*types.Post, error)
	Delete(ctx context.Context, id string) error
}

// FirestorePostStore keeps posts in the posts collection. Background
// expiry relies on the project's Firestore TTL policy on the expiresAt
// field; the store itself only filters and deletes.
type FirestorePostStore struct {
	client *firestore.Client
}

func NewFirestorePostStore(client *firestore.Client) *FirestorePostStore {
	return &FirestorePostStore{client: client}
}

// Create writes the post as a new document and fills in the assigned id.
func (s *FirestorePostStore) Create(ctx context.Context, post *types.Post) error {
	doc := s.client.Collection(types.FIREBASE_POSTS_COLLECTION).NewDoc()
	post.Id = doc.ID

	_, err := doc.Set(ctx, map[string]interface{}{
		types.FIREBASE_POSTS_FIELDS_ID:         post.Id,
		types.FIREBASE_POSTS_FIELDS_TEXT:       post.Text,
		types.FIREBASE_POSTS_FIELDS_IMAGES:     post.Images,
		types.FIREBASE_POSTS_FIELDS_CREATED_AT: post.CreatedAt,
		types.FIREBASE_POSTS_FIELDS_EXPIRES_AT: post.ExpiresAt,
	})

	return err
}

// Live returns all posts with expiresAt after now, newest first.
// Ordering by expiresAt descending equals createdAt descending because
// the TTL is a fixed constant, and Firestore wants the first sort key
// on the inequality field.
func (s *FirestorePostStore) Live(ctx context.Context, now time.Time) ([]types.Post, error) {
	query := s.client.Collection(types.FIREBASE_POSTS_COLLECTION).
		Where(types.FIREBASE_POSTS_FIELDS_EXPIRES_AT, ">", now).
		OrderBy(types.FIREBASE_POSTS_FIELDS_EXPIRES_AT, firestore.Desc)

	return s.queryPosts(ctx, query)
}

// Expired returns all posts whose expiresAt has passed. The Firestore
// TTL policy deletes the same documents in the background, so the
// result may be empty even right after posts expire.
func (s *FirestorePostStore) Expired(ctx context.Context, now time.Time) ([]types.Post, error) {
	query := s.client.Collection(types.FIREBASE_POSTS_COLLECTION).
		Where(types.FIREBASE_POSTS_FIELDS_EXPIRES_AT, "<", now)

	return s.queryPosts(ctx, query)
}

// ByID returns the post with the given id, or nil when no such
// document exists.
func (s *FirestorePostStore) ByID(ctx context.Context, id string) (*types.Post, error) {
	doc, err := s.client.Collection(types.FIREBASE_POSTS_COLLECTION).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	post := postFromData(doc.Data())
	return &post, nil
}

// Delete removes the post document. Deleting a document that is
// already gone succeeds.
func (s *FirestorePostStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(types.FIREBASE_POSTS_COLLECTION).Doc(id).Delete(ctx)
	return err
}

func (s *FirestorePostStore) queryPosts(ctx context.Context, query firestore.Query) ([]types.Post, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var posts []types.Post

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		posts = append(posts, postFromData(doc.Data()))
	}

	return posts, nil
}

func postFromData(data map[string]interface{}) types.Post {
	post := types.Post{
		Images: convertInterfaceToArrayString(data[types.FIREBASE_POSTS_FIELDS_IMAGES]),
	}

	if id, ok := data[types.FIREBASE_POSTS_FIELDS_ID].(string); ok {
		post.Id = id
	}
	if text, ok := data[types.FIREBASE_POSTS_FIELDS_TEXT].(string); ok {
		post.Text = text
	}
	if createdAt, ok := data[types.FIREBASE_POSTS_FIELDS_CREATED_AT].(time.Time); ok {
		post.CreatedAt = createdAt
	}
	if expiresAt, ok := data[types.FIREBASE_POSTS_FIELDS_EXPIRES_AT].(time.Time); ok {
		post.ExpiresAt = expiresAt
	}

	return post
}

func convertInterfaceToArrayString(data interface{}) []string {
	if data == nil {
		return []string{}
	}

	dataSlice, ok := data.([]interface{})
	if !ok {
		return []string{}
	}

	result := make([]string, 0, len(dataSlice))
	for _, v := range dataSlice {
		if str, ok := v.(string); ok {
			result = append(result, str)
		}
	}

	return result
}
