package types

import "time"

type Post struct {
	Id        string    `json:"id"`
	Text      string    `json:"text"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewPost builds an unsaved post expiring POSTS_TTL after now.
// The store assigns the id on creation.
func NewPost(text string, images []string, now time.Time) Post {
	if images == nil {
		images = []string{}
	}

	return Post{
		Text:      text,
		Images:    images,
		CreatedAt: now,
		ExpiresAt: now.Add(POSTS_TTL),
	}
}

// Live reports whether the post has not yet expired at the given time.
func (p Post) Live(now time.Time) bool {
	return p.ExpiresAt.After(now)
}
