package handlers_test

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sketchboard/models"
	"sketchboard/store"
)

// In-memory stores implementing the handler interfaces. They mirror the
// mongo stores' ordering and toggle semantics so the router can be
// exercised without a database.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return store.ErrDuplicateUsername
	}
	s.users[user.Username] = *user
	return nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

type fakePostStore struct {
	mu       sync.Mutex
	posts    map[primitive.ObjectID]*models.Post
	comments *fakeCommentStore
}

func (s *fakePostStore) Insert(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *post
	clone.LikedBy = append([]primitive.ObjectID(nil), post.LikedBy...)
	s.posts[post.ID] = &clone
	return nil
}

func (s *fakePostStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *post
	clone.LikedBy = append([]primitive.ObjectID(nil), post.LikedBy...)
	return &clone, nil
}

func (s *fakePostStore) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posts[id]
	return ok, nil
}

func (s *fakePostStore) List(_ context.Context, order string) ([]models.Post, error) {
	// Counts come from the comment store before taking our own lock, so
	// the two fakes never hold both mutexes at once.
	var counts map[primitive.ObjectID]int
	if order == store.SortMostCommented {
		counts = s.comments.countByPost()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	posts := s.snapshot()
	switch order {
	case store.SortPopular:
		sort.SliceStable(posts, func(i, j int) bool {
			if posts[i].Likes != posts[j].Likes {
				return posts[i].Likes > posts[j].Likes
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	case store.SortMostCommented:
		sort.SliceStable(posts, func(i, j int) bool {
			ci, cj := counts[posts[i].ID], counts[posts[j].ID]
			if ci != cj {
				return ci > cj
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	default:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	}
	return posts, nil
}

func (s *fakePostStore) Ranking(_ context.Context, n int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := s.snapshot()
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Likes != posts[j].Likes {
			return posts[i].Likes > posts[j].Likes
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts, nil
}

func (s *fakePostStore) ListByAuthor(_ context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []models.Post
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			clone := *p
			clone.LikedBy = append([]primitive.ObjectID(nil), p.LikedBy...)
			posts = append(posts, clone)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *fakePostStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *fakePostStore) ToggleLike(_ context.Context, postID, userID primitive.ObjectID) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return 0, false, store.ErrNotFound
	}
	for i, id := range post.LikedBy {
		if id == userID {
			post.LikedBy = append(post.LikedBy[:i], post.LikedBy[i+1:]...)
			post.Likes = len(post.LikedBy)
			return post.Likes, false, nil
		}
	}
	post.LikedBy = append(post.LikedBy, userID)
	post.Likes = len(post.LikedBy)
	return post.Likes, true, nil
}

func (s *fakePostStore) title(id primitive.ObjectID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post, ok := s.posts[id]; ok {
		return post.Title
	}
	return ""
}

// snapshot copies all posts; callers hold the lock.
func (s *fakePostStore) snapshot() []models.Post {
	posts := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		clone := *p
		clone.LikedBy = append([]primitive.ObjectID(nil), p.LikedBy...)
		posts = append(posts, clone)
	}
	return posts
}

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
	posts    *fakePostStore
}

func (s *fakeCommentStore) Insert(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *comment
	s.comments[comment.ID] = &clone
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *comment
	return &clone, nil
}

func (s *fakeCommentStore) ListByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *fakeCommentStore) ListByAuthor(_ context.Context, authorID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	comments := []models.Comment{}
	for _, c := range s.comments {
		if c.AuthorID == authorID {
			comments = append(comments, *c)
		}
	}
	s.mu.Unlock()

	// Title join happens after our lock is released; the post store
	// locks itself.
	for i := range comments {
		comments[i].PostTitle = s.posts.title(comments[i].PostID)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeCommentStore) DeleteByPost(_ context.Context, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
		}
	}
	return nil
}

func (s *fakeCommentStore) countByPost() map[primitive.ObjectID]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[primitive.ObjectID]int)
	for _, c := range s.comments {
		counts[c.PostID]++
	}
	return counts
}

func newFakeStores() (*fakeUserStore, *fakePostStore, *fakeCommentStore) {
	users := newFakeUserStore()
	posts := &fakePostStore{posts: make(map[primitive.ObjectID]*models.Post)}
	comments := &fakeCommentStore{comments: make(map[primitive.ObjectID]*models.Comment), posts: posts}
	posts.comments = comments
	return users, posts, comments
}
