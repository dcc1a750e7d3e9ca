package market

import "context"

type ForumService struct {
	store PostRepo
}

func NewForumService(store PostRepo) *ForumService {
	return &ForumService{store: store}
}

func (s *ForumService) CreatePost(ctx context.Context, authorID int64, title, content string) (*Post, error) {
	if title == "" || content == "" {
		return nil, Validation(CodeInvalidInput, "title and content are required")
	}
	p := &Post{Title: title, Content: content, AuthorID: authorID}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ForumService) List(ctx context.Context, keyword string, page, size int) ([]Post, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return s.store.ListPosts(ctx, keyword, page, size)
}

// Detail bumps the view counter and returns the post.
func (s *ForumService) Detail(ctx context.Context, id int64) (*Post, error) {
	if err := s.store.IncrementPostViews(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.store.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NotFound(CodePostNotFound, "post not found")
	}
	return p, nil
}

func (s *ForumService) PostsByUser(ctx context.Context, userID int64) ([]Post, error) {
	return s.store.PostsByUser(ctx, userID)
}
