package service

import (
	"context"
	"strings"

	"campusboard/internal/domain"
)

type ContentStore interface {
	CreatePost(ctx context.Context, p domain.Post) (domain.Post, error)
	GetPost(ctx context.Context, kind domain.PostKind, id string) (domain.Post, error)
	ListPosts(ctx context.Context, kind domain.PostKind, params domain.ListParams) ([]domain.Post, error)
	UpdatePost(ctx context.Context, kind domain.PostKind, id string, title, body *string) (domain.Post, error)
	DeletePost(ctx context.Context, kind domain.PostKind, id string) error
}

// ContentService serves the events and updates boards. Authorization is the
// caller's job; by the time a write lands here the role gate already ran.
type ContentService struct {
	Store ContentStore
}

func (s *ContentService) Create(ctx context.Context, kind domain.PostKind, title, body string) (domain.Post, error) {
	title = strings.TrimSpace(title)
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(body) == "" {
		fields["body"] = "required"
	}
	if len(fields) > 0 {
		return domain.Post{}, domain.NewValidationError(fields)
	}
	return s.Store.CreatePost(ctx, domain.Post{Kind: kind, Title: title, Body: body})
}

func (s *ContentService) Get(ctx context.Context, kind domain.PostKind, id string) (domain.Post, error) {
	return s.Store.GetPost(ctx, kind, id)
}

func (s *ContentService) List(ctx context.Context, kind domain.PostKind, params domain.ListParams) ([]domain.Post, error) {
	return s.Store.ListPosts(ctx, kind, params)
}

func (s *ContentService) Update(ctx context.Context, kind domain.PostKind, id string, title, body *string) (domain.Post, error) {
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return domain.Post{}, domain.NewValidationError(map[string]string{"title": "required"})
		}
		title = &trimmed
	}
	if body != nil && strings.TrimSpace(*body) == "" {
		return domain.Post{}, domain.NewValidationError(map[string]string{"body": "required"})
	}
	return s.Store.UpdatePost(ctx, kind, id, title, body)
}

func (s *ContentService) Delete(ctx context.Context, kind domain.PostKind, id string) error {
	return s.Store.DeletePost(ctx, kind, id)
}
