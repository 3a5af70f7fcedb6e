// Package store is the persistence layer used by the request handlers.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"generalstuff/models"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSlug means another post already owns the slug.
	ErrDuplicateSlug = errors.New("slug already taken")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) postsOrdered(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Author").Order("created_at DESC").Order("title")
}

func (s *Store) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return count > 0, nil
}

func (s *Store) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *Store) PublishedPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := s.postsOrdered(ctx).Where("is_published = ?", true).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}
	return posts, nil
}

func (s *Store) AllPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := s.postsOrdered(ctx).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// SearchPosts returns posts whose title or text contains term, compared
// with Unicode case folding. SQLite's LIKE only folds ASCII, so matching
// happens here rather than in the query.
func (s *Store) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	all, err := s.AllPosts(ctx)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(term)

	matches := make([]models.Post, 0, len(all))
	for _, p := range all {
		if strings.Contains(fold.String(p.Title), needle) || strings.Contains(fold.String(p.Text), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Create(post).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlug
	}
	return err
}

func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Omit("Author").Save(post).Error
}

// DeletePost removes the post together with its comments.
func (s *Store) DeletePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
}

func (s *Store) CommentsFor(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Tagline returns the canonical (lowest id) tagline row. found is false when
// no row exists; err is only set when the query itself failed.
func (s *Store) Tagline(ctx context.Context) (tagline *models.Tagline, found bool, err error) {
	var rows []models.Tagline
	if err := s.db.WithContext(ctx).Order("id").Limit(1).Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("loading tagline: %w", err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return &rows[0], true, nil
}

// SaveTagline updates the row when it has an id and inserts it otherwise.
func (s *Store) SaveTagline(ctx context.Context, tagline *models.Tagline) error {
	return s.db.WithContext(ctx).Save(tagline).Error
}

func (s *Store) DreamTeam(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.WithContext(ctx).Preload("Account").
		Where("dream_team = ?", true).
		Order("phone_number").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("listing dream team: %w", err)
	}
	return profiles, nil
}
