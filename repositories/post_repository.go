package repositories

import (
	"context"
	"errors"

	"github.com/snap-point/follow-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (r *PostRepository) WithContext(ctx context.Context) *PostRepository {
	return &PostRepository{DB: r.DB.WithContext(ctx)}
}

func (r *PostRepository) Create(post *models.Post) error {
	return r.DB.Omit(clause.Associations).Create(post).Error
}

func (r *PostRepository) ByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.DB.Preload("Author.User").First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// ByAuthor returns the published posts of a profile, newest first.
func (r *PostRepository) ByAuthor(authorID uint, offset, limit int) ([]models.Post, int64, error) {
	var total int64
	query := r.DB.Model(&models.Post{}).Where("author_id = ? AND status = ?", authorID, models.PostStatusPublished)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]models.Post, 0)
	err := r.DB.Where("author_id = ? AND status = ?", authorID, models.PostStatusPublished).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// Update writes the editable fields of post.
func (r *PostRepository) Update(post *models.Post) error {
	result := r.DB.Model(post).
		Select("content", "status", "allow_comments", "updated_at").
		Omit(clause.Associations).
		Updates(post)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post together with its comments and reactions.
func (r *PostRepository) Delete(postID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, postID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostRepository) AddComment(comment *models.Comment) error {
	return r.DB.Omit(clause.Associations).Create(comment).Error
}

func (r *PostRepository) Comments(postID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.DB.Preload("Author.User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// CommentByID returns a comment of postID. A comment that belongs to another
// post is reported as not found.
func (r *PostRepository) CommentByID(postID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.DB.Preload("Author.User").
		Where("post_id = ?", postID).
		First(&comment, commentID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *PostRepository) DeleteComment(commentID uint) error {
	result := r.DB.Delete(&models.Comment{}, commentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike records reaction for the profile, or removes the existing one
// when the same reaction is sent again. It reports whether a reaction is now
// stored.
func (r *PostRepository) ToggleLike(postID, profileID uint, reaction string) (bool, error) {
	liked := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("post_id = ? AND profile_id = ?", postID, profileID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{PostID: postID, ProfileID: profileID, Reaction: reaction}).Error
		case err != nil:
			return err
		case existing.Reaction == reaction:
			return tx.Delete(&existing).Error
		default:
			liked = true
			return tx.Model(&existing).Update("reaction", reaction).Error
		}
	})
	return liked, translate(err)
}

func (r *PostRepository) LikeCount(postID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Like{}).
		Where("post_id = ? AND reaction = ?", postID, models.ReactionLike).
		Count(&count).Error
	return count, err
}
