package services

import (
	"context"
	"errors"

	"github.com/snap-point/follow-api/models"
	"github.com/snap-point/follow-api/repositories"
)

// PostService gates posts, comments and reactions behind Visibility.
type PostService struct {
	posts      *repositories.PostRepository
	store      *repositories.RelationshipStore
	visibility *Visibility
}

func NewPostService(posts *repositories.PostRepository, store *repositories.RelationshipStore, visibility *Visibility) *PostService {
	return &PostService{posts: posts, store: store, visibility: visibility}
}

type PostPage struct {
	Posts []models.Post
	Total int64
}

func (s *PostService) Create(ctx context.Context, actorUserID uint, content string, draft, allowComments bool) (*models.Post, error) {
	actor, err := s.store.WithContext(ctx).EnsureProfile(actorUserID)
	if err != nil {
		return nil, userErr(err)
	}

	post := &models.Post{
		Content:       content,
		AuthorID:      actor.ID,
		Status:        models.PostStatusPublished,
		AllowComments: allowComments,
	}
	if draft {
		post.Status = models.PostStatusDraft
	}
	if err := s.posts.WithContext(ctx).Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListByAuthor returns the published posts of username when the actor may
// see them.
func (s *PostService) ListByAuthor(ctx context.Context, actorUserID uint, username string, offset, limit int) (*PostPage, error) {
	store := s.store.WithContext(ctx)

	actor, err := store.EnsureProfile(actorUserID)
	if err != nil {
		return nil, userErr(err)
	}
	author, err := store.ProfileByUsername(username)
	if err != nil {
		return nil, userErr(err)
	}
	if err := s.allow(ctx, actor, author); err != nil {
		return nil, err
	}

	posts, total, err := s.posts.WithContext(ctx).ByAuthor(author.ID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Total: total}, nil
}

// Get returns a post the actor may see. Drafts are visible to their author
// only.
func (s *PostService) Get(ctx context.Context, actorUserID, postID uint) (*models.Post, error) {
	_, post, err := s.load(ctx, actorUserID, postID)
	return post, err
}

// PostChanges lists the fields an author may edit. Nil fields are kept.
type PostChanges struct {
	Content       *string
	Draft         *bool
	AllowComments *bool
}

// Update applies changes to a post owned by the actor.
func (s *PostService) Update(ctx context.Context, actorUserID, postID uint, changes PostChanges) (*models.Post, error) {
	actor, post, err := s.load(ctx, actorUserID, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, ErrPermissionDenied
	}

	if changes.Content != nil {
		post.Content = *changes.Content
	}
	if changes.Draft != nil {
		post.Status = models.PostStatusPublished
		if *changes.Draft {
			post.Status = models.PostStatusDraft
		}
	}
	if changes.AllowComments != nil {
		post.AllowComments = *changes.AllowComments
	}

	if err := s.posts.WithContext(ctx).Update(post); err != nil {
		return nil, postErr(err)
	}
	return post, nil
}

// Delete removes a post owned by the actor with its comments and reactions.
func (s *PostService) Delete(ctx context.Context, actorUserID, postID uint) error {
	actor, post, err := s.load(ctx, actorUserID, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID {
		return ErrPermissionDenied
	}
	return postErr(s.posts.WithContext(ctx).Delete(post.ID))
}

func (s *PostService) Comment(ctx context.Context, actorUserID, postID uint, content string) (*models.Comment, error) {
	actor, post, err := s.load(ctx, actorUserID, postID)
	if err != nil {
		return nil, err
	}
	if !post.AllowComments {
		return nil, ErrCommentsDisabled
	}

	comment := &models.Comment{Content: content, AuthorID: actor.ID, PostID: post.ID}
	if err := s.posts.WithContext(ctx).AddComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *PostService) Comments(ctx context.Context, actorUserID, postID uint) ([]models.Comment, error) {
	if _, _, err := s.load(ctx, actorUserID, postID); err != nil {
		return nil, err
	}
	return s.posts.WithContext(ctx).Comments(postID)
}

// CommentDetail returns one comment of a post the actor may see.
func (s *PostService) CommentDetail(ctx context.Context, actorUserID, postID, commentID uint) (*models.Comment, error) {
	if _, _, err := s.load(ctx, actorUserID, postID); err != nil {
		return nil, err
	}
	comment, err := s.posts.WithContext(ctx).CommentByID(postID, commentID)
	if err != nil {
		return nil, commentErr(err)
	}
	return comment, nil
}

// DeleteComment removes a comment. Its author and the author of the post may
// delete it.
func (s *PostService) DeleteComment(ctx context.Context, actorUserID, postID, commentID uint) error {
	actor, post, err := s.load(ctx, actorUserID, postID)
	if err != nil {
		return err
	}

	posts := s.posts.WithContext(ctx)
	comment, err := posts.CommentByID(post.ID, commentID)
	if err != nil {
		return commentErr(err)
	}
	if comment.AuthorID != actor.ID && post.AuthorID != actor.ID {
		return ErrPermissionDenied
	}
	return commentErr(posts.DeleteComment(comment.ID))
}

// React toggles the actor's reaction on a post and returns whether a
// reaction is now stored together with the like count.
func (s *PostService) React(ctx context.Context, actorUserID, postID uint, reaction string) (bool, int64, error) {
	actor, post, err := s.load(ctx, actorUserID, postID)
	if err != nil {
		return false, 0, err
	}

	posts := s.posts.WithContext(ctx)
	reacted, err := posts.ToggleLike(post.ID, actor.ID, reaction)
	if err != nil {
		return false, 0, err
	}
	count, err := posts.LikeCount(post.ID)
	return reacted, count, err
}

func (s *PostService) load(ctx context.Context, actorUserID, postID uint) (*models.Profile, *models.Post, error) {
	actor, err := s.store.WithContext(ctx).EnsureProfile(actorUserID)
	if err != nil {
		return nil, nil, userErr(err)
	}

	post, err := s.posts.WithContext(ctx).ByID(postID)
	if err != nil {
		return nil, nil, postErr(err)
	}

	if post.AuthorID != actor.ID {
		if !post.Published() {
			return nil, nil, ErrPostNotFound
		}
		if err := s.allow(ctx, actor, &post.Author); err != nil {
			return nil, nil, err
		}
	}
	return actor, post, nil
}

func (s *PostService) allow(ctx context.Context, actor, author *models.Profile) error {
	ok, err := s.visibility.CanViewOrInteract(ctx, actor.ID, author)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func postErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

func commentErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCommentNotFound
	}
	return err
}
