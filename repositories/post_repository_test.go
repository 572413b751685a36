package repositories_test

import (
	"testing"

	"github.com/snap-point/follow-api/models"
	"github.com/snap-point/follow-api/repositories"
	"github.com/snap-point/follow-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository(t *testing.T) {
	db := testutil.NewDB(t)
	posts := repositories.NewPostRepository(db)
	alice := testutil.CreateAccount(t, db, "alice", false)
	bob := testutil.CreateAccount(t, db, "bob", false)

	published := &models.Post{Content: "hi", AuthorID: alice.ID, Status: models.PostStatusPublished, AllowComments: true}
	require.NoError(t, posts.Create(published))
	require.NoError(t, posts.Create(&models.Post{Content: "wip", AuthorID: alice.ID, Status: models.PostStatusDraft}))

	list, total, err := posts.ByAuthor(alice.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "hi", list[0].Content)

	loaded, err := posts.ByID(published.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Author.Username())

	_, err = posts.ByID(9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, posts.AddComment(&models.Comment{Content: "nice", AuthorID: bob.ID, PostID: published.ID}))
	comments, err := posts.Comments(published.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Author.Username())
}

func TestToggleLike(t *testing.T) {
	db := testutil.NewDB(t)
	posts := repositories.NewPostRepository(db)
	alice := testutil.CreateAccount(t, db, "alice", false)
	post := &models.Post{Content: "hi", AuthorID: alice.ID, Status: models.PostStatusPublished}
	require.NoError(t, posts.Create(post))

	liked, err := posts.ToggleLike(post.ID, alice.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, liked)
	count, err := posts.LikeCount(post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	liked, err = posts.ToggleLike(post.ID, alice.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.True(t, liked)
	count, err = posts.LikeCount(post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	liked, err = posts.ToggleLike(post.ID, alice.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.False(t, liked)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestPostRepositoryEditAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	posts := repositories.NewPostRepository(db)
	alice := testutil.CreateAccount(t, db, "alice", false)
	bob := testutil.CreateAccount(t, db, "bob", false)

	post := &models.Post{Content: "draft text", AuthorID: alice.ID, Status: models.PostStatusDraft, AllowComments: true}
	require.NoError(t, posts.Create(post))

	post.Content = "final text"
	post.Status = models.PostStatusPublished
	post.AllowComments = false
	require.NoError(t, posts.Update(post))

	loaded, err := posts.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final text", loaded.Content)
	assert.True(t, loaded.Published())
	assert.False(t, loaded.AllowComments)

	comment := &models.Comment{Content: "nice", AuthorID: bob.ID, PostID: post.ID}
	require.NoError(t, posts.AddComment(comment))

	found, err := posts.CommentByID(post.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", found.Author.Username())
	_, err = posts.CommentByID(post.ID+1, comment.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, posts.DeleteComment(comment.ID))
	assert.ErrorIs(t, posts.DeleteComment(comment.ID), repositories.ErrNotFound)

	require.NoError(t, posts.AddComment(&models.Comment{Content: "again", AuthorID: bob.ID, PostID: post.ID}))
	_, err = posts.ToggleLike(post.ID, bob.ID, models.ReactionLike)
	require.NoError(t, err)

	require.NoError(t, posts.Delete(post.ID))
	_, err = posts.ByID(post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	comments, err := posts.Comments(post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	count, err := posts.LikeCount(post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, posts.Delete(post.ID), repositories.ErrNotFound)
}
