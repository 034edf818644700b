package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
	"github.com/sakif/bazaar/internal/storage"
)

// PostService handles the feed: posts, likes, and their projections.
type PostService struct {
	posts  repository.PostRepository
	likes  repository.LikeRepository
	users  repository.UserRepository
	assets storage.ObjectStore
	logger *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	assets storage.ObjectStore,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:  posts,
		likes:  likes,
		users:  users,
		assets: assets,
		logger: logger,
	}
}

// Create uploads the attached images and persists the post referencing the
// resulting URLs. Upload failure aborts the whole operation: no partial
// post is created.
func (s *PostService) Create(ctx context.Context, author primitive.ObjectID, description string, items []model.Item, isBuySell bool, images []Upload) (*model.Post, error) {
	urls, err := uploadAll(ctx, s.assets, "images", images)
	if err != nil {
		return nil, fmt.Errorf("uploading post images: %w", err)
	}

	post := &model.Post{
		Author:      author,
		Description: description,
		Images:      urls,
		Items:       items,
		IsBuySell:   isBuySell,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID.Hex()),
		slog.String("author", author.Hex()),
		slog.Int("images", len(urls)),
	)
	return post, nil
}

// List returns every post projected for the given viewer: the author
// document resolved in place, likeCount, and whether this viewer's like
// edge is among the post's likes. viewer may be the zero ObjectID for an
// anonymous caller — the flag is then always false.
func (s *PostService) List(ctx context.Context, viewer primitive.ObjectID) ([]model.PostView, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	views := make([]model.PostView, 0, len(posts))
	for i := range posts {
		view, err := s.project(ctx, &posts[i], viewer)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Get returns a single post with its author resolved.
func (s *PostService) Get(ctx context.Context, id, viewer primitive.ObjectID) (*model.PostView, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, post, viewer)
}

// Update merges the patch into the post after checking that the caller owns
// it, and returns the updated projection.
func (s *PostService) Update(ctx context.Context, uid string, id primitive.ObjectID, patch repository.PostPatch) (*model.PostView, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caller, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if post.Author != caller.ID {
		return nil, apperror.Forbidden("Unauthorized: User does not own the post")
	}

	updated, err := s.posts.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("post updated", slog.String("id", id.Hex()))
	return s.project(ctx, updated, caller.ID)
}

// Delete removes the post, but only under a filter that matches both the id
// and the caller's authorship at once. "Not yours" and "absent" are the
// same not-found answer.
func (s *PostService) Delete(ctx context.Context, uid string, id primitive.ObjectID) error {
	caller, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return err
	}

	if err := s.posts.DeleteOwned(ctx, id, caller.ID); err != nil {
		return err
	}

	s.logger.Info("post deleted", slog.String("id", id.Hex()))
	return nil
}

// Like creates the (post, user) like edge and pushes its id onto the post's
// like list. Second identical call answers "User has already liked the
// post" — the pre-check is advisory, the unique index authoritative.
func (s *PostService) Like(ctx context.Context, postID, userID primitive.ObjectID) (*model.Like, error) {
	if _, err := s.likes.Get(ctx, postID, userID); err == nil {
		return nil, apperror.Duplicate("User has already liked the post")
	}

	like := &model.Like{Post: postID, User: userID}
	if err := s.likes.Create(ctx, like); err != nil {
		return nil, err
	}

	if err := s.posts.PushLike(ctx, postID, like.ID); err != nil {
		return nil, fmt.Errorf("appending like to post: %w", err)
	}

	s.logger.Info("post liked",
		slog.String("post", postID.Hex()),
		slog.String("user", userID.Hex()),
	)
	return like, nil
}

// Unlike removes the like edge by id and pulls it from the post's like
// list. It does not verify the like belongs to the given post — permissive
// by contract.
func (s *PostService) Unlike(ctx context.Context, postID, likeID primitive.ObjectID) error {
	if err := s.likes.DeleteByID(ctx, likeID); err != nil {
		return err
	}
	if err := s.posts.PullLike(ctx, postID, likeID); err != nil {
		return fmt.Errorf("removing like from post: %w", err)
	}

	s.logger.Info("post unliked",
		slog.String("post", postID.Hex()),
		slog.String("like", likeID.Hex()),
	)
	return nil
}

// Likers returns the resolved user documents for every like edge on the
// post.
func (s *PostService) Likers(ctx context.Context, postID primitive.ObjectID) ([]model.User, error) {
	likes, err := s.likes.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.User)
	}
	return s.users.ListByIDs(ctx, ids)
}

// project builds the feed view of a post: author resolved, like fields
// computed from the edge collection (the edge collection, not the post's
// array, is what likeCount counts).
func (s *PostService) project(ctx context.Context, post *model.Post, viewer primitive.ObjectID) (*model.PostView, error) {
	likes, err := s.likes.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	liked := false
	if !viewer.IsZero() {
		for _, l := range likes {
			if l.User == viewer {
				liked = true
				break
			}
		}
	}

	// A dangling author reference projects as a null author rather than
	// failing the whole feed.
	var author *model.User
	if u, err := s.users.GetByID(ctx, post.Author); err == nil {
		author = u
	}

	return &model.PostView{
		ID:                   post.ID,
		Author:               author,
		Description:          post.Description,
		Images:               post.Images,
		Items:                post.Items,
		IsBuySell:            post.IsBuySell,
		LikeCount:            len(likes),
		IsLikedByCurrentUser: liked,
		CreatedAt:            post.CreatedAt,
		UpdatedAt:            post.UpdatedAt,
	}, nil
}
