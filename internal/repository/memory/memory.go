// Package memory implements the repository interfaces with mutex-guarded
// maps. It exists for tests: the services run identically against MongoDB
// and this package, including the error values and the pagination quirk.
//
// Insertion order is tracked explicitly so listings are deterministic —
// a map range would shuffle "natural order" between runs.
package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
)

// Store bundles one in-memory repo per collection, mirroring mongodb.DB.
type Store struct {
	Users      *UserRepo
	Follows    *FollowRepo
	Posts      *PostRepo
	Likes      *LikeRepo
	Categories *CategoryRepo
	Products   *ProductRepo
	Offers     *OfferRepo
	Carts      *CartRepo
	Reviews    *ReviewRepo
}

func New() *Store {
	return &Store{
		Users:      &UserRepo{users: map[primitive.ObjectID]*model.User{}},
		Follows:    &FollowRepo{edges: map[primitive.ObjectID]*model.Following{}},
		Posts:      &PostRepo{posts: map[primitive.ObjectID]*model.Post{}},
		Likes:      &LikeRepo{likes: map[primitive.ObjectID]*model.Like{}},
		Categories: &CategoryRepo{categories: map[primitive.ObjectID]*model.Category{}},
		Products:   &ProductRepo{products: map[primitive.ObjectID]*model.Product{}},
		Offers:     &OfferRepo{offers: map[primitive.ObjectID]*model.Offer{}},
		Carts:      &CartRepo{carts: map[primitive.ObjectID]*model.Cart{}},
		Reviews:    &ReviewRepo{reviews: map[primitive.ObjectID]*model.Review{}},
	}
}

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*model.User
	order []primitive.ObjectID
}

func (r *UserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UID == user.UID || u.Email == user.Email {
			return apperror.Conflict("User already exists")
		}
	}

	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	stored := *user
	r.users[user.ID] = &stored
	r.order = append(r.order, user.ID)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id.Hex())
	}
	out := *u
	return &out, nil
}

func (r *UserRepo) GetByUID(_ context.Context, uid string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.users[id]; u.UID == uid {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", uid)
}

func (r *UserRepo) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, uid, name, picture string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UID == uid {
			u.Name = name
			u.Picture = picture
			u.UpdatedAt = time.Now()
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", uid)
}

func (r *UserRepo) PushFollowing(_ context.Context, userID, edgeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[userID]; ok {
		u.Following = append(u.Following, edgeID)
	}
	return nil
}

func (r *UserRepo) PullFollowing(_ context.Context, userID, edgeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	kept := u.Following[:0]
	for _, id := range u.Following {
		if id != edgeID {
			kept = append(kept, id)
		}
	}
	u.Following = kept
	return nil
}

var _ repository.FollowRepository = (*FollowRepo)(nil)

type FollowRepo struct {
	mu    sync.RWMutex
	edges map[primitive.ObjectID]*model.Following
}

func (r *FollowRepo) Get(_ context.Context, user, following primitive.ObjectID) (*model.Following, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.edges {
		if e.User == user && e.Following == following {
			out := *e
			return &out, nil
		}
	}
	return nil, apperror.NotFound("following", user.Hex()+"/"+following.Hex())
}

func (r *FollowRepo) Create(_ context.Context, edge *model.Following) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.edges {
		if e.User == edge.User && e.Following == edge.Following {
			return apperror.Duplicate("Already following this user")
		}
	}

	edge.ID = primitive.NewObjectID()
	edge.CreatedAt = time.Now()
	stored := *edge
	r.edges[edge.ID] = &stored
	return nil
}

func (r *FollowRepo) Delete(_ context.Context, user, following primitive.ObjectID) (*model.Following, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.edges {
		if e.User == user && e.Following == following {
			out := *e
			delete(r.edges, id)
			return &out, nil
		}
	}
	return nil, apperror.Duplicate("Not following this user")
}

var _ repository.PostRepository = (*PostRepo)(nil)

type PostRepo struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]*model.Post
	order []primitive.ObjectID
}

func (r *PostRepo) Create(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Images == nil {
		post.Images = []string{}
	}
	if post.Items == nil {
		post.Items = []model.Item{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}

	stored := *post
	r.posts[post.ID] = &stored
	r.order = append(r.order, post.ID)
	return nil
}

func (r *PostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id.Hex())
	}
	out := *p
	return &out, nil
}

func (r *PostRepo) List(_ context.Context) ([]model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]model.Post, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.posts[id]; ok {
			posts = append(posts, *p)
		}
	}
	return posts, nil
}

func (r *PostRepo) Update(_ context.Context, id primitive.ObjectID, patch repository.PostPatch) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id.Hex())
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	if patch.Items != nil {
		p.Items = *patch.Items
	}
	if patch.IsBuySell != nil {
		p.IsBuySell = *patch.IsBuySell
	}
	p.UpdatedAt = time.Now()
	out := *p
	return &out, nil
}

func (r *PostRepo) DeleteOwned(_ context.Context, id, author primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.Author != author {
		return apperror.NotFound("post", id.Hex())
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepo) PushLike(_ context.Context, postID, likeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.posts[postID]; ok {
		p.Likes = append(p.Likes, likeID)
	}
	return nil
}

func (r *PostRepo) PullLike(_ context.Context, postID, likeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil
	}
	kept := p.Likes[:0]
	for _, id := range p.Likes {
		if id != likeID {
			kept = append(kept, id)
		}
	}
	p.Likes = kept
	return nil
}

var _ repository.LikeRepository = (*LikeRepo)(nil)

type LikeRepo struct {
	mu    sync.RWMutex
	likes map[primitive.ObjectID]*model.Like
}

func (r *LikeRepo) Get(_ context.Context, post, user primitive.ObjectID) (*model.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.likes {
		if l.Post == post && l.User == user {
			out := *l
			return &out, nil
		}
	}
	return nil, apperror.NotFound("like", post.Hex()+"/"+user.Hex())
}

func (r *LikeRepo) Create(_ context.Context, like *model.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.likes {
		if l.Post == like.Post && l.User == like.User {
			return apperror.Duplicate("User has already liked the post")
		}
	}

	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now()
	stored := *like
	r.likes[like.ID] = &stored
	return nil
}

func (r *LikeRepo) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.likes, id)
	return nil
}

func (r *LikeRepo) ListByPost(_ context.Context, post primitive.ObjectID) ([]model.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	likes := []model.Like{}
	for _, l := range r.likes {
		if l.Post == post {
			likes = append(likes, *l)
		}
	}
	return likes, nil
}

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

type CategoryRepo struct {
	mu         sync.RWMutex
	categories map[primitive.ObjectID]*model.Category
	order      []primitive.ObjectID
}

func (r *CategoryRepo) Create(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now
	stored := *category
	r.categories[category.ID] = &stored
	r.order = append(r.order, category.ID)
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id.Hex())
	}
	out := *c
	return &out, nil
}

func (r *CategoryRepo) List(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.order))
	for _, id := range r.order {
		categories = append(categories, *r.categories[id])
	}
	return categories, nil
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

type ProductRepo struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]*model.Product
	order    []primitive.ObjectID
}

func (r *ProductRepo) Create(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}
	if product.Offers == nil {
		product.Offers = []primitive.ObjectID{}
	}
	stored := *product
	r.products[product.ID] = &stored
	r.order = append(r.order, product.ID)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id.Hex())
	}
	out := *p
	return &out, nil
}

// paginate applies the contract's offset computation: skip is (page-1)*10
// with a fixed page size of 10, regardless of limit.
func paginate(n int, opts repository.ListOptions) (skip, limit int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 10
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	skip = (page - 1) * 10
	if skip > n {
		skip = n
	}
	return skip, limit
}

func (r *ProductRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(nil, opts), nil
}

func (r *ProductRepo) ListByCategory(_ context.Context, categories []primitive.ObjectID, opts repository.ListOptions) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := map[primitive.ObjectID]bool{}
	for _, c := range categories {
		want[c] = true
	}
	match := func(p *model.Product) bool {
		for _, c := range p.Category {
			if want[c] {
				return true
			}
		}
		return false
	}
	return r.listLocked(match, opts), nil
}

func (r *ProductRepo) listLocked(match func(*model.Product) bool, opts repository.ListOptions) []model.Product {
	ids := make([]primitive.ObjectID, len(r.order))
	copy(ids, r.order)
	if opts.Desc {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}

	filtered := []model.Product{}
	for _, id := range ids {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		if match == nil || match(p) {
			filtered = append(filtered, *p)
		}
	}

	skip, limit := paginate(len(filtered), opts)
	filtered = filtered[skip:]
	if limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered
}

func (r *ProductRepo) Update(_ context.Context, id primitive.ObjectID, patch repository.ProductPatch) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id.Hex())
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.QuantityAvailable != nil {
		p.QuantityAvailable = *patch.QuantityAvailable
	}
	if patch.ImageURLs != nil {
		p.ImageURLs = *patch.ImageURLs
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Offers != nil {
		p.Offers = *patch.Offers
	}
	p.UpdatedAt = time.Now()
	out := *p
	return &out, nil
}

func (r *ProductRepo) DeleteOwned(_ context.Context, id, author primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || p.Author != author {
		return apperror.NotFound("product", id.Hex())
	}
	delete(r.products, id)
	return nil
}

var _ repository.OfferRepository = (*OfferRepo)(nil)

type OfferRepo struct {
	mu     sync.RWMutex
	offers map[primitive.ObjectID]*model.Offer
	order  []primitive.ObjectID
}

func (r *OfferRepo) Create(_ context.Context, offer *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	offer.ID = primitive.NewObjectID()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	stored := *offer
	r.offers[offer.ID] = &stored
	r.order = append(r.order, offer.ID)
	return nil
}

func (r *OfferRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.offers[id]
	if !ok {
		return nil, apperror.NotFound("offer", id.Hex())
	}
	out := *o
	return &out, nil
}

func (r *OfferRepo) List(_ context.Context) ([]model.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	offers := make([]model.Offer, 0, len(r.order))
	for _, id := range r.order {
		if o, ok := r.offers[id]; ok {
			offers = append(offers, *o)
		}
	}
	return offers, nil
}

func (r *OfferRepo) Update(_ context.Context, id primitive.ObjectID, patch repository.OfferPatch) (*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.offers[id]
	if !ok {
		return nil, apperror.NotFound("offer", id.Hex())
	}
	if patch.Name != nil {
		o.Name = *patch.Name
	}
	if patch.Description != nil {
		o.Description = *patch.Description
	}
	if patch.Image != nil {
		o.Image = *patch.Image
	}
	if patch.DiscountPercentage != nil {
		o.DiscountPercentage = *patch.DiscountPercentage
	}
	if patch.StartDate != nil {
		o.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		o.EndDate = *patch.EndDate
	}
	o.UpdatedAt = time.Now()
	out := *o
	return &out, nil
}

func (r *OfferRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.offers[id]; !ok {
		return apperror.NotFound("offer", id.Hex())
	}
	delete(r.offers, id)
	return nil
}

var _ repository.CartRepository = (*CartRepo)(nil)

type CartRepo struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]*model.Cart
	order []primitive.ObjectID
}

func (r *CartRepo) Create(_ context.Context, cart *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cart.ID = primitive.NewObjectID()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	if cart.Products == nil {
		cart.Products = []primitive.ObjectID{}
	}
	stored := *cart
	r.carts[cart.ID] = &stored
	r.order = append(r.order, cart.ID)
	return nil
}

func (r *CartRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[id]
	if !ok {
		return nil, apperror.NotFound("cart", id.Hex())
	}
	out := *c
	return &out, nil
}

func (r *CartRepo) List(_ context.Context) ([]model.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	carts := make([]model.Cart, 0, len(r.order))
	for _, id := range r.order {
		if c, ok := r.carts[id]; ok {
			carts = append(carts, *c)
		}
	}
	return carts, nil
}

func (r *CartRepo) Update(_ context.Context, id primitive.ObjectID, user primitive.ObjectID, products []primitive.ObjectID) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[id]
	if !ok {
		return nil, apperror.NotFound("cart", id.Hex())
	}
	c.User = user
	if products == nil {
		products = []primitive.ObjectID{}
	}
	c.Products = products
	c.UpdatedAt = time.Now()
	out := *c
	return &out, nil
}

func (r *CartRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[id]; !ok {
		return apperror.NotFound("cart", id.Hex())
	}
	delete(r.carts, id)
	return nil
}

var _ repository.ReviewRepository = (*ReviewRepo)(nil)

type ReviewRepo struct {
	mu      sync.RWMutex
	reviews map[primitive.ObjectID]*model.Review
	order   []primitive.ObjectID
}

func (r *ReviewRepo) Create(_ context.Context, review *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now
	stored := *review
	r.reviews[review.ID] = &stored
	r.order = append(r.order, review.ID)
	return nil
}

func (r *ReviewRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rev, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review", id.Hex())
	}
	out := *rev
	return &out, nil
}

func (r *ReviewRepo) List(_ context.Context) ([]model.Review, error) {
	return r.listFiltered(func(*model.Review) bool { return true }), nil
}

func (r *ReviewRepo) ListByUser(_ context.Context, user primitive.ObjectID) ([]model.Review, error) {
	return r.listFiltered(func(rev *model.Review) bool { return rev.User == user }), nil
}

func (r *ReviewRepo) ListByProduct(_ context.Context, product primitive.ObjectID) ([]model.Review, error) {
	return r.listFiltered(func(rev *model.Review) bool { return rev.Product == product }), nil
}

func (r *ReviewRepo) listFiltered(match func(*model.Review) bool) []model.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := []model.Review{}
	for _, id := range r.order {
		if rev, ok := r.reviews[id]; ok && match(rev) {
			reviews = append(reviews, *rev)
		}
	}
	return reviews
}

func (r *ReviewRepo) Update(_ context.Context, id primitive.ObjectID, rating *int, comment *string) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rev, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review", id.Hex())
	}
	if rating != nil {
		rev.Rating = *rating
	}
	if comment != nil {
		rev.Comment = *comment
	}
	rev.UpdatedAt = time.Now()
	out := *rev
	return &out, nil
}

func (r *ReviewRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return apperror.NotFound("review", id.Hex())
	}
	delete(r.reviews, id)
	return nil
}
