package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kiosk-news/kiosk/internal/entities"
	"github.com/kiosk-news/kiosk/internal/newsapi"
	"github.com/kiosk-news/kiosk/internal/toast"
)

// Posts mirrors the backend's post collection.
//
// Like and Dislike follow an optimistic protocol: the local count is mutated
// before the call resolves, then either reconciled to the server's
// authoritative count or discarded via a full refetch. A post with a call in
// flight rejects further like calls until it settles.
type Posts struct {
	api     newsapi.Client
	session *Session
	t       toast.Toaster

	mu       sync.Mutex
	posts    []*entities.Post
	inflight map[string]struct{}
}

// NewPosts creates new instance of Posts.
func NewPosts(api newsapi.Client, session *Session, t toast.Toaster) *Posts {
	return &Posts{
		api:      api,
		session:  session,
		t:        t,
		inflight: map[string]struct{}{},
	}
}

// Refresh replaces the local collection with the server's current one.
// On failure the prior collection is left untouched.
func (p *Posts) Refresh(ctx context.Context) error {
	posts, err := p.api.ListPosts(ctx)
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to fetch posts: %s", err))
		return fmt.Errorf("failed to fetch posts: %w", err)
	}

	p.mu.Lock()
	p.posts = posts
	p.mu.Unlock()

	return nil
}

// List returns a snapshot of the collection in server order.
func (p *Posts) List() []*entities.Post {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*entities.Post, len(p.posts))
	for i, v := range p.posts {
		c := *v
		out[i] = &c
	}

	return out
}

// Create sends draft to the backend and prepends the created post.
func (p *Posts) Create(ctx context.Context, draft newsapi.PostDraft) (*entities.Post, error) {
	token, err := p.session.Token()
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to create post: %s", err))
		return nil, err
	}

	post, err := p.api.CreatePost(ctx, token, draft)
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to create post: %s", err))
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	p.mu.Lock()
	p.posts = append([]*entities.Post{post}, p.posts...)
	p.mu.Unlock()

	p.t.Success("Post created successfully!")

	return post, nil
}

// Update sends patch to the backend and replaces the matching local entry
// with the returned entity.
func (p *Posts) Update(ctx context.Context, id string, patch newsapi.PostPatch) (*entities.Post, error) {
	token, err := p.session.Token()
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to update post: %s", err))
		return nil, err
	}

	post, err := p.api.UpdatePost(ctx, token, id, patch)
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to update post: %s", err))
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	p.mu.Lock()
	for i, v := range p.posts {
		if v.ID == id {
			p.posts[i] = post
			break
		}
	}
	p.mu.Unlock()

	p.t.Success("Post updated successfully!")

	return post, nil
}

// Delete removes the post from the backend, the local entry is dropped only
// after the server confirms.
func (p *Posts) Delete(ctx context.Context, id string) error {
	token, err := p.session.Token()
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to delete post: %s", err))
		return err
	}

	if err := p.api.DeletePost(ctx, token, id); err != nil {
		p.t.Error(fmt.Sprintf("Failed to delete post: %s", err))
		return fmt.Errorf("failed to delete post: %w", err)
	}

	p.mu.Lock()
	for i, v := range p.posts {
		if v.ID == id {
			p.posts = append(p.posts[:i], p.posts[i+1:]...)
			break
		}
	}
	p.mu.Unlock()

	p.t.Success("Post deleted successfully!")

	return nil
}

// Like optimistically increments the post's like count, then reconciles it to
// the server's count. On failure the whole collection is refetched to discard
// the optimistic delta.
func (p *Posts) Like(ctx context.Context, id string) error {
	return p.setLike(ctx, id, true)
}

// Dislike is the inverse of Like, the optimistic decrement is floored at zero.
func (p *Posts) Dislike(ctx context.Context, id string) error {
	return p.setLike(ctx, id, false)
}

func (p *Posts) setLike(ctx context.Context, id string, like bool) error {
	verb := "like"
	if !like {
		verb = "dislike"
	}

	token, err := p.session.Token()
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to %s post: %s", verb, err))
		return err
	}

	if err := p.applyOptimistic(id, like); err != nil {
		p.t.Error(fmt.Sprintf("Failed to %s post: %s", verb, err))
		return err
	}

	count, err := p.callLike(ctx, token, id, like)
	if err != nil {
		p.t.Error(fmt.Sprintf("Failed to %s post: %s", verb, err))

		// discard the optimistic delta, the server is the source of truth
		if rerr := p.Refresh(ctx); rerr != nil {
			log.WithError(rerr).Error("failed to resync posts after failed like")
		}

		return fmt.Errorf("failed to %s post: %w", verb, err)
	}

	p.reconcile(id, count)

	if like {
		p.t.Success("Post liked!")
	} else {
		p.t.Success("Post unliked!")
	}

	return nil
}

func (p *Posts) applyOptimistic(id string, like bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, busy := p.inflight[id]; busy {
		return ErrInFlight
	}

	post := p.find(id)
	if post == nil {
		return ErrNotFound
	}

	if like {
		post.LikeCount++
		post.Liked = true
	} else {
		if post.LikeCount > 0 {
			post.LikeCount--
		}
		post.Liked = false
	}

	p.inflight[id] = struct{}{}

	return nil
}

func (p *Posts) callLike(ctx context.Context, token, id string, like bool) (int, error) {
	defer func() {
		p.mu.Lock()
		delete(p.inflight, id)
		p.mu.Unlock()
	}()

	if like {
		return p.api.LikePost(ctx, token, id)
	}

	return p.api.DislikePost(ctx, token, id)
}

func (p *Posts) reconcile(id string, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if post := p.find(id); post != nil {
		post.LikeCount = count
	}
}

// find must be called with the lock held.
func (p *Posts) find(id string) *entities.Post {
	for _, v := range p.posts {
		if v.ID == id {
			return v
		}
	}

	return nil
}
