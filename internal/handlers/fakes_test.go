package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
)

// In-memory repository fakes backing the handler tests. They mirror the
// filter semantics of the Mongo implementations, including the
// matched-or-not results of the conditional updates.

type fakeFriendshipRepo struct {
	records map[string]*models.Friendship
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{records: make(map[string]*models.Friendship)}
}

func (r *fakeFriendshipRepo) Create(_ context.Context, f *models.Friendship) error {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	clone := *f
	r.records[f.ID.Hex()] = &clone
	return nil
}

func (r *fakeFriendshipRepo) GetByID(_ context.Context, id string) (*models.Friendship, error) {
	if f, ok := r.records[id]; ok {
		clone := *f
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeFriendshipRepo) FindBetween(_ context.Context, userA, userB string) (*models.Friendship, error) {
	for _, f := range r.records {
		if (f.RequesterID == userA && f.AddresseeID == userB) ||
			(f.RequesterID == userB && f.AddresseeID == userA) {
			clone := *f
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeFriendshipRepo) Reopen(_ context.Context, id, requesterID, addresseeID string) error {
	f, ok := r.records[id]
	if !ok {
		return fmt.Errorf("friendship not found")
	}
	f.RequesterID = requesterID
	f.AddresseeID = addresseeID
	f.Status = models.FriendshipStatusPending
	f.UpdatedAt = time.Now()
	return nil
}

func (r *fakeFriendshipRepo) Respond(_ context.Context, id, addresseeID, status string) (bool, error) {
	f, ok := r.records[id]
	if !ok || f.AddresseeID != addresseeID || f.Status != models.FriendshipStatusPending {
		return false, nil
	}
	f.Status = status
	f.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeFriendshipRepo) Delete(_ context.Context, id, partyID string) (bool, error) {
	f, ok := r.records[id]
	if !ok || (f.RequesterID != partyID && f.AddresseeID != partyID) {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

func (r *fakeFriendshipRepo) ListBySubject(_ context.Context, subjectID, status string, skip, limit int64) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range r.records {
		if f.Status == status && (f.RequesterID == subjectID || f.AddresseeID == subjectID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFriendshipRepo) CountBySubject(_ context.Context, subjectID, status string) (int64, error) {
	var n int64
	for _, f := range r.records {
		if f.Status == status && (f.RequesterID == subjectID || f.AddresseeID == subjectID) {
			n++
		}
	}
	return n, nil
}

type fakePostRepo struct {
	posts map[string]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*models.Post)}
}

func (r *fakePostRepo) Create(_ context.Context, p *models.Post) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Images == nil {
		p.Images = []models.ImageRef{}
	}
	clone := *p
	r.posts[p.ID.Hex()] = &clone
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	if p, ok := r.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r *fakePostRepo) Find(_ context.Context, filter repositories.FeedFilter, skip, limit int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Since != nil && !p.CreatedAt.After(*filter.Since) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) Count(ctx context.Context, filter repositories.FeedFilter) (int64, error) {
	all, err := r.Find(ctx, filter, 0, int64(len(r.posts))+1)
	return int64(len(all)), err
}

func (r *fakePostRepo) UpdateContent(_ context.Context, id, content string) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	p.Content = content
	p.UpdatedAt = time.Now()
	clone := *p
	return &clone, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post not found")
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID string) (bool, error) {
	p, ok := r.posts[postID]
	if !ok || p.IsLikedBy(userID) {
		return false, nil
	}
	p.Likes = append(p.Likes, userID)
	p.LikesCount++
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID string) (bool, error) {
	p, ok := r.posts[postID]
	if !ok || !p.IsLikedBy(userID) {
		return false, nil
	}
	likes := p.Likes[:0]
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	p.Likes = likes
	p.LikesCount--
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakePostRepo) IncCommentsCount(_ context.Context, postID string, delta int) error {
	p, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	p.CommentsCount += delta
	return nil
}

type fakeCommentRepo struct {
	comments map[string]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	clone := *c
	r.comments[c.ID.Hex()] = &clone
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	if c, ok := r.comments[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeCommentRepo) Find(_ context.Context, postID, parent string, skip, limit int64) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.comments {
		if c.PostID != postID {
			continue
		}
		switch parent {
		case "":
		case repositories.ParentRoots:
			if c.ParentID != nil {
				continue
			}
		default:
			if c.ParentID == nil || *c.ParentID != parent {
				continue
			}
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCommentRepo) CountByPost(_ context.Context, postID string) (int64, error) {
	var n int64
	for _, c := range r.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, id, content string) (*models.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, nil
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	clone := *c
	return &clone, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) DeleteReplies(_ context.Context, parentID string) error {
	for id, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *fakeCommentRepo) DeleteByPost(_ context.Context, postID string) error {
	for id, c := range r.comments {
		if c.PostID == postID {
			delete(r.comments, id)
		}
	}
	return nil
}

type fakePokeRepo struct {
	pokes []*models.Poke
}

func newFakePokeRepo() *fakePokeRepo {
	return &fakePokeRepo{}
}

func (r *fakePokeRepo) Create(_ context.Context, p *models.Poke) error {
	p.ID = primitive.NewObjectID()
	clone := *p
	r.pokes = append(r.pokes, &clone)
	return nil
}

func (r *fakePokeRepo) FindRecent(_ context.Context, fromUserID, toUserID string, since time.Time) (*models.Poke, error) {
	for _, p := range r.pokes {
		if p.FromUserID == fromUserID && p.ToUserID == toUserID && !p.CreatedAt.Before(since) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakePokeRepo) CountReceived(_ context.Context, toUserID string) (int64, error) {
	var n int64
	for _, p := range r.pokes {
		if p.ToUserID == toUserID {
			n++
		}
	}
	return n, nil
}

func (r *fakePokeRepo) CountUnseen(_ context.Context, toUserID string) (int64, error) {
	var n int64
	for _, p := range r.pokes {
		if p.ToUserID == toUserID && !p.Seen {
			n++
		}
	}
	return n, nil
}

func (r *fakePokeRepo) ListReceived(_ context.Context, toUserID string, limit int64) ([]models.Poke, error) {
	var out []models.Poke
	for _, p := range r.pokes {
		if p.ToUserID == toUserID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePokeRepo) MarkAllSeen(_ context.Context, toUserID string) error {
	for _, p := range r.pokes {
		if p.ToUserID == toUserID {
			p.Seen = true
		}
	}
	return nil
}

type fakeUserRepo struct {
	profiles map[string]*models.UserProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[string]*models.UserProfile)}
}

func (r *fakeUserRepo) Upsert(p *models.UserProfile) error {
	clone := *p
	r.profiles[p.UID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByUID(uid string) (*models.UserProfile, error) {
	if p, ok := r.profiles[uid]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUIDs(uids []string) ([]models.UserProfile, error) {
	var out []models.UserProfile
	for _, uid := range uids {
		if p, ok := r.profiles[uid]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Search(query, excludeUID string, limit int) ([]models.UserProfile, error) {
	q := strings.ToLower(query)
	var out []models.UserProfile
	for _, p := range r.profiles {
		if p.UID == excludeUID {
			continue
		}
		if strings.Contains(strings.ToLower(p.Username), q) || strings.Contains(strings.ToLower(p.DisplayName), q) {
			out = append(out, *p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateBio(uid, bio string) error {
	p, ok := r.profiles[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Bio = bio
	return nil
}
