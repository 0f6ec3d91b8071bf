package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	postsCacheSize   = 10 * 1024 * 1024
	postsCacheExpire = 10 * 60 // seconds
	allPostsCacheKey = "posts::all"
)

var _ blogRepo = (*CachedRepo)(nil)

// CachedRepo keeps the posts list and single posts in memory; any post write drops the cached entries.
// Comments always go to the underlying repo.
type CachedRepo struct {
	blogRepo
	cache *freecache.Cache

	// generation changes on every post write; a read fetched under an older generation is not cached
	mutex      sync.Mutex
	generation uint64
}

func NewCachedRepo(repo blogRepo) *CachedRepo {
	return &CachedRepo{
		blogRepo: repo,
		cache:    freecache.NewCache(postsCacheSize),
	}
}

func postCacheKey(id int) []byte {
	return []byte(fmt.Sprintf("post::%d", id))
}

func (r *CachedRepo) All(ctx context.Context) ([]*Post, error) {
	if postsBytes, err := r.cache.Get([]byte(allPostsCacheKey)); err == nil {
		var posts []*Post
		if err := json.Unmarshal(postsBytes, &posts); err == nil {
			log.Trace("posts list found in cache")
			return posts, nil
		} else {
			log.Errorf("posts cache, unmarshal posts list: %s", err)
		}
	}

	generation := r.currentGeneration()
	posts, err := r.blogRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	r.set([]byte(allPostsCacheKey), posts, generation)
	return posts, nil
}

func (r *CachedRepo) GetPost(ctx context.Context, id int) (*Post, error) {
	if postBytes, err := r.cache.Get(postCacheKey(id)); err == nil {
		post := &Post{}
		if err := json.Unmarshal(postBytes, post); err == nil {
			return post, nil
		} else {
			log.Errorf("posts cache, unmarshal post %d: %s", id, err)
		}
	}

	generation := r.currentGeneration()
	post, err := r.blogRepo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	r.set(postCacheKey(id), post, generation)
	return post, nil
}

func (r *CachedRepo) AddPost(ctx context.Context, post *Post) error {
	if err := r.blogRepo.AddPost(ctx, post); err != nil {
		return err
	}
	r.invalidate(post.ID)
	return nil
}

func (r *CachedRepo) UpdatePost(ctx context.Context, post *Post) error {
	// invalidate even on error, the row might have changed anyway
	defer r.invalidate(post.ID)
	return r.blogRepo.UpdatePost(ctx, post)
}

func (r *CachedRepo) DeletePost(ctx context.Context, id int) error {
	defer r.invalidate(id)
	return r.blogRepo.DeletePost(ctx, id)
}

func (r *CachedRepo) currentGeneration() uint64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.generation
}

func (r *CachedRepo) set(key []byte, value any, generation uint64) {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		log.Errorf("posts cache, marshal [%s]: %s", key, err)
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if generation != r.generation {
		log.Tracef("posts cache, skip stale [%s]", key)
		return
	}
	if err := r.cache.Set(key, valueBytes, postsCacheExpire); err != nil {
		log.Errorf("posts cache, set [%s]: %s", key, err)
	}
}

func (r *CachedRepo) invalidate(postID int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.generation++
	r.cache.Del([]byte(allPostsCacheKey))
	r.cache.Del(postCacheKey(postID))
}
