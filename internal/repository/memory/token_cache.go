package memory

import (
	"time"

	"notekeeper-be/internal/pkg/token"

	"github.com/patrickmn/go-cache"
)

// TokenCache keeps verified claims keyed by the raw token string. An entry
// never outlives the token it was derived from.
type TokenCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (r *TokenCache) Save(tokenString string, claims *token.Claims) {
	if claims == nil || claims.ExpiresAt == nil {
		return
	}
	expiry := r.ttl
	if remaining := time.Until(claims.ExpiresAt.Time); remaining < expiry {
		expiry = remaining
	}
	if expiry <= 0 {
		return
	}
	r.cache.Set(tokenString, claims, expiry)
}

func (r *TokenCache) Get(tokenString string) (*token.Claims, bool) {
	if x, found := r.cache.Get(tokenString); found {
		return x.(*token.Claims), true
	}
	return nil, false
}

func (r *TokenCache) Len() int {
	return r.cache.ItemCount()
}
