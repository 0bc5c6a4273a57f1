// Package session issues and checks bearer credentials. A credential is a
// signed JWT that is only honoured while its session record exists in the
// cache, which is what makes logout and password changes take effect
// immediately.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/cache"
	"github.com/kasuganosora/middleearth/config"
)

const (
	defaultTTL   = 72 * time.Hour
	cacheTimeout = 2 * time.Second
)

func sessionKey(token string) string { return "session:" + token }

func currentKey(userID int64) string { return fmt.Sprintf("session:user:%d:current", userID) }

func tokensKey(userID int64) string { return fmt.Sprintf("session:user:%d:tokens", userID) }

// Store manages session records in the cache.
type Store struct {
	cache  cache.Cache
	secret string
	ttl    time.Duration
}

func NewStore(c cache.Cache, sec config.SecurityConfig) *Store {
	ttl := sec.JWTTTLH
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{cache: c, secret: sec.JWTSecret, ttl: ttl}
}

// TTL is the lifetime of newly issued credentials.
func (s *Store) TTL() time.Duration { return s.ttl }

// Issue creates a fresh credential for userID and makes it the user's
// current one.
func (s *Store) Issue(ctx context.Context, userID int64) (string, error) {
	token, err := GenerateToken(userID, s.secret, s.ttl)
	if err != nil {
		return "", apperr.Internal("sign token", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	s.pruneTokens(ctx, userID)
	if err := s.cache.Set(ctx, sessionKey(token), strconv.FormatInt(userID, 10), s.ttl); err != nil {
		return "", apperr.Internal("store session", err)
	}
	if err := s.cache.Set(ctx, currentKey(userID), token, s.ttl); err != nil {
		return "", apperr.Internal("store session pointer", err)
	}
	if err := s.cache.SAdd(ctx, tokensKey(userID), token); err != nil {
		return "", apperr.Internal("index session", err)
	}
	return token, nil
}

// Obtain returns the user's current credential while it is still live, and
// issues a new one otherwise. reused reports which happened.
func (s *Store) Obtain(ctx context.Context, userID int64) (token string, reused bool, err error) {
	cctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	cur, err := s.cache.Get(cctx, currentKey(userID))
	cancel()
	switch {
	case err == nil:
		if uid, verr := s.Verify(ctx, cur); verr == nil && uid == userID {
			return cur, true, nil
		}
	case !cache.IsNotFound(err):
		return "", false, apperr.Internal("read session pointer", err)
	}

	token, err = s.Issue(ctx, userID)
	return token, false, err
}

// Verify returns the user a credential belongs to. Bad signatures, expired
// tokens and revoked sessions all come back as UNAUTHENTICATED.
func (s *Store) Verify(ctx context.Context, token string) (int64, error) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return 0, apperr.Unauthenticated("invalid token")
	}

	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	v, err := s.cache.Get(ctx, sessionKey(token))
	if cache.IsNotFound(err) {
		return 0, apperr.Unauthenticated("session expired")
	}
	if err != nil {
		return 0, apperr.Internal("read session", err)
	}
	if v != strconv.FormatInt(claims.UserID, 10) {
		return 0, apperr.Unauthenticated("session mismatch")
	}
	return claims.UserID, nil
}

// Revoke ends one session. Revoking an unknown or already expired credential
// succeeds without doing anything.
func (s *Store) Revoke(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	v, err := s.cache.Get(ctx, sessionKey(token))
	if cache.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return apperr.Internal("read session", err)
	}
	if err := s.cache.Del(ctx, sessionKey(token)); err != nil {
		return apperr.Internal("delete session", err)
	}

	userID, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return nil
	}
	if err := s.cache.SRem(ctx, tokensKey(userID), token); err != nil {
		return apperr.Internal("unindex session", err)
	}
	cur, err := s.cache.Get(ctx, currentKey(userID))
	if err == nil && cur == token {
		if err := s.cache.Del(ctx, currentKey(userID)); err != nil {
			return apperr.Internal("delete session pointer", err)
		}
	}
	return nil
}

// RevokeAll ends every session of userID.
func (s *Store) RevokeAll(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	tokens, err := s.cache.SMembers(ctx, tokensKey(userID))
	if err != nil {
		return apperr.Internal("list sessions", err)
	}
	keys := make([]string, 0, len(tokens)+2)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, tokensKey(userID), currentKey(userID))
	if err := s.cache.Del(ctx, keys...); err != nil {
		return apperr.Internal("delete sessions", err)
	}
	return nil
}

// pruneTokens drops index entries whose session record already expired.
// Best effort: failures only leave stale index entries behind.
func (s *Store) pruneTokens(ctx context.Context, userID int64) {
	tokens, err := s.cache.SMembers(ctx, tokensKey(userID))
	if err != nil {
		return
	}
	var stale []string
	for _, t := range tokens {
		if ok, err := s.cache.Exists(ctx, sessionKey(t)); err == nil && !ok {
			stale = append(stale, t)
		}
	}
	if len(stale) > 0 {
		_ = s.cache.SRem(ctx, tokensKey(userID), stale...)
	}
}
