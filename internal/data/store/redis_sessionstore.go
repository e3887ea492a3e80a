package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/data/redisstore"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/pkg/logkit"
)

// Key layout, all in the session DB:
//
//	sess:<id>        hash  {user_id}
//	sess:<id>:docs   set   attached doc ids
//	sess:<id>:turns  list  chat turns as JSON, oldest first
//	doc:<id>:sessions set  reverse index, sessions holding this doc
type RedisSessionStore struct {
	store  *redisstore.Store
	logger *logkit.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	inner := redisstore.GetRedisStore(ctx, config.RedisSessionStore)
	if inner == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  inner,
		logger: logkit.NewLogger("SessionStore"),
	}
}

func sessionKey(id string) string     { return "sess:" + id }
func docsKey(id string) string        { return "sess:" + id + ":docs" }
func turnsKey(id string) string       { return "sess:" + id + ":turns" }
func docSessionsKey(id string) string { return "doc:" + id + ":sessions" }

func (s *RedisSessionStore) ValidateSessionId(ctx context.Context, sessionId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)
	log.Debug("validating sessionId")
	isFound, err := s.store.Exists(ctx, sessionKey(sessionId))
	if err != nil {
		log.Error("Failed to check if sessionId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisSessionStore) InitNewSession(ctx context.Context, id string, userId string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", id)
	log.Debug("Initializing new session")
	if err := s.store.Del(ctx, sessionKey(id), docsKey(id), turnsKey(id)); err != nil {
		log.Error("Error clearing session keys", "err", err)
	}
	return s.store.HashSet(ctx, sessionKey(id), "user_id", userId)
}

// AppendChatTurn always writes, success or failure upstream, so the user's
// outgoing message is never lost.
func (s *RedisSessionStore) AppendChatTurn(ctx context.Context, id string, turn jobmodel.ChatTurn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", id)
	if !s.ValidateSessionId(ctx, id) {
		err := errors.New("invalid session id")
		log.Error("Failed validation before saving turn", "err", err)
		return err
	}
	data, err := json.Marshal(turn)
	if err != nil {
		log.Error("Error marshalling chat turn", "err", err)
		return err
	}
	if err := s.store.ListPush(ctx, turnsKey(id), data); err != nil {
		log.Error("error saving chat turn", "error", err)
		return err
	}
	log.Debug("Saved chat turn")
	return nil
}

// GetHistory returns the last few turns, oldest first.
func (s *RedisSessionStore) GetHistory(ctx context.Context, sessionId string) ([]jobmodel.ChatTurn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)
	log.Debug("Getting chat history")

	raw, err := s.store.ListTail(ctx, turnsKey(sessionId), config.HistoryTurns)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}
	turns := make([]jobmodel.ChatTurn, 0, len(raw))
	for _, r := range raw {
		var t jobmodel.ChatTurn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			log.Error("Skipping malformed chat turn", "error", err)
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisSessionStore) ListAllowedDocIDs(ctx context.Context, sessionId string) ([]string, error) {
	return s.store.SetMembers(ctx, docsKey(sessionId))
}

func (s *RedisSessionStore) AttachDoc(ctx context.Context, sessionId string, docId string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)
	if !s.ValidateSessionId(ctx, sessionId) {
		return errors.New("invalid session id")
	}
	log.Debug("Attaching doc to session", "docId", docId)
	if err := s.store.SetAdd(ctx, docsKey(sessionId), docId); err != nil {
		return err
	}
	// reverse index so deletion can find every holder
	return s.store.SetAdd(ctx, docSessionsKey(docId), sessionId)
}

// DetachDoc removes a deleted document from every session that holds it, so
// later queries stop carrying its id.
func (s *RedisSessionStore) DetachDoc(ctx context.Context, docId string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "docId", docId)
	sessions, err := s.store.SetMembers(ctx, docSessionsKey(docId))
	if err != nil {
		log.Error("Error reading doc session index", "err", err)
		return err
	}
	for _, sessionId := range sessions {
		if err := s.store.SetRem(ctx, docsKey(sessionId), docId); err != nil {
			log.Error("Error detaching doc from session", "session Id", sessionId, "err", err)
			return err
		}
	}
	log.Debug("Detached doc", "sessions", len(sessions))
	return s.store.Del(ctx, docSessionsKey(docId))
}

func (s *RedisSessionStore) SessionUser(ctx context.Context, sessionId string) (string, error) {
	return s.store.HashGet(ctx, sessionKey(sessionId), "user_id")
}

func TestSessionStore(store *redisstore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logkit.NewLogger("test redis"),
	}
}
