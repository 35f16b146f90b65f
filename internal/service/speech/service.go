// Package speech reads words aloud through a text-to-speech backend.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

var (
	// ErrSpeechUnavailable is returned for flagged words.
	ErrSpeechUnavailable = fmt.Errorf("speech disabled for flagged word: %w", domain.ErrForbidden)
	// ErrSuperseded is returned when a newer utterance in the same session
	// cancelled this one.
	ErrSuperseded = fmt.Errorf("utterance superseded: %w", context.Canceled)
)

type synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type flagRepo interface {
	Get(ctx context.Context, word string) (*domain.FlagState, error)
}

// Audio is a synthesized utterance.
type Audio struct {
	Data     []byte
	MIMEType string
}

type utterance struct {
	cancel context.CancelFunc
}

// Service speaks one utterance per session at a time.
type Service struct {
	log      *slog.Logger
	tts      synthesizer
	mimeType string
	flags    flagRepo
	cache    *lru.Cache[string, []byte]

	mu       sync.Mutex
	inflight map[uuid.UUID]*utterance
}

// NewService creates a speech service. A nil tts makes every request
// fail with domain.ErrServiceUnavailable.
func NewService(logger *slog.Logger, tts synthesizer, mimeType string, flags flagRepo, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = 500
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create speech cache: %w", err)
	}
	return &Service{
		log:      logger.With("service", "speech"),
		tts:      tts,
		mimeType: mimeType,
		flags:    flags,
		cache:    cache,
		inflight: make(map[uuid.UUID]*utterance),
	}, nil
}

// Speak returns audio for word. Starting a new utterance in a session
// cancels the one still in flight there.
func (s *Service) Speak(ctx context.Context, sessionID uuid.UUID, word string) (*Audio, error) {
	word = domain.NormalizeText(word)
	if word == "" {
		return nil, domain.NewValidationError("word", "required")
	}

	flag, err := s.flags.Get(ctx, word)
	switch {
	case err == nil && flag != nil:
		return nil, ErrSpeechUnavailable
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		s.log.WarnContext(ctx, "flag lookup failed, treating as unflagged", slog.String("word", word), slog.String("error", err.Error()))
	}

	if data, ok := s.cache.Get(word); ok {
		return &Audio{Data: data, MIMEType: s.mimeType}, nil
	}
	if s.tts == nil {
		return nil, fmt.Errorf("speech: %w", domain.ErrServiceUnavailable)
	}

	uctx, u := s.begin(ctx, sessionID)
	defer s.end(sessionID, u)

	data, err := s.tts.Synthesize(uctx, word)
	if err != nil {
		if ctx.Err() == nil && errors.Is(uctx.Err(), context.Canceled) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	s.cache.Add(word, data)
	return &Audio{Data: data, MIMEType: s.mimeType}, nil
}

// Stop cancels the utterance in flight for a session, if any. Called when the
// session moves on to another word.
func (s *Service) Stop(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.inflight[sessionID]; ok {
		u.cancel()
		delete(s.inflight, sessionID)
	}
}

func (s *Service) begin(ctx context.Context, sessionID uuid.UUID) (context.Context, *utterance) {
	uctx, cancel := context.WithCancel(ctx)
	u := &utterance{cancel: cancel}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.inflight[sessionID]; ok {
		prev.cancel()
	}
	s.inflight[sessionID] = u
	return uctx, u
}

func (s *Service) end(sessionID uuid.UUID, u *utterance) {
	u.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[sessionID] == u {
		delete(s.inflight, sessionID)
	}
}
