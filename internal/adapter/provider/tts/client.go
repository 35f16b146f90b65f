// Package tts synthesizes spoken words with Google Cloud Text-to-Speech.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/googleapis/gax-go/v2"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// MIMEType is the content type of synthesized audio.
const MIMEType = "audio/mpeg"

type synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// Client wraps the Google TTS client with the configured voice.
type Client struct {
	api    synthesizer
	closer func() error
	voice  *texttospeechpb.VoiceSelectionParams
	rate   float64
	log    *slog.Logger
}

// NewClient dials Google TTS. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS.
func NewClient(ctx context.Context, cfg config.SpeechConfig, logger *slog.Logger) (*Client, error) {
	api, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("tts: create client: %w", err)
	}
	c := newClient(api, cfg, logger)
	c.closer = api.Close
	return c, nil
}

func newClient(api synthesizer, cfg config.SpeechConfig, logger *slog.Logger) *Client {
	rate := cfg.SpeakingRate
	if rate <= 0 {
		rate = 1
	}
	return &Client{
		api: api,
		voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: cfg.LanguageCode,
			Name:         cfg.VoiceName,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		rate: rate,
		log:  logger.With("adapter", "tts"),
	}
}

// Synthesize returns MP3 audio for text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: c.voice,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  c.rate,
		},
	}

	resp, err := c.api.SynthesizeSpeech(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
			return nil, fmt.Errorf("tts: synthesize: %w", context.Canceled)
		}
		if isTransient(err) {
			return nil, fmt.Errorf("tts: synthesize: %w: %w", domain.ErrServiceUnavailable, err)
		}
		return nil, fmt.Errorf("tts: synthesize: %w", err)
	}

	c.log.DebugContext(ctx, "speech synthesized", slog.Int("bytes", len(resp.AudioContent)))
	return resp.AudioContent, nil
}

// Close releases the gRPC connection.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func isTransient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
