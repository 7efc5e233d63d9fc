package stt

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lvji-app/lvji/internal/audio"
	"github.com/lvji-app/lvji/internal/metrics"
	"github.com/lvji-app/lvji/internal/speech"
	"github.com/lvji-app/lvji/internal/utils"
)

// IflytekStreaming runs the full normalize → stream → reconcile pipeline
// against the iFlytek IAT recognizer. One Transcribe call is one session.
type IflytekStreaming struct {
	Credentials speech.Credentials
	Watchdog    time.Duration
	Metrics     *metrics.Metrics
	Logger      *logrus.Logger
}

func NewIflytekStreaming(creds speech.Credentials, watchdog time.Duration, m *metrics.Metrics, l *logrus.Logger) *IflytekStreaming {
	return &IflytekStreaming{
		Credentials: creds,
		Watchdog:    watchdog,
		Metrics:     m,
		Logger:      l,
	}
}

func (p *IflytekStreaming) Transcribe(ctx context.Context, blob []byte, contentType string, onPartial func(string)) (Result, error) {
	const op = "stt.IflytekStreaming.Transcribe"

	pcm, err := audio.Normalize(blob, contentType)
	if err != nil {
		if errors.Is(err, audio.ErrUnsupportedFormat) {
			return Result{}, utils.E(utils.CodeUnsupportedAudio, op,
				"audio format not supported; upload 16 kHz mono PCM or use the built-in recorder", err)
		}
		return Result{}, utils.E(utils.CodeInternal, op, "failed to normalize audio", err)
	}

	sess, err := speech.NewSession(speech.Config{
		Credentials: p.Credentials,
		Watchdog:    p.Watchdog,
		OnPartial:   onPartial,
		Logger:      p.Logger,
	}, pcm)
	if err != nil {
		return Result{}, err
	}

	if p.Metrics != nil {
		p.Metrics.SessionsStarted.Inc()
	}

	res, err := sess.Run(ctx)
	if err != nil {
		if p.Metrics != nil {
			p.Metrics.SessionsFailed.WithLabelValues(failureCode(err)).Inc()
		}
		return Result{}, err
	}

	if p.Metrics != nil {
		p.Metrics.SessionsSucceeded.Inc()
		p.Metrics.FramesSent.Add(float64(res.FramesSent))
		p.Metrics.SessionDuration.Observe(res.Elapsed.Seconds())
		p.Metrics.TranscriptRunes.Observe(float64(len([]rune(res.Text))))
	}

	return Result{
		Text:       res.Text,
		FramesSent: res.FramesSent,
		DurationMS: res.Elapsed.Milliseconds(),
	}, nil
}

func failureCode(err error) string {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return string(ae.Code)
	}
	return string(utils.CodeInternal)
}
