package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lvji-app/lvji/internal/audio"
	"github.com/lvji-app/lvji/internal/utils"
)

const (
	DefaultHost = "iat-api.xfyun.cn"
	DefaultPath = "/v2/iat"

	// defaultFrameInterval models near-real-time delivery; the recognizer
	// expects roughly one 40 ms frame per 40 ms.
	defaultFrameInterval = 40 * time.Millisecond

	// defaultWatchdog fails a session when the recognizer goes silent without
	// closing the transport.
	defaultWatchdog = 20 * time.Second
)

// Config carries everything one transcription session needs. Zero values fall
// back to the recognizer's production defaults.
type Config struct {
	Credentials Credentials

	Host string
	Path string

	Language string // default "zh_cn"
	Domain   string // default "iat"
	Accent   string // default "mandarin"

	FrameInterval time.Duration
	Watchdog      time.Duration

	// OnPartial, when set, receives the running transcript after every
	// reconciled update. Called from the session's run loop.
	OnPartial func(text string)

	Logger *logrus.Logger

	// dial is a test seam; nil means a gorilla/websocket dial.
	dial dialFunc
}

// CredentialsFromEnv reads the three recognizer secrets from the environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		AppID:     os.Getenv("IFLYTEK_APP_ID"),
		APIKey:    os.Getenv("IFLYTEK_API_KEY"),
		APISecret: os.Getenv("IFLYTEK_API_SECRET"),
	}
}

// Result is a successfully resolved session.
type Result struct {
	Text       string
	FramesSent int
	Elapsed    time.Duration
}

// transport is the duplex, text-frame-capable connection a session drives.
// *websocket.Conn satisfies it.
type transport interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, data []byte, err error)
	Close() error
}

type dialFunc func(ctx context.Context, url string) (transport, error)

func wsDial(ctx context.Context, url string) (transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateStreaming
	stateDone
	stateFailed
)

type eventKind int

const (
	evMessage eventKind = iota
	evClosed
)

type event struct {
	kind eventKind
	data []byte
	err  error
}

// Session owns one end-to-end exchange with the recognizer: its own transport
// handle, frame cursor, reconciliation state and pacing timer. Sessions are
// single-use; Run may be called once.
type Session struct {
	cfg    Config
	frames [][]byte
	state  sessionState
}

// NewSession validates the preconditions that must fail before any connection
// is attempted: complete credentials and non-empty normalized audio.
func NewSession(cfg Config, pcm []byte) (*Session, error) {
	const op = "speech.NewSession"

	if !cfg.Credentials.complete() {
		return nil, utils.E(utils.CodeConfig, op, "missing recognizer credentials (IFLYTEK_APP_ID / IFLYTEK_API_KEY / IFLYTEK_API_SECRET)", nil)
	}
	if len(pcm) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio is empty, nothing to transcribe", nil)
	}

	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Language == "" {
		cfg.Language = "zh_cn"
	}
	if cfg.Domain == "" {
		cfg.Domain = "iat"
	}
	if cfg.Accent == "" {
		cfg.Accent = "mandarin"
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = defaultFrameInterval
	}
	if cfg.Watchdog <= 0 {
		cfg.Watchdog = defaultWatchdog
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.dial == nil {
		cfg.dial = wsDial
	}

	return &Session{
		cfg:    cfg,
		frames: audio.Frames(pcm, audio.FrameSize),
	}, nil
}

// Run drives the session to completion and blocks until it resolves with the
// final transcript or rejects with a typed failure. The pacing timer is
// stopped and the transport closed on every terminal transition.
func (s *Session) Run(ctx context.Context) (Result, error) {
	const op = "speech.Session.Run"

	if s.state != stateIdle {
		return Result{}, utils.E(utils.CodeInternal, op, "session already consumed", nil)
	}
	s.state = stateStreaming
	start := time.Now()

	connURL := SignedURL(s.cfg.Host, s.cfg.Path, s.cfg.Credentials, time.Now())

	conn, err := s.cfg.dial(ctx, connURL)
	if err != nil {
		s.state = stateFailed
		return Result{}, utils.E(utils.CodeConnection, op, "failed to open recognizer connection", err)
	}
	defer conn.Close()

	// Thin adapter: the reader goroutine feeds normalized events into the run
	// loop so all session logic stays single-threaded.
	events := make(chan event, 16)
	readerDone := make(chan struct{})
	defer close(readerDone)

	go func() {
		for {
			_, data, rerr := conn.ReadMessage()
			var ev event
			if rerr != nil {
				ev = event{kind: evClosed, err: rerr}
			} else {
				ev = event{kind: evMessage, data: data}
			}
			select {
			case events <- ev:
			case <-readerDone:
				return
			}
			if rerr != nil {
				return
			}
		}
	}()

	fail := func(e error) (Result, error) {
		s.state = stateFailed
		return Result{}, e
	}

	framesSent := 0
	if err := s.sendFrame(conn, statusFirstFrame, s.frames[0]); err != nil {
		return fail(utils.E(utils.CodeConnection, op, "failed to send first frame", err))
	}
	framesSent++

	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()
	pacing := true

	watchdog := time.NewTimer(s.cfg.Watchdog)
	defer watchdog.Stop()

	builder := newTranscriptBuilder()
	cursor := 0

	for {
		select {
		case <-ctx.Done():
			return fail(utils.E(utils.CodeConnection, op, "session canceled", ctx.Err()))

		case <-ticker.C:
			if !pacing {
				continue
			}
			cursor++
			if cursor >= len(s.frames) {
				if err := s.sendFrame(conn, statusEndOfStream, nil); err != nil {
					return fail(utils.E(utils.CodeConnection, op, "failed to send end-of-stream frame", err))
				}
				ticker.Stop()
				pacing = false
			} else {
				if err := s.sendFrame(conn, statusContinue, s.frames[cursor]); err != nil {
					return fail(utils.E(utils.CodeConnection, op, "failed to send audio frame", err))
				}
				framesSent++
			}

		case <-watchdog.C:
			return fail(utils.E(utils.CodeTimeout, op, "recognizer went silent before a final result", nil))

		case ev := <-events:
			if ev.kind == evClosed {
				return fail(utils.E(utils.CodeConnection, op, "connection closed before a final result", ev.err))
			}

			if !watchdog.Stop() {
				select {
				case <-watchdog.C:
				default:
				}
			}
			watchdog.Reset(s.cfg.Watchdog)

			var msg serverMessage
			if err := json.Unmarshal(ev.data, &msg); err != nil {
				return fail(utils.E(utils.CodeParse, op, "malformed recognizer message", err))
			}

			if msg.Code != 0 {
				return fail(utils.E(utils.CodeProtocol, op,
					fmt.Sprintf("recognizer returned error %d: %s", msg.Code, msg.Message), nil))
			}
			if msg.Data == nil {
				continue
			}

			if msg.Data.Status == statusFinal {
				finalText := ""
				if msg.Data.Result != nil {
					finalText = segmentText(msg.Data.Result.WS)
				}

				var text string
				if trimmedRuneLen(finalText) > trimmedRuneLen(builder.text()) {
					// The final message repeated a fuller hypothesis under its
					// own sequence number; folding it in would duplicate the
					// already-reconciled fragments.
					text = finalText
				} else {
					builder.apply(msg.Data.Result)
					if s.cfg.OnPartial != nil {
						s.cfg.OnPartial(builder.text())
					}
					text = finalChoice(finalText, builder.text())
				}

				s.state = stateDone
				return Result{
					Text:       text,
					FramesSent: framesSent,
					Elapsed:    time.Since(start),
				}, nil
			}

			if msg.Data.Result != nil {
				builder.apply(msg.Data.Result)
				if s.cfg.OnPartial != nil {
					s.cfg.OnPartial(builder.text())
				}
			}
		}
	}
}

func (s *Session) sendFrame(conn transport, status int, frame []byte) error {
	payload := framePayload{
		Data: frameData{
			Status:   status,
			Format:   "audio/L16;rate=16000",
			Encoding: "raw",
		},
	}
	if status != statusEndOfStream {
		payload.Data.Audio = base64.StdEncoding.EncodeToString(frame)
	}
	if status == statusFirstFrame {
		payload.Common = &frameCommon{AppID: s.cfg.Credentials.AppID}
		payload.Business = &frameBusiness{
			Language: s.cfg.Language,
			Domain:   s.cfg.Domain,
			Accent:   s.cfg.Accent,
			Vinfo:    1,
			Dwa:      "wpgs",
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}
