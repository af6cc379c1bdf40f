package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/chatfilter/config"
	"github.com/onnwee/chatfilter/telemetry"
)

// SourceTwitch is the source tag written on frames from Twitch IRC.
const SourceTwitch = "twitch"

// Payload is the JSON chat frame written by the feed and read by the processor.
type Payload struct {
	Author  string   `json:"author"`
	Message string   `json:"message"`
	Source  string   `json:"source"`
	Colour  string   `json:"colour,omitempty"`
	Badges  []string `json:"badges,omitempty"`
	Emotes  []string `json:"emotes,omitempty"`
}

// PayloadFromPrivateMessage converts a Twitch PRIVMSG into a chat frame.
func PayloadFromPrivateMessage(msg twitch.PrivateMessage) Payload {
	author := msg.User.DisplayName
	if author == "" {
		author = msg.User.Name
	}
	p := Payload{
		Author:  author,
		Message: msg.Message,
		Source:  SourceTwitch,
		Colour:  msg.User.Color,
	}
	if len(msg.User.Badges) > 0 {
		p.Badges = make([]string, 0, len(msg.User.Badges))
		for name, version := range msg.User.Badges {
			p.Badges = append(p.Badges, name+"/"+strconv.Itoa(version))
		}
		sort.Strings(p.Badges)
	}
	for _, e := range msg.Emotes {
		if e != nil {
			p.Emotes = append(p.Emotes, e.Name)
		}
	}
	return p
}

// FrameWriter writes chat frames as JSON lines. It is safe for concurrent use;
// each frame is flushed as a whole.
type FrameWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewFrameWriter returns a FrameWriter writing to w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: bufio.NewWriter(w)}
}

// WriteFrame encodes p as one JSON line.
func (fw *FrameWriter) WriteFrame(p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := fw.writeLine(data); err != nil {
		return err
	}
	telemetry.RecordFeedFrame("chat")
	return nil
}

// WriteKeepalive writes the keepalive sentinel line.
func (fw *FrameWriter) WriteKeepalive() error {
	if err := fw.writeLine([]byte(KeepaliveSentinel)); err != nil {
		return err
	}
	telemetry.RecordFeedFrame("keepalive")
	return nil
}

func (fw *FrameWriter) writeLine(b []byte) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, err := fw.w.Write(b); err != nil {
		return err
	}
	if err := fw.w.WriteByte('\n'); err != nil {
		return err
	}
	return fw.w.Flush()
}

// ircClient is the subset of the go-twitch-irc client used by the feed.
type ircClient interface {
	OnPrivateMessage(func(twitch.PrivateMessage))
	Join(channels ...string)
	Connect() error
	Disconnect() error
}

func newIRCClient(cfg *config.Config) ircClient {
	if cfg.Anonymous() {
		return twitch.NewAnonymousClient()
	}
	return twitch.NewClient(cfg.TwitchBotUsername, cfg.TwitchOAuthToken)
}

// StartTwitchFeed joins cfg.TwitchChannel and writes one frame per chat message to
// w, plus a keepalive line every cfg.KeepaliveInterval (disabled when zero). It
// returns when ctx is cancelled, the connection fails, or a write fails.
func StartTwitchFeed(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if err := cfg.ValidateFeedReady(); err != nil {
		return err
	}
	return runFeed(ctx, newIRCClient(cfg), cfg.TwitchChannel, cfg.KeepaliveInterval, NewFrameWriter(w))
}

func runFeed(ctx context.Context, client ircClient, channel string, keepalive time.Duration, fw *FrameWriter) (err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerFeed, "twitch.feed",
		attribute.String("twitch.channel", channel),
	)
	defer func() { telemetry.FinishSpan(span, err) }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "twitch_feed"), slog.String("channel", channel))

	var (
		writeErr  error
		writeOnce sync.Once
	)
	fail := func(err error) {
		writeOnce.Do(func() {
			writeErr = err
			cancel()
		})
	}

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		if err := fw.WriteFrame(PayloadFromPrivateMessage(msg)); err != nil {
			fail(fmt.Errorf("write frame: %w", err))
		}
	})

	var wg sync.WaitGroup
	if keepalive > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(keepalive)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := fw.WriteKeepalive(); err != nil {
						fail(fmt.Errorf("write keepalive: %w", err))
						return
					}
				}
			}
		}()
	}

	// Disconnect unblocks Connect once the context ends.
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		_ = client.Disconnect()
		close(done)
	}()

	client.Join(channel)
	log.Info("twitch feed connecting")
	connErr := client.Connect()
	cancel()
	wg.Wait()
	<-done

	writeOnce.Do(func() {})
	if writeErr != nil {
		return writeErr
	}
	if connErr != nil && !errors.Is(connErr, twitch.ErrClientDisconnected) {
		return fmt.Errorf("twitch chat connect: %w", connErr)
	}
	log.Info("twitch feed stopped")
	return nil
}
