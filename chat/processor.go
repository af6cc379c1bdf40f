package chat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/valyala/fastjson"

	"github.com/onnwee/chatfilter/telemetry"
)

const readBufferSize = 64 * 1024

// Options configures a Processor.
type Options struct {
	// Platform restricts output to frames whose source matches, case-insensitively.
	// Empty passes every frame.
	Platform string
	// MaxLineBytes drops lines longer than this many bytes (terminator excluded).
	// Zero means unlimited.
	MaxLineBytes int
	// UnwrapEnvelope renders the data object of {"type","data"} envelopes.
	UnwrapEnvelope bool
}

// Stats is a point-in-time view of a processor's counters.
type Stats struct {
	LinesRead int64            `json:"lines_read"`
	Emitted   int64            `json:"emitted"`
	Dropped   map[string]int64 `json:"dropped"`
}

// Processor turns newline-delimited chat frames into rendered lines. A Processor
// handles one stream at a time; only Stats may be called concurrently with Run.
type Processor struct {
	filter  Filter
	maxLine int
	unwrap  bool

	parser fastjson.Parser
	buf    []byte

	read    atomic.Int64
	emitted atomic.Int64
	dropped [DropOversize + 1]atomic.Int64
}

// NewProcessor returns a processor configured by opts.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		filter:  NewFilter(opts.Platform),
		maxLine: opts.MaxLineBytes,
		unwrap:  opts.UnwrapEnvelope,
	}
}

// Filter returns the platform filter in effect.
func (p *Processor) Filter() Filter { return p.filter }

// Process decides the fate of one raw input line. It returns the rendered line
// (without a trailing newline) and DropNone, or "" and the reason it was dropped.
func (p *Processor) Process(raw []byte) (string, DropReason) {
	out, reason := p.process(raw)
	p.count(reason)
	return out, reason
}

func (p *Processor) process(raw []byte) (string, DropReason) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 {
		return "", DropEmpty
	}
	if string(line) == KeepaliveSentinel {
		return "", DropKeepalive
	}

	frame, err := ParseFrame(&p.parser, line)
	if err != nil {
		return "", ClassifyParseError(err)
	}
	if p.unwrap {
		frame = frame.Unwrap()
	}

	if !p.filter.Allows(frame.Field(SourceKeys...)) {
		return "", DropFiltered
	}
	return LineFromFrame(frame).String(), DropNone
}

func (p *Processor) count(reason DropReason) {
	if reason == DropNone {
		p.emitted.Add(1)
		telemetry.RecordEmitted()
		return
	}
	p.dropped[reason].Add(1)
	telemetry.RecordDropped(reason.String())
}

// Run reads lines from r until EOF, writing one rendered line to w per accepted
// frame. Each line is flushed before the next is read. Line content never stops
// the loop; only a read error other than EOF, a write error, or ctx cancellation
// (checked between lines) does.
func (p *Processor) Run(ctx context.Context, r io.Reader, w io.Writer) (err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerStream, "chat.filter",
		telemetry.StreamAttrs(p.filter.Platform(), p.unwrap, p.maxLine)...,
	)
	defer func() {
		st := p.Stats()
		span.SetAttributes(telemetry.StreamResultAttrs(st.LinesRead, st.Emitted, st.Dropped)...)
		telemetry.FinishSpan(span, err)
	}()

	br := bufio.NewReaderSize(r, readBufferSize)
	bw := bufio.NewWriter(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, size, rerr := p.readLine(br)
		if rerr != nil && rerr != io.EOF {
			return fmt.Errorf("read input: %w", rerr)
		}
		if size > 0 {
			p.read.Add(1)
			telemetry.RecordLine(size)

			var out string
			var reason DropReason
			if p.maxLine > 0 && contentLen(line, size) > p.maxLine {
				reason = DropOversize
				p.count(reason)
			} else {
				out, reason = p.Process(line)
			}
			if reason == DropNone {
				if err := writeLine(bw, out); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
		}
		if rerr == io.EOF {
			return nil
		}
	}
}

// readLine returns the next line including its terminator, and the total number
// of bytes it spanned. Once a line grows past the limit, further chunks are
// consumed but not buffered.
func (p *Processor) readLine(br *bufio.Reader) ([]byte, int, error) {
	p.buf = p.buf[:0]
	size := 0
	for {
		chunk, err := br.ReadSlice('\n')
		size += len(chunk)
		if p.maxLine <= 0 || len(p.buf) <= p.maxLine {
			p.buf = append(p.buf, chunk...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return p.buf, size, err
	}
}

// contentLen is the line length without its trailing newline.
func contentLen(line []byte, size int) int {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return size - 1
	}
	return size
}

func writeLine(bw *bufio.Writer, s string) error {
	if _, err := bw.WriteString(s); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// Stats returns the processor's counters. Every reason is present in Dropped.
func (p *Processor) Stats() Stats {
	st := Stats{
		LinesRead: p.read.Load(),
		Emitted:   p.emitted.Load(),
		Dropped:   make(map[string]int64, len(dropReasons)),
	}
	for _, r := range dropReasons {
		st.Dropped[r.String()] = p.dropped[r].Load()
	}
	return st
}
