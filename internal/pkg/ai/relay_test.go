package ai

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

// chunkReader replays a stream in caller-chosen pieces so tests can force
// reads to end mid-line and mid-JSON.
type chunkReader struct {
	chunks []string
	pos    int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.pos])
	if n < len(r.chunks[r.pos]) {
		r.chunks[r.pos] = r.chunks[r.pos][n:]
	} else {
		r.pos++
	}
	return n, nil
}

func runRelay(t *testing.T, chunks ...string) (string, Usage) {
	t.Helper()
	var out bytes.Buffer
	w := bufio.NewWriter(&out)
	relay := new(Relay)
	usage, err := relay.Run(&chunkReader{chunks: chunks}, w)
	if err != nil {
		t.Fatalf("relay run: %v", err)
	}
	return out.String(), usage
}

func decodeFrames(t *testing.T, raw string) []downstreamFrame {
	t.Helper()
	var frames []downstreamFrame
	for _, part := range strings.Split(raw, "\n\n") {
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, "data: ") {
			t.Fatalf("frame without data prefix: %q", part)
		}
		var frame downstreamFrame
		if err := json.Unmarshal([]byte(strings.TrimPrefix(part, "data: ")), &frame); err != nil {
			t.Fatalf("decode frame %q: %v", part, err)
		}
		frames = append(frames, frame)
	}
	return frames
}

const sampleStream = "event: message_start\n" +
	`data: {"type":"message_start","message":{"usage":{"input_tokens":12}}}` + "\n\n" +
	`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Hel"}}` + "\n\n" +
	`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"lo"}}` + "\n\n" +
	`data: {"type":"message_delta","usage":{"output_tokens":42}}` + "\n\n" +
	"data: [DONE]\n"

func contents(frames []downstreamFrame) []string {
	var texts []string
	for _, f := range frames {
		texts = append(texts, f.Content)
	}
	return texts
}

func TestRelayForwardsDeltasInOrder(t *testing.T) {
	raw, usage := runRelay(t, sampleStream)
	frames := decodeFrames(t, raw)

	if len(frames) != 2 {
		t.Fatalf("expected 2 delta frames, got %d: %+v", len(frames), frames)
	}
	for i, want := range []string{"Hel", "lo"} {
		if frames[i].Type != "delta" || frames[i].Content != want {
			t.Fatalf("frame %d = %+v, want delta %q", i, frames[i], want)
		}
	}
	if usage.InputTokens != 12 || usage.OutputTokens != 42 {
		t.Fatalf("usage = %+v, want {12 42}", usage)
	}
}

func TestRelayChunkBoundaryIndependence(t *testing.T) {
	want, wantUsage := runRelay(t, sampleStream)

	// Every split point, including mid-line and mid-JSON, must produce the
	// identical downstream stream.
	for i := 1; i < len(sampleStream); i++ {
		got, usage := runRelay(t, sampleStream[:i], sampleStream[i:])
		if got != want {
			t.Fatalf("split at %d changed output:\n got %q\nwant %q", i, got, want)
		}
		if usage != wantUsage {
			t.Fatalf("split at %d changed usage: %+v want %+v", i, usage, wantUsage)
		}
	}
}

func TestRelaySkipsMalformedAndUnknownLines(t *testing.T) {
	stream := "event: content_block_delta\n" +
		"data: {broken json\n" +
		`data: {"type":"content_block_stop"}` + "\n" +
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"ok"}}` + "\n" +
		": keep-alive comment\n"

	raw, _ := runRelay(t, stream)
	frames := decodeFrames(t, raw)
	if got := contents(frames); len(got) != 1 || got[0] != "ok" {
		t.Fatalf("expected single ok frame, got %v", got)
	}
}

func TestRelaySkipsEmptyDeltaText(t *testing.T) {
	stream := `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":""}}` + "\n"
	raw, _ := runRelay(t, stream)
	if frames := decodeFrames(t, raw); len(frames) != 0 {
		t.Fatalf("expected no frames for empty delta text, got %+v", frames)
	}
}

func TestRelayParsesFinalFragmentWithoutNewline(t *testing.T) {
	stream := `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"tail"}}`
	raw, _ := runRelay(t, stream)
	frames := decodeFrames(t, raw)
	if got := contents(frames); len(got) != 1 || got[0] != "tail" {
		t.Fatalf("expected trailing fragment to be parsed at EOF, got %v", got)
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestRelayPropagatesUpstreamReadError(t *testing.T) {
	var out bytes.Buffer
	relay := new(Relay)
	if _, err := relay.Run(failingReader{}, bufio.NewWriter(&out)); err != io.ErrUnexpectedEOF {
		t.Fatalf("expected upstream read error, got %v", err)
	}
}

func TestWriteErrorFrame(t *testing.T) {
	var out bytes.Buffer
	w := bufio.NewWriter(&out)
	WriteErrorFrame(w, "Stream interrupted")

	frames := decodeFrames(t, out.String())
	if len(frames) != 1 || frames[0].Type != "error" || frames[0].Error != "Stream interrupted" {
		t.Fatalf("unexpected error frame: %+v", frames)
	}
}
