package ai

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const dataPrefix = "data: "

// Usage accumulates the token counts reported by the upstream stream.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// upstreamEvent covers the three event kinds we care about; unknown kinds
// unmarshal into zero values and fall through the type switch.
type upstreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Message struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

type downstreamFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Relay bridges the upstream token stream onto a downstream SSE sink. It
// decodes incrementally: bytes are split on newline boundaries, the trailing
// (possibly incomplete) line is retained across reads, and each complete
// line is handled as soon as it arrives. Every content delta is forwarded as
// exactly one downstream frame in arrival order; nothing is dropped,
// reordered, merged or split.
type Relay struct {
	buffer string
	usage  Usage
}

// Run pumps the upstream stream until end-of-input or error. On a clean end
// the buffered fragment gets one final parse attempt and the accumulated
// usage is returned. A downstream write failure (client gone) or an upstream
// read failure aborts the pump with that error; the caller decides how to
// surface it.
func (r *Relay) Run(upstream io.Reader, downstream *bufio.Writer) (Usage, error) {
	buf := make([]byte, 4096)
	for {
		n, err := upstream.Read(buf)
		if n > 0 {
			if werr := r.consume(string(buf[:n]), downstream); werr != nil {
				return r.usage, werr
			}
		}
		if err != nil {
			if err == io.EOF {
				r.finish(downstream)
				return r.usage, nil
			}
			return r.usage, err
		}
	}
}

func (r *Relay) consume(chunk string, downstream *bufio.Writer) error {
	r.buffer += chunk
	lines := strings.Split(r.buffer, "\n")
	// Keep the last potentially incomplete line in the buffer
	r.buffer = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		if err := r.processLine(line, downstream); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relay) finish(downstream *bufio.Writer) {
	if strings.TrimSpace(r.buffer) != "" {
		_ = r.processLine(r.buffer, downstream)
		r.buffer = ""
	}
}

func (r *Relay) processLine(line string, downstream *bufio.Writer) error {
	if !strings.HasPrefix(line, dataPrefix) {
		return nil
	}
	data := strings.TrimPrefix(line, dataPrefix)
	if data == "[DONE]" {
		return nil
	}

	var event upstreamEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		// Malformed upstream lines never abort the stream.
		return nil
	}

	switch event.Type {
	case "content_block_delta":
		if event.Delta.Text == "" {
			return nil
		}
		return writeFrame(downstream, downstreamFrame{Type: "delta", Content: event.Delta.Text})
	case "message_delta":
		if event.Usage.OutputTokens > 0 {
			r.usage.OutputTokens = event.Usage.OutputTokens
		}
	case "message_start":
		r.usage.InputTokens = event.Message.Usage.InputTokens
	}
	return nil
}

// WriteErrorFrame surfaces an upstream failure on the downstream stream so
// the client can distinguish it from a clean end-of-stream.
func WriteErrorFrame(downstream *bufio.Writer, msg string) {
	_ = writeFrame(downstream, downstreamFrame{Type: "error", Error: msg})
}

func writeFrame(w *bufio.Writer, frame downstreamFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	// Flush per event so deltas reach the client incrementally; a failed
	// flush means the client is gone and stops the pump.
	return w.Flush()
}
