package gameevent

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
)

// Source delivers inbound events to a handler until the stream ends or
// the context is cancelled. The handler may be called from the source's
// own goroutine and must not block on network I/O.
type Source interface {
	Run(ctx context.Context, handle func(Event)) error
}

// StreamSource reads newline-delimited JSON events from a reader. It is
// the sidecar intake used when the game server pipes its event stream to
// the process.
type StreamSource struct {
	r io.Reader
}

func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r}
}

func (s *StreamSource) Run(ctx context.Context, handle func(Event)) error {
	sc := bufio.NewScanner(s.r)
	buf := make([]byte, 0, 1024*1024)
	sc.Buffer(buf, 10*1024*1024)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Printf("skipping malformed event line: %v", err)
			continue
		}
		if ev.UserID == "" || ev.Kind == "" {
			log.Printf("skipping event without user id or kind")
			continue
		}
		handle(ev)
	}
	return sc.Err()
}
