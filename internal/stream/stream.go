package stream

import (
	"io"
	"log"
	"strings"
)

// ContinuationMarker is appended when a reply ends mid-sentence so the
// user never sees a visibly truncated answer.
const ContinuationMarker = "..."

// Fragment is one incremental unit of generated text.
type Fragment interface {
	Text() (string, error)
}

// Source is a finite, single-pass sequence of fragments. Next returns
// io.EOF when the sequence is exhausted; any other error means the
// stream itself failed.
type Source interface {
	Next() (Fragment, error)
}

// Sink receives the relayed events. Sends are fire-and-forget: the
// relay never waits for the consumer before pulling the next fragment.
type Sink interface {
	SendUpdate(text string)
	SendCompletion()
	SendError(code, message string)
}

// Result summarizes one relay run.
type Result struct {
	Text      string
	Fragments int
	Err       error
}

// Relay drains source into sink, forwarding fragments in the order they
// arrive. Exactly one completion signal is sent per call, on every exit
// path. A fragment whose text cannot be extracted is skipped; a failing
// source ends the stream — with an error event if nothing was forwarded
// yet, or a soft close if partial output already reached the user.
func Relay(source Source, sink Sink) Result {
	var acc strings.Builder
	res := Result{}

	signaled := false
	signal := func() {
		if !signaled {
			signaled = true
			sink.SendCompletion()
		}
	}
	defer signal()

	for {
		frag, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Err = err
			if acc.Len() == 0 {
				sink.SendError("STREAM_FAILED", "The assistant could not produce a response")
				return res
			}
			// Partial answer already delivered: close softly below.
			log.Printf("chat stream failed after %d fragments: %v", res.Fragments, err)
			break
		}

		text, err := frag.Text()
		if err != nil {
			res.Err = err
			log.Printf("chat stream: skipping unreadable fragment: %v", err)
			continue
		}

		res.Fragments++
		acc.WriteString(text)
		sink.SendUpdate(text)
	}

	res.Text = acc.String()
	if trimmed := strings.TrimSpace(res.Text); trimmed != "" && !sentenceComplete(trimmed) {
		sink.SendUpdate(ContinuationMarker)
	}
	signal()

	return res
}

func sentenceComplete(text string) bool {
	return strings.HasSuffix(text, ".") ||
		strings.HasSuffix(text, "?") ||
		strings.HasSuffix(text, "!") ||
		strings.HasSuffix(text, ")")
}
