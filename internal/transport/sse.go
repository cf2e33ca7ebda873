package transport

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/diogo/streamchat/internal/conversation"
	apierrors "github.com/diogo/streamchat/internal/errors"
	"github.com/diogo/streamchat/internal/models"
)

// frame is one dispatched server-sent event
type frame struct {
	Event string
	Data  string
}

// readFrames decodes an event stream and calls fn for every complete frame.
// A frame is terminated by a blank line; a trailing frame without one is
// discarded. Returning errStop from fn ends reading without error.
func readFrames(r io.Reader, fn func(frame) error) error {
	reader := bufio.NewReader(r)

	var (
		event   string
		data    []string
		hasData bool
	)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// A final line without newline belongs to an incomplete frame
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if hasData || event != "" {
				f := frame{Event: event, Data: strings.Join(data, "\n")}
				if f.Event == "" {
					f.Event = "message"
				}
				if err := fn(f); err != nil {
					if errors.Is(err, errStop) {
						return nil
					}
					return err
				}
			}
			event, data, hasData = "", nil, false
			continue
		}

		// Comment, used for heartbeats
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			event = value
		case "data":
			data = append(data, value)
			hasData = true
		}
		// id and retry are not used
	}
}

var errStop = errors.New("stop reading")

// decodeEvent maps a frame to a conversation event.
// Unknown event names decode to nil and are skipped.
func decodeEvent(f frame) (conversation.Event, error) {
	payload := f.Data
	if payload == "" {
		payload = "{}"
	}

	switch f.Event {
	case models.EventProgressIndicator, models.EventTextChunk, models.EventInform, models.EventError:
		if !gjson.Valid(payload) {
			return nil, apierrors.NewParseError("invalid JSON payload", f.Event)
		}
	}

	switch f.Event {
	case models.EventProgressIndicator:
		return conversation.ProgressEvent{Text: gjson.Get(payload, "message").String()}, nil

	case models.EventTextChunk:
		chunk := gjson.Get(payload, "chunk")
		if !chunk.Exists() {
			return nil, apierrors.NewParseError("missing chunk", f.Event)
		}
		offset := gjson.Get(payload, "offset")
		if !offset.Exists() {
			return nil, apierrors.NewParseError("missing offset", f.Event)
		}
		return conversation.ChunkEvent{Text: chunk.String(), Offset: offset.Int()}, nil

	case models.EventInform:
		return conversation.FinalEvent{Text: gjson.Get(payload, "message").String()}, nil

	case models.EventEndOfTurn:
		return conversation.EndOfTurnEvent{}, nil

	case models.EventError:
		msg := gjson.Get(payload, "message").String()
		if msg == "" {
			msg = "server reported an error"
		}
		return conversation.FailureEvent{Err: apierrors.NewStreamError(msg)}, nil

	default:
		return nil, nil
	}
}
