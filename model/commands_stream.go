package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"agtui/config"
)

// Submit validates a query, appends the user message and starts the
// streaming request. The returned error is a *ValidationError when the input
// is rejected before any backend call; nothing is dispatched in that case.
//
// The stream reader runs in its own goroutine and pushes chunks over a
// channel; WaitForStream pumps the channel into tea messages one at a time
// so the render loop and the stream interleave cooperatively.
func (m *Model) Submit(text string) (tea.Cmd, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.Config.RequestTimeout)

	if err := m.Stream.Begin(text, m.SelectedTarget, cancel); err != nil {
		cancel()
		return nil, err
	}

	m.History.AddUser(text, m.SelectedTarget)

	client := m.Client
	target := *m.SelectedTarget
	sessionID := m.CurrentSession.ID

	ch := make(chan StreamPayload, 32)

	go func() {
		defer close(ch)

		err := client.Run(ctx, target, sessionID, text, func(chunk string) error {
			ch <- StreamPayload{Chunk: chunk}
			return nil
		})
		if err != nil {
			ch <- StreamPayload{Err: err}
			return
		}
		ch <- StreamPayload{Done: true}
	}()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[model] submitted query to %s (session=%s, %d chars)", target, sessionID, len(text))
	}

	// Persist the user message before the response lands
	return tea.Batch(WaitForStream(ch), m.RequestSave()), nil
}

// WaitForStream blocks on the next payload from the reader goroutine and
// converts it into a tea message. The chunk message carries the channel so
// the update loop can re-arm the pump.
func WaitForStream(ch chan StreamPayload) tea.Cmd {
	return func() tea.Msg {
		payload, ok := <-ch
		if !ok {
			return StreamDoneMsg{}
		}
		switch {
		case payload.Err != nil:
			return StreamErrorMsg{Err: payload.Err}
		case payload.Done:
			return StreamDoneMsg{}
		default:
			return StreamChunkMsg{Chunk: payload.Chunk, Ch: ch}
		}
	}
}
