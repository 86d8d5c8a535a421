package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"agtui/config"
	appmodel "agtui/model"
)

// handleStreamingMessage handles all streaming-related messages.
func (a AppView) handleStreamingMessage(msg tea.Msg) (AppView, tea.Cmd) {
	switch msg := msg.(type) {
	case streamChunkMsg:
		// After a cancel request no further content reaches the pending
		// item; keep draining so the terminal payload still arrives.
		if a.dataModel.Stream.Cancelling() {
			return a, appmodel.WaitForStream(msg.Ch)
		}

		a.dataModel.Stream.MarkReceiving()
		a.dataModel.History.AppendDelta(msg.Chunk)
		a.updateViewportContent(true)
		return a, appmodel.WaitForStream(msg.Ch)

	case streamDoneMsg:
		cancelled := a.dataModel.Stream.Cancelling()
		a.dataModel.Stream.Finish()
		a.flash = ""

		if cancelled {
			return a.finishCancelled()
		}

		item, ok := a.dataModel.History.FinalizePending()
		if !ok {
			// Stream completed without any content
			a.dataModel.History.AddInfo("No response received")
			a.updateViewportContent(true)
			return a, a.dataModel.RequestSave()
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[ui] stream complete - item %d, %d chars", item.ID, len(item.Text))
		}

		a.updateViewportContent(true)
		return a, tea.Batch(
			a.renderMarkdownAsync(item.ID, item.Text),
			a.dataModel.RequestSave(),
		)

	case streamErrorMsg:
		userCancelled := a.dataModel.Stream.Cancelling() ||
			errors.Is(msg.Err, context.Canceled)
		a.dataModel.Stream.Finish()
		a.flash = ""

		if userCancelled {
			return a.finishCancelled()
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[ui] stream error: %v", msg.Err)
		}

		// Seal any partial content as truncated, then surface the failure
		// as a readable chat entry. Errors are recoverable: input reopens.
		a.dataModel.History.CancelPending()
		a.dataModel.History.AddError(fmt.Sprintf("Response failed: %v", msg.Err))
		a.updateViewportContent(true)
		return a, a.dataModel.RequestSave()
	}

	return a, nil
}

func (a AppView) finishCancelled() (AppView, tea.Cmd) {
	if _, ok := a.dataModel.History.CancelPending(); ok {
		a.dataModel.History.AddInfo("Response cancelled")
	} else {
		a.dataModel.History.AddInfo("Request cancelled before any response arrived")
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[ui] stream cancelled by user")
	}

	a.updateViewportContent(true)
	return a, a.dataModel.RequestSave()
}
