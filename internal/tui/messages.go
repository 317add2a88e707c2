package tui

import (
	"github.com/agbru/ragcompare/internal/notify"
	"github.com/agbru/ragcompare/internal/orchestration"
	"github.com/agbru/ragcompare/internal/stream"
	"github.com/agbru/ragcompare/internal/upload"
)

// ChannelStateMsg carries a state change of one answer channel.
type ChannelStateMsg struct {
	Channel orchestration.ChannelID
	State   stream.State
}

// ChannelFailedMsg reports that a channel's network call failed.
type ChannelFailedMsg struct {
	Channel    orchestration.ChannelID
	Generation uint64
	Err        error
}

// RoundAnsweredMsg is sent once both channels of a round are terminal.
type RoundAnsweredMsg struct {
	Comparison orchestration.Comparison
}

// SubmitResultMsg is the outcome of a submission.
type SubmitResultMsg struct {
	Accepted bool
	Round    uint64
}

// ResetDoneMsg is sent after both channels were cleared.
type ResetDoneMsg struct{}

// NoticeMsg shows (Visible) or hides a notice.
type NoticeMsg struct {
	Notice  notify.Notice
	Visible bool
}

// UploadProgressMsg carries simulated upload progress.
type UploadProgressMsg struct {
	Progress   upload.Progress
	Generation uint64
}

// UploadDoneMsg ends an upload. Err is set when the file was rejected.
type UploadDoneMsg struct {
	Result     upload.Result
	Err        error
	Generation uint64
}

// ContextCanceledMsg is sent when the session context ends.
type ContextCanceledMsg struct {
	Err error
}
