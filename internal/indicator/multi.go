package indicator

import "context"

// Multi fans every call out to each wrapped indicator in order.
type Multi []Controller

func (m Multi) ShowRecording(ctx context.Context) {
	for _, c := range m {
		c.ShowRecording(ctx)
	}
}

func (m Multi) ShowTranscribing(ctx context.Context) {
	for _, c := range m {
		c.ShowTranscribing(ctx)
	}
}

func (m Multi) ShowTranscript(ctx context.Context, text string) {
	for _, c := range m {
		c.ShowTranscript(ctx, text)
	}
}

func (m Multi) ShowError(ctx context.Context, text string) {
	for _, c := range m {
		c.ShowError(ctx, text)
	}
}

func (m Multi) CueStop(ctx context.Context) {
	for _, c := range m {
		c.CueStop(ctx)
	}
}

func (m Multi) CueComplete(ctx context.Context) {
	for _, c := range m {
		c.CueComplete(ctx)
	}
}

func (m Multi) CueCancel(ctx context.Context) {
	for _, c := range m {
		c.CueCancel(ctx)
	}
}

func (m Multi) Hide(ctx context.Context) {
	for _, c := range m {
		c.Hide(ctx)
	}
}
