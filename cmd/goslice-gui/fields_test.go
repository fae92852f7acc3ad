package main

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/internal/app"
)

type recorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *recorder) apply(_ context.Context, text string) error {
	// later keystrokes finish faster, so unordered delivery would show
	time.Sleep(time.Duration(5-min(len(text), 4)) * time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func newTestPanel(t *testing.T) (*fieldPanel, *recorder, *recorder) {
	test.NewTempApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	position, layer := &recorder{}, &recorder{}
	queue := newInputQueue(ctx, slog.New(slog.DiscardHandler))
	return newFieldPanel(queue, position.apply, layer.apply), position, layer
}

func TestFieldPanelAppliesKeystrokesInOrder(t *testing.T) {
	p, position, _ := newTestPanel(t)
	test.NewTempWindow(t, p.form())

	test.Type(p.zPosition, "0.1")

	assert.Eventually(t, func() bool { return len(position.seen()) == 3 }, time.Second, 5*time.Millisecond)
	texts := position.seen()
	for i := 1; i < len(texts); i++ {
		assert.Len(t, texts[i], len(texts[i-1])+1, "keystroke %d applied out of order: %v", i, texts)
	}
	assert.Equal(t, p.zPosition.Text, texts[len(texts)-1])
}

func TestFieldPanelKeepsTextOfFocusedEntry(t *testing.T) {
	p, position, layer := newTestPanel(t)
	w := test.NewTempWindow(t, p.form())

	w.Canvas().Focus(p.zPosition)
	p.zPosition.SetText("0.1")
	require.Eventually(t, func() bool { return len(position.seen()) == 1 }, time.Second, 5*time.Millisecond)

	p.show(w.Canvas(), app.Fields{Faces: 12, Layers: 100, ZPosition: 0, Layer: 1})

	assert.Equal(t, "0.1", p.zPosition.Text)
	assert.Equal(t, "1", p.layer.Text)
	assert.Equal(t, "12", p.faces.Text)
	assert.Equal(t, "100", p.layers.Text)

	w.Canvas().Focus(p.layer)
	p.show(w.Canvas(), app.Fields{ZPosition: 0.2, Layer: 3})
	assert.Equal(t, "0.2", p.zPosition.Text)
	assert.Equal(t, "1", p.layer.Text)

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, position.seen(), 1, "field updates must not be applied as input")
	assert.Empty(t, layer.seen())
}
