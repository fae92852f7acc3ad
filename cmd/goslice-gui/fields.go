package main

import (
	"context"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/goslice/internal/app"
)

const inputQueueSize = 64

// inputQueue applies user input on one goroutine, in the order it arrived
type inputQueue struct {
	ctx    context.Context
	tasks  chan func(context.Context) error
	logger *slog.Logger
}

func newInputQueue(ctx context.Context, logger *slog.Logger) *inputQueue {
	q := &inputQueue{
		ctx:    ctx,
		tasks:  make(chan func(context.Context) error, inputQueueSize),
		logger: logger,
	}
	go q.run()
	return q
}

func (q *inputQueue) run() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			if err := task(q.ctx); err != nil {
				q.logger.Debug("input ignored", "error", err)
			}
		}
	}
}

// push queues task; it blocks only while the queue is full
func (q *inputQueue) push(task func(context.Context) error) {
	select {
	case q.tasks <- task:
	case <-q.ctx.Done():
	}
}

// fieldPanel shows the numeric fields and turns entry edits into input
type fieldPanel struct {
	queue *inputQueue

	faces       *widget.Label
	volume      *widget.Label
	layerHeight *widget.Label
	layers      *widget.Label
	zPosition   *widget.Entry
	layer       *widget.Entry

	// updating is set while fields are written, so entry callbacks
	// do not echo them back as input
	updating bool
}

func newFieldPanel(queue *inputQueue, position, layer func(context.Context, string) error) *fieldPanel {
	p := &fieldPanel{
		queue:       queue,
		faces:       widget.NewLabel("-"),
		volume:      widget.NewLabel("-"),
		layerHeight: widget.NewLabel("-"),
		layers:      widget.NewLabel("-"),
		zPosition:   widget.NewEntry(),
		layer:       widget.NewEntry(),
	}
	p.zPosition.SetText("0")
	p.zPosition.OnChanged = p.forward(position)
	p.layer.SetText("1")
	p.layer.OnChanged = p.forward(layer)
	return p
}

func (p *fieldPanel) forward(apply func(context.Context, string) error) func(string) {
	return func(text string) {
		if p.updating {
			return
		}
		p.queue.push(func(ctx context.Context) error {
			return apply(ctx, text)
		})
	}
}

func (p *fieldPanel) form() *widget.Form {
	return widget.NewForm(
		widget.NewFormItem("Faces", p.faces),
		widget.NewFormItem("Volume", p.volume),
		widget.NewFormItem("Layer height", p.layerHeight),
		widget.NewFormItem("Layers", p.layers),
		widget.NewFormItem("Z position", p.zPosition),
		widget.NewFormItem("Layer", p.layer),
	)
}

// show writes fields on the fyne goroutine. The entry being edited keeps
// the user's text.
func (p *fieldPanel) show(c fyne.Canvas, fields app.Fields) {
	p.updating = true
	defer func() { p.updating = false }()

	p.faces.SetText(strconv.Itoa(fields.Faces))
	p.volume.SetText(strconv.Itoa(fields.Volume))
	p.layerHeight.SetText(strconv.FormatFloat(fields.LayerHeight, 'f', -1, 64))
	p.layers.SetText(strconv.Itoa(fields.Layers))

	var focused fyne.Focusable
	if c != nil {
		focused = c.Focused()
	}
	if focused != p.zPosition {
		p.zPosition.SetText(strconv.FormatFloat(fields.ZPosition, 'f', -1, 64))
	}
	if focused != p.layer {
		p.layer.SetText(strconv.Itoa(fields.Layer))
	}
}
