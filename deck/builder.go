package deck

import (
	"fmt"
	"sync"
)

// Builder receives the ordered draw commands of one page. Encoding the
// target document is the builder's job.
type Builder interface {
	AddShape(ShapeCommand) error
	AddImage(ImageCommand) error
	AddText(TextCommand) error
	AddTable(TableCommand) error
}

// ChartBuilder is implemented by builders that can render native charts.
// Canvas elements carrying a chart descriptor become chart commands only
// when the builder implements it; otherwise they are captured as images.
type ChartBuilder interface {
	Builder
	AddChart(ChartCommand) error
}

// Command is one recorded draw command; exactly one payload is set.
type Command struct {
	Op    ItemKind      `json:"op"`
	Shape *ShapeCommand `json:"shape,omitempty"`
	Image *ImageCommand `json:"image,omitempty"`
	Text  *TextCommand  `json:"text,omitempty"`
	Table *TableCommand `json:"table,omitempty"`
	Chart *ChartCommand `json:"chart,omitempty"`
}

// Recorder is an in-memory ChartBuilder.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

func (r *Recorder) add(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, c)
	return nil
}

func (r *Recorder) AddShape(c ShapeCommand) error { return r.add(Command{Op: KindShape, Shape: &c}) }
func (r *Recorder) AddImage(c ImageCommand) error { return r.add(Command{Op: KindImage, Image: &c}) }
func (r *Recorder) AddText(c TextCommand) error   { return r.add(Command{Op: KindText, Text: &c}) }
func (r *Recorder) AddTable(c TableCommand) error { return r.add(Command{Op: KindTable, Table: &c}) }
func (r *Recorder) AddChart(c ChartCommand) error { return r.add(Command{Op: KindChart, Chart: &c}) }

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

// Reset drops the recorded commands.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.commands = nil
	r.mu.Unlock()
}

// emit hands one item to b.
func emit(b Builder, it *Item) error {
	switch it.Kind {
	case KindShape:
		return b.AddShape(*it.Shape)
	case KindImage:
		return b.AddImage(*it.Image)
	case KindText:
		return b.AddText(*it.Text)
	case KindTable:
		return b.AddTable(*it.Table)
	case KindChart:
		cb, ok := b.(ChartBuilder)
		if !ok {
			return fmt.Errorf("deck: builder cannot draw charts")
		}
		return cb.AddChart(*it.Chart)
	}
	return fmt.Errorf("deck: unknown item kind %q", it.Kind)
}
