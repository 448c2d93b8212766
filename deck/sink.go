package deck

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// JSONSink writes each draw command as one JSON line to an io.Writer
// (default os.Stdout). Every line carries the pass ID and file name so
// several pages can share one stream.
type JSONSink struct {
	mu       sync.Mutex
	enc      *json.Encoder
	pass     string
	fileName string
	seq      int
}

// NewJSONSink creates a JSONSink. If w is nil, os.Stdout is used.
func NewJSONSink(w io.Writer, fileName string) *JSONSink {
	if w == nil {
		w = os.Stdout
	}
	return &JSONSink{enc: json.NewEncoder(w), fileName: fileName}
}

// SetPass tags subsequent lines with a conversion pass ID and restarts the
// sequence counter. The Converter calls it at the start of every pass.
func (s *JSONSink) SetPass(id string) {
	s.mu.Lock()
	s.pass, s.seq = id, 0
	s.mu.Unlock()
}

func (s *JSONSink) AddShape(c ShapeCommand) error { return s.send(Command{Op: KindShape, Shape: &c}) }
func (s *JSONSink) AddImage(c ImageCommand) error { return s.send(Command{Op: KindImage, Image: &c}) }
func (s *JSONSink) AddText(c TextCommand) error   { return s.send(Command{Op: KindText, Text: &c}) }
func (s *JSONSink) AddTable(c TableCommand) error { return s.send(Command{Op: KindTable, Table: &c}) }
func (s *JSONSink) AddChart(c ChartCommand) error { return s.send(Command{Op: KindChart, Chart: &c}) }

func (s *JSONSink) send(c Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.enc.Encode(envelope{Pass: s.pass, File: s.fileName, Seq: s.seq, Command: c})
}

type envelope struct {
	Pass string `json:"pass,omitempty"`
	File string `json:"file,omitempty"`
	Seq  int    `json:"seq"`
	Command
}

// passAware is implemented by builders that want the pass ID.
type passAware interface {
	SetPass(id string)
}
