// Package notify はユーザーに出す一時的な通知（トースト）。
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/labstack/gommon/color"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notification struct {
	Level       Level
	Title       string
	Description string
}

type Notifier interface {
	Notify(n Notification)
}

func Success(n Notifier, title, description string) {
	n.Notify(Notification{Level: LevelSuccess, Title: title, Description: description})
}

func Error(n Notifier, title, description string) {
	n.Notify(Notification{Level: LevelError, Title: title, Description: description})
}

func Info(n Notifier, title, description string) {
	n.Notify(Notification{Level: LevelInfo, Title: title, Description: description})
}

// Writerは端末に色付きで出す
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	c   *color.Color
}

func NewWriter(out io.Writer, colored bool) *Writer {
	c := color.New()
	c.SetOutput(out)
	if !colored {
		c.Disable()
	}
	return &Writer{out: out, c: c}
}

func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var mark string
	switch n.Level {
	case LevelSuccess:
		mark = w.c.Green("✔")
	case LevelError:
		mark = w.c.Red("✖")
	default:
		mark = w.c.Cyan("ℹ")
	}
	if n.Description == "" {
		fmt.Fprintf(w.out, "%s %s\n", mark, w.c.Bold(n.Title))
		return
	}
	fmt.Fprintf(w.out, "%s %s: %s\n", mark, w.c.Bold(n.Title), n.Description)
}

// Recorderは通知を溜めておく（テスト・バッチ用）
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return Notification{}, false
	}
	return r.all[len(r.all)-1], true
}
