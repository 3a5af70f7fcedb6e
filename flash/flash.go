// Package flash carries short-lived user feedback from one response to the
// next rendered page.
package flash

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
)

type Message struct {
	Level Level
	Text  string
}

// Messages is the outbound feedback of a single response.
type Messages []Message

func init() {
	gob.Register(Message{})
}

func (m *Messages) Add(level Level, text string) {
	*m = append(*m, Message{Level: level, Text: text})
}

func (m *Messages) Info(text string)    { m.Add(Info, text) }
func (m *Messages) Success(text string) { m.Add(Success, text) }
func (m *Messages) Warning(text string) { m.Add(Warning, text) }

// Keep stores msgs in the session so that the next request can show them.
func Keep(c *gin.Context, msgs Messages) error {
	if len(msgs) == 0 {
		return nil
	}
	session := sessions.Default(c)
	for _, msg := range msgs {
		session.AddFlash(msg)
	}
	return session.Save()
}

// Take pops the messages kept by earlier responses.
func Take(c *gin.Context) Messages {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	msgs := make(Messages, 0, len(raw))
	for _, r := range raw {
		if msg, ok := r.(Message); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
