package inbox

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// maxDescription bounds the body copied into a task description, in runes.
const maxDescription = 4000

// urgentMarker in a subject raises the task priority to urgent.
var urgentMarker = regexp.MustCompile(`(?i)\[(urgent|urgence)\]|^urgent:`)

// Parse reads a raw RFC 5322 message and returns its text body and
// attached files. A text/plain part wins over text/html, which is
// reduced to plain text. Unparseable input is returned as the body.
func Parse(raw []byte) (string, []Part) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), nil
	}
	defer mr.Close()

	var (
		text, html string
		parts      []Part
	)
	for {
		p, err := mr.NextPart()
		if err == io.EOF || err != nil {
			break
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/plain") && text == "":
				text = string(body)
			case strings.HasPrefix(contentType, "text/html") && html == "":
				html = string(body)
			}

		case *mail.AttachmentHeader:
			name, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			if name == "" {
				name = "attachment"
			}
			parts = append(parts, Part{Name: name, Type: contentType, Data: body})
		}
	}

	if text == "" {
		text = stripHTML(html)
	}
	return strings.TrimSpace(text), parts
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes tags and decodes the common entities.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>"} {
		result = strings.ReplaceAll(result, tag, "\n")
	}
	result = htmlTagPattern.ReplaceAllString(result, "")
	result = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}

// ContactFunc resolves a sender address to a contact id.
type ContactFunc func(addr string) (string, bool)

// ToInput maps a message to a new task dated on the day it was sent, in
// loc. The sender is assigned when they are a known contact. Attachments
// are left to the caller since they need the blob store.
func ToInput(m Message, loc *time.Location, categoryID string, contact ContactFunc) board.TaskInput {
	name := strings.TrimSpace(m.Subject)
	priority := model.PriorityMedium
	if urgentMarker.MatchString(name) {
		priority = model.PriorityUrgent
		name = strings.TrimSpace(urgentMarker.ReplaceAllString(name, ""))
	}
	if name == "" {
		name = "(no subject)"
	}

	desc := m.Text
	if r := []rune(desc); len(r) > maxDescription {
		desc = string(r[:maxDescription])
	}
	from := m.FromAddr
	if m.FromName != "" {
		from = m.FromName + " <" + m.FromAddr + ">"
	}
	if from != "" {
		desc = strings.TrimSpace("From: " + from + "\n\n" + desc)
	}

	sent := m.Date
	if sent.IsZero() {
		sent = time.Now()
	}

	in := board.TaskInput{
		Name:        name,
		Description: desc,
		Date:        sent.In(loc).Format(model.DateLayout),
		CategoryID:  categoryID,
		Status:      model.StatusTodo,
		Priority:    priority,
	}
	if contact != nil && m.FromAddr != "" {
		if id, ok := contact(m.FromAddr); ok {
			in.Assignees = []string{id}
		}
	}
	return in
}
