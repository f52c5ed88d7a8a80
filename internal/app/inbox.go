package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/taskboard/internal/inbox"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
)

// CapturedMail pairs a message with the task created from it.
type CapturedMail struct {
	UID  uint32
	Task model.Task
}

// CaptureMail creates one task per message, storing the message's files as
// attachments. A message that fails is skipped and reported in the joined
// error; the others are still created. An empty categoryID selects the
// first category.
func (s *Service) CaptureMail(ctx context.Context, msgs []inbox.Message, categoryID string) ([]CapturedMail, error) {
	if categoryID == "" {
		if cats := s.Categories(); len(cats) > 0 {
			categoryID = cats[0].ID
		}
	}
	now := s.Now()
	contact := func(addr string) (string, bool) {
		c, ok := s.ResolveContact(addr)
		return c.ID, ok
	}

	var (
		out  []CapturedMail
		errs []error
	)
	for _, m := range msgs {
		in := inbox.ToInput(m, now.Location(), categoryID, contact)
		for _, p := range m.Parts {
			mediaType := p.Type
			if mediaType == "" {
				mediaType = http.DetectContentType(p.Data)
			}
			att, err := s.storeAttachment(ctx, p.Name, mediaType, p.Data, now)
			if err != nil {
				errs = append(errs, fmt.Errorf("storing %q of %q: %w", p.Name, m.Subject, err))
				continue
			}
			in.Attachments = append(in.Attachments, att)
		}

		t, err := s.CreateTask(ctx, in)
		if err != nil {
			errs = append(errs, fmt.Errorf("capturing %q: %w", m.Subject, err))
			continue
		}
		out = append(out, CapturedMail{UID: m.UID, Task: t})
	}

	if len(out) > 0 {
		s.log.Info("Mail captured as tasks", logger.F("count", len(out)))
	}
	return out, errors.Join(errs...)
}
