package app

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
)

// maxParallelReads bounds concurrent attachment reads.
const maxParallelReads = 4

// IngestAttachments reads every file, stores its payload in the blob store,
// and returns the attachment records in the order given. Reads run
// concurrently; if any fails, none of the records are returned.
func (s *Service) IngestAttachments(ctx context.Context, paths []string) ([]model.Attachment, error) {
	out := make([]model.Attachment, len(paths))
	now := s.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading attachment %s: %w", path, err)
			}
			att, err := s.storeAttachment(ctx, filepath.Base(path), mediaTypeOf(path, data), data, now)
			if err != nil {
				return fmt.Errorf("storing attachment %s: %w", path, err)
			}
			out[i] = att
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// storeAttachment puts data in the blob store and returns its record.
func (s *Service) storeAttachment(ctx context.Context, name, mediaType string, data []byte, at time.Time) (model.Attachment, error) {
	ref, err := s.store.PutBlob(ctx, data, mediaType)
	if err != nil {
		return model.Attachment{}, err
	}
	return model.Attachment{
		Name:       name,
		Type:       mediaType,
		Size:       int64(len(data)),
		Ref:        ref,
		UploadedAt: at,
	}, nil
}

func mediaTypeOf(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

// Attachment returns the record and payload of a task's attachment by
// name. Archived tasks are searched too.
func (s *Service) Attachment(ctx context.Context, taskID, name string) (model.Attachment, []byte, bool, error) {
	var (
		att   model.Attachment
		found bool
	)
	s.read(func(st *board.State) {
		t, ok := st.Task(taskID)
		if !ok {
			t, ok = st.ArchivedTask(taskID)
		}
		if !ok {
			return
		}
		for _, a := range t.Attachments {
			if a.Name == name {
				att, found = a, true
				return
			}
		}
	})
	if !found {
		return model.Attachment{}, nil, false, nil
	}
	data, err := s.store.GetBlob(ctx, att.Ref)
	if err != nil {
		return att, nil, true, fmt.Errorf("loading attachment %q of task %s: %w", name, taskID, err)
	}
	return att, data, true, nil
}

// PruneBlobs deletes stored payloads no task refers to any more.
func (s *Service) PruneBlobs(ctx context.Context) (int, error) {
	keep := make(map[string]bool)
	s.read(func(st *board.State) {
		for _, tasks := range [][]model.Task{st.Tasks, st.Archived} {
			for _, t := range tasks {
				for _, a := range t.Attachments {
					if a.Ref != "" {
						keep[a.Ref] = true
					}
				}
			}
		}
	})
	n, err := s.store.DeleteUnreferencedBlobs(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning blobs: %w", err)
	}
	if n > 0 {
		s.log.Info("Pruned attachment blobs", logger.F("count", n))
	}
	return n, nil
}
