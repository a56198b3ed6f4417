package audit

import (
	"context"
	"sync"
	"time"

	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/logging"
)

// bufferSize bounds how many pending entries Logger will queue before it
// starts dropping writes rather than blocking the caller.
const bufferSize = 1000

// Logger buffers Record calls and writes them to a Store on a background
// goroutine, so a slow disk never adds latency to a stream response.
type Logger struct {
	store   *Store
	entries chan Entry
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewLogger starts the background writer and returns a ready Logger. Close
// must be called to drain the buffer and stop the writer on shutdown.
func NewLogger(store *Store) *Logger {
	l := &Logger{
		store:   store,
		entries: make(chan Entry, bufferSize),
		stop:    make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Logger) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stop:
			for {
				select {
				case e := <-l.entries:
					l.write(e)
				default:
					return
				}
			}
		case e := <-l.entries:
			l.write(e)
		}
	}
}

func (l *Logger) write(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.save(ctx, e); err != nil {
		logging.Error().Err(err).Str("user_id", e.UserID).Str("content_id", e.ContentID).
			Msg("audit log write failed")
	}
}

// Record enqueues a download-audit entry. It never blocks the caller: a
// full buffer drops the entry with a warning rather than stalling the
// stream it's describing.
func (l *Logger) Record(userID, contentID string, contentType catalog.ContentType) {
	e := Entry{UserID: userID, ContentID: contentID, ContentType: contentType, RequestedAt: time.Now().UTC()}
	select {
	case l.entries <- e:
	default:
		logging.Warn().Str("user_id", userID).Str("content_id", contentID).
			Msg("audit log buffer full, dropping entry")
	}
}

// Close stops the writer goroutine after draining whatever is already
// buffered.
func (l *Logger) Close() {
	close(l.stop)
	l.wg.Wait()
}
