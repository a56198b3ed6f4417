package audit

import (
	"time"

	"github.com/pezzottify/catalog-server/internal/catalog"
)

// Entry is one download_audit row: a user fetched one piece of content.
type Entry struct {
	UserID      string
	ContentID   string
	ContentType catalog.ContentType
	RequestedAt time.Time
}
