// Package memory implements every repository interface over in-process maps.
// It backs DB_DRIVER=memory and the service and handler tests.
package memory

import (
	"time"

	"docvault/internal/repository"
	"docvault/pkg/generic"
)

// NewRepositories returns an empty in-memory store set
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Users:           NewUserRepository(),
		Departments:     NewDepartmentRepository(),
		Documents:       NewDocumentRepository(),
		Permissions:     NewPermissionRepository(),
		Versions:        NewVersionRepository(),
		Comments:        NewCommentRepository(),
		Notes:           NewNoteRepository(),
		Highlights:      NewHighlightRepository(),
		Bookmarks:       NewBookmarkRepository(),
		Notifications:   NewNotificationRepository(),
		GmailTokens:     NewGmailTokenRepository(),
		MailAttachments: NewMailAttachmentRepository(),
	}
}

// newestFirst orders items by descending creation time. Stored times are
// truncated to milliseconds, so ties fall back to reverse insertion order.
func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	generic.SortBy(items, func(a, b T) bool { return createdAt(a).After(createdAt(b)) })
}
