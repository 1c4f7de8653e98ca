package repository

import (
	"docvault/internal/config"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches nothing
	ErrNotFound = generic.ErrNotFound
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = generic.ErrDuplicate
)

// Collection names
const (
	UsersCollection           = "users"
	DepartmentsCollection     = "departments"
	DocumentsCollection       = "documents"
	PermissionsCollection     = "documentpermissions"
	VersionsCollection        = "documentversions"
	CommentsCollection        = "comments"
	NotesCollection           = "notes"
	HighlightsCollection      = "highlights"
	BookmarksCollection       = "bookmarks"
	NotificationsCollection   = "notifications"
	GmailTokensCollection     = "gmailtokens"
	MailAttachmentsCollection = "mailattachments"
)

// Repositories groups every store the services depend on
type Repositories struct {
	Users           IUserRepository
	Departments     IDepartmentRepository
	Documents       IDocumentRepository
	Permissions     IPermissionRepository
	Versions        IVersionRepository
	Comments        ICommentRepository
	Notes           INoteRepository
	Highlights      IHighlightRepository
	Bookmarks       IBookmarkRepository
	Notifications   INotificationRepository
	GmailTokens     IGmailTokenRepository
	MailAttachments IMailAttachmentRepository
}

// NewMongoRepositories wires every repository to its collection in db
func NewMongoRepositories(cfg *config.Config, db *mongo.Database) *Repositories {
	return &Repositories{
		Users:           NewUserRepository(cfg, db),
		Departments:     NewDepartmentRepository(cfg, db),
		Documents:       NewDocumentRepository(cfg, db),
		Permissions:     NewPermissionRepository(cfg, db),
		Versions:        NewVersionRepository(cfg, db),
		Comments:        NewCommentRepository(cfg, db),
		Notes:           NewNoteRepository(cfg, db),
		Highlights:      NewHighlightRepository(cfg, db),
		Bookmarks:       NewBookmarkRepository(cfg, db),
		Notifications:   NewNotificationRepository(cfg, db),
		GmailTokens:     NewGmailTokenRepository(cfg, db),
		MailAttachments: NewMailAttachmentRepository(cfg, db),
	}
}
