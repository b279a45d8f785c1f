package meeting

import (
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

const (
	MaxFilesPerUpload = 5
	MaxFileSize       = 5 << 20
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
	".docx": true,
	".xlsx": true,
	".txt":  true,
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Ext is the lower-cased extension of the original name.
func (f UploadFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// ValidateUploadBatch checks the whole batch before anything is written.
func ValidateUploadBatch(files []UploadFile) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	if len(files) > MaxFilesPerUpload {
		return ErrTooManyFiles
	}

	for _, f := range files {
		if f.Size > MaxFileSize {
			return ErrFileTooLarge
		}
		if !allowedExtensions[f.Ext()] {
			return ErrUnsupportedFileType
		}
	}
	return nil
}

func IsAttachmentKind(kind string) bool {
	return kind == models.AttachmentAssignment || kind == models.AttachmentSubmission
}

// MeetingFileKey is the storage key of a meeting-level file.
func MeetingFileKey(meetingID uuid.UUID, fileName string) string {
	return path.Join("meetings", meetingID.String(), fileName)
}

// ActionItemFileKey is the storage key of an action-item file of one side.
func ActionItemFileKey(itemID uuid.UUID, kind, fileName string) string {
	return path.Join("action-items", itemID.String(), kind, fileName)
}

// StoredName gives the file a unique name keeping its extension.
func StoredName(id uuid.UUID, f UploadFile) string {
	return id.String() + f.Ext()
}

// SafeFileName rejects names that could escape their storage prefix.
func SafeFileName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidFileName
	}
	return nil
}

// FileURL is the API path serving a stored key.
func FileURL(key string) string {
	return "/api/files/" + key
}
