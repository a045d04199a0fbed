// Package storage manages physical claim documents and their registry.
//
// Documents live under one subdirectory per claim id; every stored file is
// tracked by a registry entry in a flat JSON container. Incoming files are
// checked against the type and size policy before anything touches disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/campusworks/claimflow/internal/logger"
	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/store"
)

// Size caps enforced by the validation policy.
const (
	MaxDocumentSize = 50 * 1024 * 1024
	MaxImageSize    = 10 * 1024 * 1024
)

var (
	allowedDocumentExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"}
	allowedImageExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}
)

// ValidationError reports a file that violates the type or size policy.
type ValidationError struct {
	FileName string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Reason)
}

// FileStorage stores claim documents under a base directory and tracks them
// in the file registry container.
type FileStorage struct {
	mu       sync.Mutex
	baseDir  string
	registry *store.Store[models.FileRegistryEntry]
}

// New creates a FileStorage rooted at baseDir, creating the directory if
// needed.
func New(baseDir string, registry *store.Store[models.FileRegistryEntry]) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{baseDir: baseDir, registry: registry}, nil
}

// BaseDir returns the storage root.
func (fsg *FileStorage) BaseDir() string {
	return fsg.baseDir
}

// SaveFile validates the source file, copies it into the claim's directory
// under a timestamp-suffixed name and registers it. Returns the destination
// path.
func (fsg *FileStorage) SaveFile(sourcePath, claimID string) (string, error) {
	size, kind, err := fsg.validateFile(sourcePath)
	if err != nil {
		return "", err
	}

	claimDir := filepath.Join(fsg.baseDir, claimID)
	if err := os.MkdirAll(claimDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create claim directory: %w", err)
	}

	original := filepath.Base(sourcePath)
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	storedName := fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102150405"), ext)
	destination := filepath.Join(claimDir, storedName)

	if err := copyFile(sourcePath, destination); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", original, err)
	}

	entry := models.FileRegistryEntry{
		FileID:           uuid.NewString(),
		ClaimID:          claimID,
		OriginalFileName: original,
		StoredFileName:   storedName,
		StoragePath:      destination,
		FileSize:         size,
		UploadDate:       time.Now(),
		FileType:         kind,
	}
	if err := fsg.register(entry); err != nil {
		return "", err
	}

	logger.Log.Debug().
		Str("claim_id", claimID).
		Str("file_id", entry.FileID).
		Int64("size", size).
		Msg("Stored claim document")
	return destination, nil
}

// SaveMultipleFiles saves each file best-effort. Failures are logged and
// skipped; only the successfully stored destination paths are returned.
func (fsg *FileStorage) SaveMultipleFiles(sourcePaths []string, claimID string) []string {
	var saved []string
	for _, path := range sourcePaths {
		destination, err := fsg.SaveFile(path, claimID)
		if err != nil {
			logger.Log.Warn().Err(err).
				Str("claim_id", claimID).
				Str("file", filepath.Base(path)).
				Msg("Failed to save file")
			continue
		}
		saved = append(saved, destination)
	}
	return saved
}

// GetClaimFiles returns the registry entries for one claim.
func (fsg *FileStorage) GetClaimFiles(claimID string) []models.FileRegistryEntry {
	var entries []models.FileRegistryEntry
	for _, e := range fsg.registry.Load() {
		if e.ClaimID == claimID {
			entries = append(entries, e)
		}
	}
	return entries
}

// GetFileByPath returns the registry entry for a stored path.
func (fsg *FileStorage) GetFileByPath(storagePath string) (*models.FileRegistryEntry, bool) {
	entries := fsg.registry.Load()
	for i := range entries {
		if entries[i].StoragePath == storagePath {
			return &entries[i], true
		}
	}
	return nil, false
}

// Open returns a reader over the stored bytes of a registered file.
func (fsg *FileStorage) Open(fileID string) (io.ReadCloser, error) {
	for _, e := range fsg.registry.Load() {
		if e.FileID == fileID {
			f, err := os.Open(e.StoragePath)
			if err != nil {
				return nil, fmt.Errorf("file %s not found in storage: %w", e.StoredFileName, err)
			}
			return f, nil
		}
	}
	return nil, fmt.Errorf("file %s not found in registry", fileID)
}

// DeleteFile removes the physical file (if present) and its registry entry.
// Reports whether a registry entry was found.
func (fsg *FileStorage) DeleteFile(fileID string) bool {
	fsg.mu.Lock()
	defer fsg.mu.Unlock()

	entries := fsg.registry.Load()
	for i := range entries {
		if entries[i].FileID != fileID {
			continue
		}

		if err := os.Remove(entries[i].StoragePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Log.Error().Err(err).Str("file_id", fileID).Msg("Failed to delete stored file")
			return false
		}

		entries = append(entries[:i], entries[i+1:]...)
		if err := fsg.registry.Save(entries); err != nil {
			logger.Log.Error().Err(err).Str("file_id", fileID).Msg("Failed to update file registry")
			return false
		}
		return true
	}
	return false
}

// DeleteClaimFiles removes every file belonging to a claim and the claim's
// directory once it is empty. Failures are logged, not returned.
func (fsg *FileStorage) DeleteClaimFiles(claimID string) {
	for _, e := range fsg.GetClaimFiles(claimID) {
		if !fsg.DeleteFile(e.FileID) {
			logger.Log.Warn().Str("file_id", e.FileID).Str("claim_id", claimID).Msg("Could not delete claim file")
		}
	}

	claimDir := filepath.Join(fsg.baseDir, claimID)
	entries, err := os.ReadDir(claimDir)
	if err == nil && len(entries) == 0 {
		if err := os.Remove(claimDir); err != nil {
			logger.Log.Warn().Err(err).Str("claim_id", claimID).Msg("Could not remove claim directory")
		}
	}
}

// CleanupOrphanedFiles deletes every registry entry whose claim id is not in
// the live claim set. Returns the number of entries removed.
func (fsg *FileStorage) CleanupOrphanedFiles(liveClaimIDs []string) int {
	live := make(map[string]struct{}, len(liveClaimIDs))
	for _, id := range liveClaimIDs {
		live[id] = struct{}{}
	}

	cleaned := 0
	for _, e := range fsg.registry.Load() {
		if _, ok := live[e.ClaimID]; ok {
			continue
		}
		if fsg.DeleteFile(e.FileID) {
			cleaned++
		}
	}
	if cleaned > 0 {
		logger.Log.Info().Int("count", cleaned).Msg("Removed orphaned files")
	}
	return cleaned
}

// GetStorageStatistics aggregates the registry by count, bytes, file kind and
// claim.
func (fsg *FileStorage) GetStorageStatistics() models.StorageStats {
	stats := models.StorageStats{
		FilesByType:  make(map[string]int),
		FilesByClaim: make(map[string]int),
	}
	for _, e := range fsg.registry.Load() {
		stats.TotalFiles++
		stats.TotalSizeBytes += e.FileSize
		stats.FilesByType[e.FileType]++
		stats.FilesByClaim[e.ClaimID]++
	}
	return stats
}

// FormatFileSize renders a byte count for display, e.g. "1.5 MB".
func FormatFileSize(bytes int64) string {
	sizes := []string{"B", "KB", "MB", "GB"}
	value := float64(bytes)
	order := 0
	for value >= 1024 && order < len(sizes)-1 {
		order++
		value /= 1024
	}
	formatted := strconv.FormatFloat(value, 'f', 2, 64)
	formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
	return formatted + " " + sizes[order]
}

// FileKind classifies an extension as Document, Image or Unknown.
func FileKind(extension string) string {
	ext := strings.ToLower(extension)
	for _, allowed := range allowedDocumentExtensions {
		if ext == allowed {
			return models.FileTypeDocument
		}
	}
	for _, allowed := range allowedImageExtensions {
		if ext == allowed {
			return models.FileTypeImage
		}
	}
	return models.FileTypeUnknown
}

// validateFile checks the file against the type and size policy, returning
// its size and kind.
func (fsg *FileStorage) validateFile(path string) (int64, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, "", fmt.Errorf("file does not exist: %s", filepath.Base(path))
	}

	name := filepath.Base(path)
	kind := FileKind(filepath.Ext(path))

	switch kind {
	case models.FileTypeUnknown:
		return 0, "", &ValidationError{
			FileName: name,
			Reason: fmt.Sprintf("file type %s is not allowed. Allowed types: %s",
				strings.ToLower(filepath.Ext(path)),
				strings.Join(append(append([]string{}, allowedDocumentExtensions...), allowedImageExtensions...), ", ")),
		}
	case models.FileTypeDocument:
		if info.Size() > MaxDocumentSize {
			return 0, "", &ValidationError{
				FileName: name,
				Reason: fmt.Sprintf("document file size exceeds maximum allowed size of 50 MB (file size: %.2f MB)",
					float64(info.Size())/(1024*1024)),
			}
		}
	case models.FileTypeImage:
		if info.Size() > MaxImageSize {
			return 0, "", &ValidationError{
				FileName: name,
				Reason: fmt.Sprintf("image file size exceeds maximum allowed size of 10 MB (file size: %.2f MB)",
					float64(info.Size())/(1024*1024)),
			}
		}
	}
	return info.Size(), kind, nil
}

// register appends an entry to the file registry.
func (fsg *FileStorage) register(entry models.FileRegistryEntry) error {
	fsg.mu.Lock()
	defer fsg.mu.Unlock()

	entries := fsg.registry.Load()
	entries = append(entries, entry)
	if err := fsg.registry.Save(entries); err != nil {
		return fmt.Errorf("failed to register file %s: %w", entry.OriginalFileName, err)
	}
	return nil
}

// copyFile copies src to dst, overwriting any existing destination.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
