package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/r56149203/EduSphere/services/storage"
	"github.com/r56149203/EduSphere/utils/pdfvalidation"
)

// PDFDir is the directory under the upload root holding resource PDFs
const PDFDir = "pdfs"

// FileUpload is one file received from a multipart form
type FileUpload struct {
	Name string
	Size int64
	// Err is set when the transport failed to deliver the part
	Err  error
	open func() (io.ReadCloser, error)
}

// NewFileUpload wraps a multipart header as returned by fiber's FormFile
func NewFileUpload(fh *multipart.FileHeader, err error) *FileUpload {
	if fh == nil {
		if err == nil {
			err = fmt.Errorf("no file received")
		}
		return &FileUpload{Err: err}
	}
	return &FileUpload{
		Name: fh.Filename,
		Size: fh.Size,
		Err:  err,
		open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// NewReaderUpload builds a FileUpload from an in-memory or streamed body
func NewReaderUpload(name string, size int64, r io.Reader) *FileUpload {
	return &FileUpload{
		Name: name,
		Size: size,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// UploadService validates and stores uploaded PDFs
type UploadService struct {
	store      storage.FileStore
	maxSize    int64
	extensions []string
	now        func() time.Time
}

// NewUploadService stores accepted files in store; maxSize is inclusive
func NewUploadService(store storage.FileStore, maxSize int64) *UploadService {
	return &UploadService{
		store:      store,
		maxSize:    maxSize,
		extensions: []string{"pdf"},
		now:        time.Now,
	}
}

// Store returns the underlying file store
func (s *UploadService) Store() storage.FileStore {
	return s.store
}

func (s *UploadService) allowed(ext string) bool {
	for _, e := range s.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (s *UploadService) limitLabel() string {
	if s.maxSize%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", s.maxSize>>20)
	}
	return fmt.Sprintf("%d bytes", s.maxSize)
}

// Upload runs every check, stores the file under a generated name and returns
// the path relative to the upload root (pdfs/<name>). All failures are an *UploadError.
func (s *UploadService) Upload(ctx context.Context, f *FileUpload) (string, error) {
	if f == nil || f.Err != nil {
		reason := "no file received"
		if f != nil {
			reason = f.Err.Error()
		}
		return "", &UploadError{Reasons: []string{"File upload failed: " + reason}}
	}

	var reasons []string
	if f.Size > s.maxSize {
		reasons = append(reasons, fmt.Sprintf("File is too large. Maximum size is %s.", s.limitLabel()))
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if !s.allowed(ext) {
		reasons = append(reasons, fmt.Sprintf("Invalid file type. Only %s files are allowed.", strings.Join(s.extensions, ", ")))
	}
	if len(reasons) > 0 {
		return "", &UploadError{Reasons: reasons}
	}

	name := fmt.Sprintf("%s_%d.%s", strings.ReplaceAll(uuid.NewString(), "-", ""), s.now().Unix(), ext)

	src, err := f.open()
	if err != nil {
		log.Printf("upload: failed to open part %q: %v", f.Name, err)
		return "", &UploadError{Reasons: []string{"Failed to move uploaded file."}}
	}
	defer src.Close()

	// one byte past the limit catches bodies larger than their declared size
	written, err := s.store.Save(ctx, name, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		log.Printf("upload: failed to store %s: %v", name, err)
		return "", &UploadError{Reasons: []string{"Failed to move uploaded file."}}
	}
	if written > s.maxSize {
		s.discard(ctx, name)
		return "", &UploadError{Reasons: []string{fmt.Sprintf("File is too large. Maximum size is %s.", s.limitLabel())}}
	}

	if ext == "pdf" && !s.isPDF(name) {
		s.discard(ctx, name)
		return "", &UploadError{Reasons: []string{"Uploaded file is not a valid PDF."}}
	}

	return PDFDir + "/" + name, nil
}

// Remove deletes a stored file given its path relative to the upload root
func (s *UploadService) Remove(ctx context.Context, relPath string) error {
	name, ok := StoredName(relPath)
	if !ok {
		return storage.ErrInvalidName
	}
	return s.store.Delete(ctx, name)
}

// StoredName extracts the file name from a pdfs/<name> path
func StoredName(relPath string) (string, bool) {
	dir, name := filepath.Split(filepath.ToSlash(relPath))
	if strings.TrimSuffix(dir, "/") != PDFDir || name == "" {
		return "", false
	}
	return name, true
}

func (s *UploadService) isPDF(name string) bool {
	path := s.store.Path(name)
	mtype, err := mimetype.DetectFile(path)
	if err != nil || !mtype.Is("application/pdf") {
		return false
	}
	result, err := pdfvalidation.ValidateFile(path, pdfvalidation.PDFLimits{MaxFileSize: s.maxSize, MaxPages: pdfvalidation.ResourceLimits.MaxPages})
	if err != nil {
		return false
	}
	if !result.Valid {
		log.Printf("upload: rejected %s: %s", name, result.Error)
	}
	return result.Valid
}

func (s *UploadService) discard(ctx context.Context, name string) {
	if err := s.store.Delete(ctx, name); err != nil {
		log.Printf("upload: failed to remove rejected file %s: %v", name, err)
	}
}
