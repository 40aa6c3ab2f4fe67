package service

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"testing"

	"github.com/deppfellow/mlm-api/internal/errs"
	"github.com/deppfellow/mlm-api/internal/lib/upload"
	pkgerrors "github.com/pkg/errors"
)

type fakeStore struct {
	files     map[string]bool
	deleteErr error
	deleted   []string
}

func (f *fakeStore) FileURL(name string) string { return "http://localhost:3000/uploads/" + name }
func (f *fakeStore) Exists(name string) bool    { return f.files[name] }

func (f *fakeStore) Delete(name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	delete(f.files, name)
	return nil
}

func TestDescribe(t *testing.T) {
	svc := NewProductImageService(&fakeStore{})

	got, err := svc.Describe(&upload.StoredFile{
		OriginalName: "shoe.png",
		MimeType:     "image/png",
		Size:         42,
		Filename:     "1b4e28ba-2fa1-11d2-883f-0016d3cca427.png",
	})
	if err != nil {
		t.Fatalf("Describe() unexpected error: %v", err)
	}
	if got.URL != "http://localhost:3000/uploads/1b4e28ba-2fa1-11d2-883f-0016d3cca427.png" {
		t.Fatalf("URL = %q", got.URL)
	}

	if _, err := svc.Describe(nil); err == nil {
		t.Fatal("Describe(nil) should fail")
	}
}

func TestStatus(t *testing.T) {
	svc := NewProductImageService(&fakeStore{files: map[string]bool{"a.png": true}})

	if st := svc.Status("a.png"); !st.Exists || st.Filename != "a.png" {
		t.Fatalf("Status(a.png) = %+v", st)
	}
	if st := svc.Status("b.png"); st.Exists {
		t.Fatalf("Status(b.png) = %+v, want exists=false", st)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name       string
		store      *fakeStore
		file       string
		wantStatus int
	}{
		{
			name:  "stored",
			store: &fakeStore{files: map[string]bool{"a.png": true}},
			file:  "a.png",
		},
		{
			name:       "missing",
			store:      &fakeStore{files: map[string]bool{}},
			file:       "a.png",
			wantStatus: http.StatusNotFound,
		},
		{
			name: "deleted concurrently",
			store: &fakeStore{
				files:     map[string]bool{"a.png": true},
				deleteErr: pkgerrors.Wrapf(fs.ErrNotExist, "failed to delete file: %s", "a.png"),
			},
			file:       "a.png",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewProductImageService(tt.store).Remove(context.Background(), tt.file)

			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("Remove() unexpected error: %v", err)
				}
				if len(tt.store.deleted) != 1 || tt.store.deleted[0] != tt.file {
					t.Fatalf("deleted = %v", tt.store.deleted)
				}
				return
			}

			var httpErr *errs.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Status != tt.wantStatus {
				t.Fatalf("Remove() error = %v, want status %d", err, tt.wantStatus)
			}
		})
	}
}

func TestRemove_DeleteFailure(t *testing.T) {
	store := &fakeStore{
		files:     map[string]bool{"a.png": true},
		deleteErr: pkgerrors.Wrapf(fs.ErrPermission, "failed to delete file: %s", "a.png"),
	}

	err := NewProductImageService(store).Remove(context.Background(), "a.png")
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("Remove() error = %v, want the delete failure", err)
	}
}
