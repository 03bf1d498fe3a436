package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	documentService "github.com/m04kA/SMC-VetBookingService/internal/service/documents"
	"github.com/m04kA/SMC-VetBookingService/internal/service/documents/models"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
)

type fakeService struct {
	uploadedName string
	uploaded     []byte
	uploadErr    error
	doc          *models.DocumentResponse
	content      string
}

func (f *fakeService) Upload(_ context.Context, _ domain.Principal, req *models.UploadRequest) (*models.DocumentResponse, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}
	f.uploadedName = req.FileName
	f.uploaded = data
	return &models.DocumentResponse{ID: uuid.New(), AppointmentID: req.AppointmentID, FileName: req.FileName, SizeBytes: int64(len(data))}, nil
}

func (f *fakeService) Open(_ context.Context, _ domain.Principal, id uuid.UUID) (*models.DocumentResponse, io.ReadCloser, error) {
	if f.doc == nil || f.doc.ID != id {
		return nil, nil, documentService.ErrDocumentNotFound
	}
	return f.doc, io.NopCloser(bytes.NewBufferString(f.content)), nil
}

func (f *fakeService) ListByAppointment(_ context.Context, _ domain.Principal, _ uuid.UUID) (*models.DocumentListResponse, error) {
	return &models.DocumentListResponse{Documents: []models.DocumentResponse{}}, nil
}

func newRouter(svc DocumentService) *mux.Router {
	h := NewHandler(svc, 1024, logger.NewDiscard())
	p := domain.Principal{UserID: uuid.New(), Roles: domain.NewRoleSet(domain.RoleOwner)}
	withPrincipal := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			next(w, r.WithContext(middleware.WithPrincipal(r.Context(), p)))
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/documents/upload/appointment/{id}", withPrincipal(h.Upload)).Methods(http.MethodPost)
	r.HandleFunc("/api/documents/download/{id}", withPrincipal(h.Download)).Methods(http.MethodGet)
	return r
}

func multipartBody(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("comment", "ignored"))
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUpload_StreamsFilePart(t *testing.T) {
	svc := &fakeService{}
	body, contentType := multipartBody(t, "file", "xray.png", []byte("\x89PNG\r\n\x1a\nrest"))

	r := httptest.NewRequest(http.MethodPost, "/api/documents/upload/appointment/"+uuid.NewString(), body)
	r.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "xray.png", svc.uploadedName)
	assert.Equal(t, "\x89PNG\r\n\x1a\nrest", string(svc.uploaded))

	var resp models.DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.SizeBytes)
}

func TestUpload_Errors(t *testing.T) {
	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartBody(t, "attachment", "a.pdf", []byte("%PDF"))
		r := httptest.NewRequest(http.MethodPost, "/api/documents/upload/appointment/"+uuid.NewString(), body)
		r.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newRouter(&fakeService{}).ServeHTTP(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/documents/upload/appointment/"+uuid.NewString(), bytes.NewBufferString("{}"))
		r.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newRouter(&fakeService{}).ServeHTTP(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	tests := []struct {
		err  error
		want int
	}{
		{err: documentService.ErrFileTooLarge, want: http.StatusRequestEntityTooLarge},
		{err: documentService.ErrUnsupportedType, want: http.StatusUnsupportedMediaType},
		{err: documentService.ErrAccessDenied, want: http.StatusForbidden},
		{err: documentService.ErrAppointmentNotFound, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			body, contentType := multipartBody(t, "file", "a.pdf", []byte("%PDF"))
			r := httptest.NewRequest(http.MethodPost, "/api/documents/upload/appointment/"+uuid.NewString(), body)
			r.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			newRouter(&fakeService{uploadErr: tt.err}).ServeHTTP(rec, r)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDownload_SetsAttachmentHeaders(t *testing.T) {
	doc := &models.DocumentResponse{ID: uuid.New(), FileName: "анализы крови.pdf", ContentType: "application/pdf", SizeBytes: 8}
	svc := &fakeService{doc: doc, content: "%PDF-1.4"}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/download/"+doc.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF-1.4", rec.Body.String())

	rec = httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/download/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
