package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/leads"
	"github.com/corstar/site-intake/pkg/logging"
)

var fixedNow = time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC)

func seededRepo(t *testing.T) *leads.InMemoryRepository {
	t.Helper()
	repo := leads.NewInMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := repo.Insert(ctx, inquiry.TableInquiries, &inquiry.Submission{
			FullName: "Ada", Phone: "5551234", Intent: "callback", Source: "footer",
		})
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, inquiry.TableInquiries, &inquiry.Submission{
		FullName: "Grace, Hopper", Email: "g@x.io", Intent: "contact", Source: "nav", Details: "line one\nline two",
	})
	require.NoError(t, err)
	return repo
}

func newTestHandler(repo leads.Repository, archiver *Archiver) *Handler {
	h := NewHandler(repo, archiver, logging.New("error"))
	h.now = func() time.Time { return fixedNow }
	return h
}

func get(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestList_FiltersAndPaginates(t *testing.T) {
	h := newTestHandler(seededRepo(t), nil)

	rec := get(h.List, "/functions/v1/admin-data?intent=callback&page=2&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Page)
}

func TestList_DefaultsAndCapsLimit(t *testing.T) {
	h := newTestHandler(seededRepo(t), nil)

	var resp ListResponse
	rec := get(h.List, "/functions/v1/admin-data?limit=500")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, MaxPageSize, resp.Limit)
	assert.Equal(t, 4, resp.Count)

	rec = get(h.List, "/functions/v1/admin-data")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, DefaultPageSize, resp.Limit)
}

func TestList_EmptyTableReturnsEmptyArray(t *testing.T) {
	h := newTestHandler(leads.NewInMemoryRepository(), nil)
	rec := get(h.List, "/functions/v1/admin-data?table=leads")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestList_RejectsBadParams(t *testing.T) {
	h := newTestHandler(seededRepo(t), nil)
	for target, want := range map[string]string{
		"/functions/v1/admin-data?intent=support": "Invalid intent type",
		"/functions/v1/admin-data?table=users":    "Invalid table",
		"/functions/v1/admin-data?page=0":         "Invalid pagination",
		"/functions/v1/admin-data?limit=abc":      "Invalid pagination",
	} {
		rec := get(h.List, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), want, target)
	}
}

func TestList_HugePageIsRejected(t *testing.T) {
	h := newTestHandler(seededRepo(t), nil)

	rec := get(h.List, "/functions/v1/admin-data?page=9223372036854775807&limit=50")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid pagination")

	rec = get(h.List, "/functions/v1/admin-data?page=1000000&limit=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestList_IntentFilterRejectedForLeads(t *testing.T) {
	h := newTestHandler(seededRepo(t), nil)
	rec := get(h.List, "/functions/v1/admin-data?table=leads&intent=quote")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Intent filter is not supported for leads")
}

type brokenRepo struct{}

func (brokenRepo) Insert(context.Context, string, *inquiry.Submission) (*leads.Record, error) {
	return nil, errors.New("down")
}

func (brokenRepo) List(context.Context, leads.ListFilter) ([]*leads.Record, int, error) {
	return nil, 0, errors.New("down")
}

func TestList_RepositoryFailure(t *testing.T) {
	rec := get(newTestHandler(brokenRepo{}, nil).List, "/functions/v1/admin-data")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "down")
}

func TestExport_WritesCSVAttachment(t *testing.T) {
	h := newTestHandler(seededRepo(t), nil)

	rec := get(h.Export, "/functions/v1/admin-data/export?intent=contact")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="inquiries-contact-2025-03-01.csv"`, rec.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Grace, Hopper", rows[1][4])
	assert.Equal(t, "line one\nline two", rows[1][12])
}

func TestWriteCSV_PagesThroughLargeTables(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	for i := 0; i < exportPageSize+5; i++ {
		_, err := repo.Insert(context.Background(), inquiry.TableLeads, &inquiry.Submission{FullName: "Ada", Email: "a@b.co"})
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	n, err := WriteCSV(context.Background(), &buf, repo, leads.ListFilter{Table: inquiry.TableLeads})
	require.NoError(t, err)
	assert.Equal(t, exportPageSize+5, n)
	assert.Equal(t, exportPageSize+6, strings.Count(buf.String(), "\n"))
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestArchive_UploadsExportAndAppendsManifest(t *testing.T) {
	store := newFakeS3()
	h := newTestHandler(seededRepo(t), NewArchiver(store, "corstar-exports", logging.New("error")))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Archive(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/admin-data/archive?intent=callback", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"key":"exports/2025/03/inquiries-callback-2025-03-01.csv","rows":3}`, rec.Body.String())
	}

	assert.Contains(t, string(store.objects["exports/2025/03/inquiries-callback-2025-03-01.csv"]), "Ada")
	manifest := string(store.objects["exports/manifests/2025-03.jsonl"])
	assert.Equal(t, 2, strings.Count(manifest, "\n"))
	assert.Contains(t, manifest, `"rows":3`)
}

func TestArchive_DisabledWithoutBucket(t *testing.T) {
	h := newTestHandler(seededRepo(t), NewArchiver(newFakeS3(), "", nil))
	rec := httptest.NewRecorder()
	h.Archive(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/admin-data/archive", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestArchive_UploadFailure(t *testing.T) {
	store := newFakeS3()
	store.putErr = errors.New("access denied")
	h := newTestHandler(seededRepo(t), NewArchiver(store, "corstar-exports", nil))

	rec := httptest.NewRecorder()
	h.Archive(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/admin-data/archive", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
