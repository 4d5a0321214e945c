package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"mulita-backend/internal/auth"
	"mulita-backend/internal/database"
	"mulita-backend/internal/middleware"
	"mulita-backend/internal/model"
	"mulita-backend/internal/repository"
	"mulita-backend/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var teardown func(context.Context, ...testcontainers.TerminateOption) error
	teardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

// mockStorageClient records uploads and can be told to fail for object
// names under a given prefix.
type mockStorageClient struct {
	uploaded   map[string][]byte
	failPrefix string
	failErr    error
}

func newMockStorageClient() *mockStorageClient {
	return &mockStorageClient{uploaded: make(map[string][]byte)}
}

func (m *mockStorageClient) UploadFile(_ context.Context, objectName string, fileData io.Reader, _ string) error {
	if m.failPrefix != "" && strings.HasPrefix(objectName, m.failPrefix) {
		return m.failErr
	}
	buf, err := io.ReadAll(fileData)
	if err != nil {
		return err
	}
	m.uploaded[objectName] = buf
	return nil
}

func (m *mockStorageClient) PublicURL(objectName string) string {
	return "https://storage.googleapis.com/test-bucket/" + objectName
}

// openEngine mounts the handlers with no gate, for workflow tests.
func openEngine(store StorageClient) *gin.Engine {
	r := gin.New()
	ctrl := NewNewsController(repository.NewNewsRepository(testDB), store)
	r.GET("/noticias", ctrl.GetNews)
	r.GET("/noticias/:id", ctrl.GetNewsByID)
	r.POST("/noticias", ctrl.CreateNews)
	r.PUT("/noticias/:id", ctrl.UpdateNews)
	r.DELETE("/noticias/:id", ctrl.DeleteNews)
	return r
}

// gatedEngine mounts the mutation routes behind the full authorization
// gate, backed by a fake identity provider.
func gatedEngine(t *testing.T, store StorageClient, tokens map[string]string) *gin.Engine {
	t.Helper()
	provider := testutil.NewFakeIdentityProvider(tokens)
	t.Cleanup(provider.Close)
	identity := &auth.IdentityClient{
		BaseURL:    provider.URL,
		ServiceKey: "service-key",
		HTTPClient: provider.Client(),
	}

	r := gin.New()
	ctrl := NewNewsController(repository.NewNewsRepository(testDB), store)
	gate := []gin.HandlerFunc{
		middleware.RequireAuth(identity),
		middleware.CheckRole(model.RoleAdmin, model.RoleSuperAdmin),
	}
	r.POST("/noticias", append(gate, ctrl.CreateNews)...)
	r.PUT("/noticias/:id", append(gate, ctrl.UpdateNews)...)
	r.DELETE("/noticias/:id", append(gate, ctrl.DeleteNews)...)
	return r
}

func wipeNews(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Exec("DELETE FROM noticia").Error)
}

func countNews(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, testDB.Model(&model.News{}).Count(&count).Error)
	return count
}

func seedNews(t *testing.T, titulo string, createdAt time.Time) model.News {
	t.Helper()
	item := model.News{
		Titulo:       titulo,
		Autor:        "Redaccion",
		Introduccion: "Intro",
		Descripcion:  "Cuerpo",
		CreatedAt:    createdAt,
	}
	require.NoError(t, testDB.Create(&item).Error)
	return item
}

func validFields() map[string]string {
	return map[string]string{
		"titulo":       "Nueva noticia",
		"autor":        "Prensa",
		"introduccion": "Introduccion breve",
		"descripcion":  "Cuerpo completo de la noticia",
	}
}

func imageFile() testutil.FilePart {
	return testutil.FilePart{Filename: "tapa.jpg", ContentType: "image/jpeg", Content: []byte("jpeg-bytes")}
}

func attachmentFile() testutil.FilePart {
	return testutil.FilePart{Filename: "informe.pdf", ContentType: "application/pdf", Content: []byte("pdf-bytes")}
}

func TestCreateNews_PrimaryImageOnly(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	r := openEngine(store)

	rec, resp := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "",
		validFields(), map[string]testutil.FilePart{"imagen_principal": imageFile()})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])

	item, ok := resp["noticia"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Nueva noticia", item["titulo"])
	assert.Equal(t, "https://storage.googleapis.com/test-bucket/imagenes/tapa.jpg", item["imagen_principal"])
	assert.Nil(t, item["archivo"])
	assert.NotNil(t, item["id"])
	assert.NotEmpty(t, item["created_at"])

	// Exactly one upload, exactly one row.
	assert.Len(t, store.uploaded, 1)
	assert.Equal(t, []byte("jpeg-bytes"), store.uploaded["imagenes/tapa.jpg"])
	assert.EqualValues(t, 1, countNews(t))
}

func TestCreateNews_WithAttachment(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	r := openEngine(store)

	rec, resp := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "",
		validFields(), map[string]testutil.FilePart{
			"imagen_principal": imageFile(),
			"archivo":          attachmentFile(),
		})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := resp["noticia"].(map[string]interface{})
	assert.Equal(t, "https://storage.googleapis.com/test-bucket/archivos/informe.pdf", item["archivo"])
	assert.Len(t, store.uploaded, 2)
}

func TestCreateNews_MissingRequiredFieldsHasNoSideEffects(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	r := openEngine(store)

	// No titulo, no files.
	fields := validFields()
	delete(fields, "titulo")
	rec, _ := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "", fields, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.uploaded)
	assert.EqualValues(t, 0, countNews(t))
}

func TestCreateNews_AttachmentFailureLeavesPrimaryOrphaned(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	store.failPrefix = "archivos/"
	store.failErr = fmt.Errorf("bucket rejected the write")
	r := openEngine(store)

	rec, _ := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "",
		validFields(), map[string]testutil.FilePart{
			"imagen_principal": imageFile(),
			"archivo":          attachmentFile(),
		})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// No row was inserted, but the primary image is still in the bucket.
	assert.EqualValues(t, 0, countNews(t))
	assert.Contains(t, store.uploaded, "imagenes/tapa.jpg")
	assert.NotContains(t, store.uploaded, "archivos/informe.pdf")
}

func TestCreateNews_PrimaryFailureHasNoSideEffects(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	store.failPrefix = "imagenes/"
	store.failErr = fmt.Errorf("bucket rejected the write")
	r := openEngine(store)

	rec, _ := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "",
		validFields(), map[string]testutil.FilePart{"imagen_principal": imageFile()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, store.uploaded)
	assert.EqualValues(t, 0, countNews(t))
}

func TestGetNews_OrderedNewestFirst(t *testing.T) {
	wipeNews(t)
	now := time.Now().UTC().Truncate(time.Second)
	seedNews(t, "vieja", now.Add(-2*time.Hour))
	seedNews(t, "nueva", now)

	r := openEngine(newMockStorageClient())
	rec, resp := testutil.MakeRequest(r, http.MethodGet, "/noticias", "")

	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := resp["noticias"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "nueva", items[0].(map[string]interface{})["titulo"])
	assert.Equal(t, "vieja", items[1].(map[string]interface{})["titulo"])
}

func TestGetNews_EmptyTableYieldsEmptyList(t *testing.T) {
	wipeNews(t)
	r := openEngine(newMockStorageClient())

	rec, resp := testutil.MakeRequest(r, http.MethodGet, "/noticias", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := resp["noticias"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestGetNewsByID(t *testing.T) {
	wipeNews(t)
	item := seedNews(t, "puntual", time.Now().UTC())

	r := openEngine(newMockStorageClient())
	rec, resp := testutil.MakeRequest(r, http.MethodGet, fmt.Sprintf("/noticias/%d", item.ID), "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := resp["noticia"].(map[string]interface{})
	assert.Equal(t, "puntual", got["titulo"])
}

func TestGetNewsByID_NotFound(t *testing.T) {
	wipeNews(t)
	r := openEngine(newMockStorageClient())

	rec, resp := testutil.MakeRequest(r, http.MethodGet, "/noticias/424242", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "News item not found", resp["error"])
}

func TestUpdateNews_TitleOnlyTouchesNothingElse(t *testing.T) {
	wipeNews(t)
	item := seedNews(t, "antes", time.Now().UTC())
	store := newMockStorageClient()
	r := openEngine(store)

	rec, resp := testutil.MakeMultipartRequest(r, http.MethodPut,
		fmt.Sprintf("/noticias/%d", item.ID), "",
		map[string]string{"titulo": "despues"}, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := resp["noticia"].(map[string]interface{})
	assert.Equal(t, "despues", got["titulo"])
	assert.Equal(t, item.Autor, got["autor"])
	assert.Nil(t, got["imagen_principal"])

	// Text-only update performs zero uploads.
	assert.Empty(t, store.uploaded)
}

func TestUpdateNews_NewImageUploadsAndRewritesURL(t *testing.T) {
	wipeNews(t)
	item := seedNews(t, "con imagen", time.Now().UTC())
	store := newMockStorageClient()
	r := openEngine(store)

	rec, resp := testutil.MakeMultipartRequest(r, http.MethodPut,
		fmt.Sprintf("/noticias/%d", item.ID), "",
		nil, map[string]testutil.FilePart{"imagen_principal": imageFile()})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := resp["noticia"].(map[string]interface{})
	assert.Equal(t, "https://storage.googleapis.com/test-bucket/imagenes/tapa.jpg", got["imagen_principal"])
	assert.Len(t, store.uploaded, 1)
}

func TestUpdateNews_AbsentIDKeepsSuccessShape(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	r := openEngine(store)

	rec, resp := testutil.MakeMultipartRequest(r, http.MethodPut, "/noticias/999999", "",
		map[string]string{"titulo": "fantasma"}, nil)

	// The success-shaped null body mirrors what existing clients expect.
	require.Equal(t, http.StatusOK, rec.Code)
	val, present := resp["noticia"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestDeleteNews(t *testing.T) {
	wipeNews(t)
	item := seedNews(t, "borrable", time.Now().UTC())
	r := openEngine(newMockStorageClient())

	rec, resp := testutil.MakeRequest(r, http.MethodDelete, fmt.Sprintf("/noticias/%d", item.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := resp["deleted"].(map[string]interface{})
	assert.Equal(t, "borrable", deleted["titulo"])
	assert.EqualValues(t, 0, countNews(t))

	// Deleting an absent id is not an error.
	rec, resp = testutil.MakeRequest(r, http.MethodDelete, fmt.Sprintf("/noticias/%d", item.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	val, present := resp["deleted"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestMutations_RejectedWithoutCredentialAndWithoutSideEffects(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	r := gatedEngine(t, store, map[string]string{"admin-token": "admin"})

	// Missing credential.
	rec, _ := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "",
		validFields(), map[string]testutil.FilePart{"imagen_principal": imageFile()})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown token.
	rec, _ = testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "stale-token",
		validFields(), map[string]testutil.FilePart{"imagen_principal": imageFile()})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Empty(t, store.uploaded)
	assert.EqualValues(t, 0, countNews(t))
}

func TestMutations_ForbiddenRoleHasZeroSideEffects(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	r := gatedEngine(t, store, map[string]string{"editor-token": "editor"})

	rec, _ := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "editor-token",
		validFields(), map[string]testutil.FilePart{"imagen_principal": imageFile()})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeRequest(r, http.MethodDelete, "/noticias/1", "editor-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Empty(t, store.uploaded)
	assert.EqualValues(t, 0, countNews(t))
}

func TestMutations_AllowedRolesPassTheGate(t *testing.T) {
	wipeNews(t)
	store := newMockStorageClient()
	r := gatedEngine(t, store, map[string]string{
		"admin-token": "admin",
		"super-token": "superAdmin",
	})

	rec, _ := testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "admin-token",
		validFields(), map[string]testutil.FilePart{"imagen_principal": imageFile()})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = testutil.MakeMultipartRequest(r, http.MethodPost, "/noticias", "super-token",
		validFields(), map[string]testutil.FilePart{"imagen_principal": imageFile()})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.EqualValues(t, 2, countNews(t))
}
