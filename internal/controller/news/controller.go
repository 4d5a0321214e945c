// Package news provides HTTP handlers for news item operations.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"mulita-backend/internal/model"
	"mulita-backend/internal/repository"
	"mulita-backend/internal/storage"
	"mulita-backend/internal/utilities"
)

// StorageClient is the part of the bucket client the handlers need. Tests
// substitute a fake.
type StorageClient interface {
	UploadFile(ctx context.Context, objectName string, fileData io.Reader, contentType string) error
	PublicURL(objectName string) string
}

// NewsController handles news related endpoints.
type NewsController struct {
	Repo    *repository.NewsRepository
	Storage StorageClient
}

// NewNewsController creates a new instance of NewsController.
func NewNewsController(repo *repository.NewsRepository, store StorageClient) *NewsController {
	return &NewsController{
		Repo:    repo,
		Storage: store,
	}
}

// createNewsForm is the input schema of the create endpoint. Validation
// runs before any upload or insert happens.
type createNewsForm struct {
	Titulo          string                `form:"titulo" binding:"required"`
	Autor           string                `form:"autor" binding:"required"`
	Introduccion    string                `form:"introduccion" binding:"required"`
	Descripcion     string                `form:"descripcion" binding:"required"`
	ImagenPrincipal *multipart.FileHeader `form:"imagen_principal" binding:"required"`
	Archivo         *multipart.FileHeader `form:"archivo"`
}

// GetNews fetches all news items ordered by creation time, newest first.
// @Summary List all news items
// @Tags Noticias
// @Produce json
// @Success 200 {object} map[string][]model.News "All news items, newest first"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /noticias [get]
func (nc *NewsController) GetNews(c *gin.Context) {
	items, err := nc.Repo.ListAll(c.Request.Context())
	if err != nil {
		log.Printf("request %s: %v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to fetch news items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"noticias": items})
}

// GetNewsByID fetches a single news item by its id.
// @Summary Get a news item by ID
// @Tags Noticias
// @Produce json
// @Param id path integer true "ID of the news item"
// @Success 200 {object} map[string]model.News "The requested news item"
// @Failure 404 {object} utilities.ErrorResponse "News item not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /noticias/{id} [get]
func (nc *NewsController) GetNewsByID(c *gin.Context) {
	item, err := nc.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("request %s: %v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to retrieve news item",
		})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "News item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"noticia": item})
}

// CreateNews creates a news item from a multipart form. The uploads run
// strictly before the insert so the table never references a URL that does
// not exist yet; the cost is that objects uploaded before a later failure
// are left orphaned in the bucket (logged, reconciled offline).
// @Summary Create a news item
// @Description Requires the admin or superAdmin role.
// @Tags Noticias
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param titulo formData string true "Title"
// @Param autor formData string true "Author"
// @Param introduccion formData string true "Introduction"
// @Param descripcion formData string true "Body text"
// @Param imagen_principal formData file true "Primary image"
// @Param archivo formData file false "Optional attachment"
// @Success 201 {object} map[string]interface{} "Created news item"
// @Failure 400 {object} utilities.ErrorResponse "Missing required fields"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Role not allowed"
// @Failure 413 {object} utilities.ErrorResponse "Body too large"
// @Failure 500 {object} utilities.ErrorResponse "Upload or database error"
// @Router /noticias [post]
func (nc *NewsController) CreateNews(c *gin.Context) {

	var form createNewsForm
	if err := c.ShouldBind(&form); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid form data: %s", err.Error()),
		})
		return
	}

	imageURL, imageObject, err := nc.uploadAsset(c, storage.ImageFolder, form.ImagenPrincipal)
	if err != nil {
		log.Printf("request %s: primary image upload failed: %v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to store primary image",
		})
		return
	}

	var fileURL *string
	var fileObject string
	if form.Archivo != nil {
		url, object, err := nc.uploadAsset(c, storage.AttachmentFolder, form.Archivo)
		if err != nil {
			// The primary image is already in the bucket with no row
			// referencing it. No compensating delete is issued.
			log.Printf("request %s: attachment upload failed: %v", requestID(c), err)
			nc.logOrphans(c, imageObject)
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Failed to store attachment",
			})
			return
		}
		fileURL = &url
		fileObject = object
	}

	item := model.News{
		Titulo:          form.Titulo,
		Autor:           form.Autor,
		Introduccion:    form.Introduccion,
		Descripcion:     form.Descripcion,
		ImagenPrincipal: &imageURL,
		Archivo:         fileURL,
	}

	if err := nc.Repo.Insert(c.Request.Context(), &item); err != nil {
		log.Printf("request %s: %v", requestID(c), err)
		orphans := []string{imageObject}
		if fileObject != "" {
			orphans = append(orphans, fileObject)
		}
		nc.logOrphans(c, orphans...)
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to create news item",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "noticia": item})
}

// UpdateNews updates a news item from a multipart form where every field is
// optional. Only supplied text fields enter the partial update; only
// supplied files trigger uploads, with the same orphan risk as create.
// A non-existent id yields a success-shaped body with a null item, matching
// the behavior the frontend already relies on.
// @Summary Update a news item
// @Description Requires the admin or superAdmin role. All fields optional.
// @Tags Noticias
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of the news item"
// @Param titulo formData string false "Title"
// @Param autor formData string false "Author"
// @Param introduccion formData string false "Introduction"
// @Param descripcion formData string false "Body text"
// @Param imagen_principal formData file false "Primary image"
// @Param archivo formData file false "Optional attachment"
// @Success 200 {object} map[string]interface{} "Updated news item, or null when the id does not exist"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Role not allowed"
// @Failure 413 {object} utilities.ErrorResponse "Body too large"
// @Failure 500 {object} utilities.ErrorResponse "Upload or database error"
// @Router /noticias/{id} [put]
func (nc *NewsController) UpdateNews(c *gin.Context) {
	id := c.Param("id")

	fields := map[string]interface{}{}
	for _, name := range []string{"titulo", "autor", "introduccion", "descripcion"} {
		// An empty value counts as absent, like the original clients send it.
		if v, ok := c.GetPostForm(name); ok && v != "" {
			fields[name] = v
		}
	}

	var uploaded []string

	imageHeader, err := nc.formFile(c, "imagen_principal")
	if err != nil {
		return
	}
	if imageHeader != nil {
		url, object, err := nc.uploadAsset(c, storage.ImageFolder, imageHeader)
		if err != nil {
			log.Printf("request %s: primary image upload failed: %v", requestID(c), err)
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Failed to store primary image",
			})
			return
		}
		fields["imagen_principal"] = url
		uploaded = append(uploaded, object)
	}

	fileHeader, err := nc.formFile(c, "archivo")
	if err != nil {
		return
	}
	if fileHeader != nil {
		url, object, err := nc.uploadAsset(c, storage.AttachmentFolder, fileHeader)
		if err != nil {
			log.Printf("request %s: attachment upload failed: %v", requestID(c), err)
			nc.logOrphans(c, uploaded...)
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Failed to store attachment",
			})
			return
		}
		fields["archivo"] = url
		uploaded = append(uploaded, object)
	}

	item, err := nc.Repo.Update(c.Request.Context(), id, fields)
	if err != nil {
		log.Printf("request %s: %v", requestID(c), err)
		nc.logOrphans(c, uploaded...)
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to update news item",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"noticia": item})
}

// DeleteNews deletes a news item. Deleting an absent id is not an error.
// Stored assets referenced by the row are left in the bucket.
// @Summary Delete a news item
// @Description Requires the admin or superAdmin role.
// @Tags Noticias
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of the news item"
// @Success 200 {object} map[string]interface{} "Deleted news item, or null when the id does not exist"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Role not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /noticias/{id} [delete]
func (nc *NewsController) DeleteNews(c *gin.Context) {
	item, err := nc.Repo.DeleteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("request %s: %v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to delete news item",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": item})
}

// uploadAsset stores a multipart file under "{folder}/{filename}" and
// returns the public URL plus the object name. Same-name uploads overwrite.
func (nc *NewsController) uploadAsset(c *gin.Context, folder string, header *multipart.FileHeader) (string, string, error) {
	f, err := header.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close uploaded file: %v", err)
		}
	}()

	objectName := folder + "/" + filepath.Base(header.Filename)
	contentType := header.Header.Get("Content-Type")

	if err := nc.Storage.UploadFile(c.Request.Context(), objectName, f, contentType); err != nil {
		return "", "", err
	}

	return nc.Storage.PublicURL(objectName), objectName, nil
}

// formFile fetches an optional multipart file. A missing file is nil, not
// an error; any other failure writes the response and reports it.
func (nc *NewsController) formFile(c *gin.Context, name string) (*multipart.FileHeader, error) {
	header, err := c.FormFile(name)
	if err == nil {
		return header, nil
	}
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}

	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{Error: err.Error()})
		return nil, err
	}

	c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
		Error: fmt.Sprintf("Failed to read file %q: %s", name, err.Error()),
	})
	return nil, err
}

// logOrphans records objects written to the bucket whose referencing row
// never materialized, so they can be cleaned up offline.
func (nc *NewsController) logOrphans(c *gin.Context, objects ...string) {
	if len(objects) == 0 {
		return
	}
	log.Printf("request %s: orphaned objects left in bucket: %s", requestID(c), strings.Join(objects, ", "))
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
