package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	c := &CloudStorageClient{BucketName: "noticias"}

	assert.Equal(t,
		"https://storage.googleapis.com/noticias/imagenes/tapa.jpg",
		c.PublicURL(ImageFolder+"/tapa.jpg"))
	assert.Equal(t,
		"https://storage.googleapis.com/noticias/archivos/informe.pdf",
		c.PublicURL(AttachmentFolder+"/informe.pdf"))
}

func TestPublicURL_SameNameSamePath(t *testing.T) {
	// Two uploads with the same folder and filename resolve to the same
	// object, which is why the upload path overwrites.
	c := &CloudStorageClient{BucketName: "noticias"}
	assert.Equal(t, c.PublicURL("imagenes/a.png"), c.PublicURL("imagenes/a.png"))
}
