// Command-line tool that reports orphaned objects in the news bucket:
// objects written during a create/update workflow whose database row was
// never inserted or updated. The workflow never deletes these itself, so
// they accumulate until someone runs this and cleans up by hand.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mulita-backend/internal/database"
	"mulita-backend/internal/model"
	"mulita-backend/internal/storage"
)

func main() {
	ctx := context.Background()

	db, err := database.NewDBInstance(database.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	store, err := storage.NewCloudStorageClient(ctx, "")
	if err != nil {
		log.Fatalf("Storage client failed to initialize: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close storage client: %v", err)
		}
	}()

	referenced, err := referencedObjects(db, store)
	if err != nil {
		log.Fatalf("Failed to collect referenced objects: %v", err)
	}

	var orphans []string
	for _, folder := range []string{storage.ImageFolder, storage.AttachmentFolder} {
		names, err := store.ListObjects(ctx, folder+"/")
		if err != nil {
			log.Fatalf("Failed to list bucket objects: %v", err)
		}
		for _, name := range names {
			if !referenced[name] {
				orphans = append(orphans, name)
			}
		}
	}

	if len(orphans) == 0 {
		fmt.Println("No orphaned objects found.")
		return
	}

	fmt.Printf("Found %d orphaned object(s):\n", len(orphans))
	for _, name := range orphans {
		fmt.Println("  " + name)
	}
}

// referencedObjects maps every object name some noticia row points at.
func referencedObjects(db *database.DBinstanceStruct, store *storage.CloudStorageClient) (map[string]bool, error) {
	var items []model.News
	if err := db.Find(&items).Error; err != nil {
		return nil, err
	}

	base := store.PublicURL("")
	referenced := make(map[string]bool)
	for _, item := range items {
		for _, url := range []*string{item.ImagenPrincipal, item.Archivo} {
			if url == nil {
				continue
			}
			if name, ok := strings.CutPrefix(*url, base); ok {
				referenced[name] = true
			}
		}
	}
	return referenced, nil
}
