package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "mulita-backend/internal/model"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported seeded news items, oldest to newest by created_at.
var (
	TestNewsOldest m.News
	TestNewsMiddle m.News
	TestNewsNewest m.News
)

// GetTestDB starts a PostgreSQL test container and returns a teardown
// function, the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		UseConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample news rows with distinct creation timestamps
// so ordering assertions are deterministic.
func seedTestData(db *DBinstanceStruct) error {
	var count int64
	if err := db.Model(&m.News{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return loadTestData(db)
	}

	imgURL := "https://storage.googleapis.com/noticias/imagenes/tapa.jpg"
	fileURL := "https://storage.googleapis.com/noticias/archivos/informe.pdf"

	now := time.Now().UTC().Truncate(time.Second)
	items := []m.News{
		{
			Titulo:          "Inauguracion de la sede",
			Autor:           "Redaccion",
			Introduccion:    "Se inauguro la nueva sede.",
			Descripcion:     "La nueva sede abrio sus puertas al publico.",
			ImagenPrincipal: &imgURL,
			CreatedAt:       now.Add(-48 * time.Hour),
		},
		{
			Titulo:          "Convocatoria abierta",
			Autor:           "Prensa",
			Introduccion:    "Abrio la convocatoria anual.",
			Descripcion:     "Los interesados pueden inscribirse hasta fin de mes.",
			ImagenPrincipal: &imgURL,
			Archivo:         &fileURL,
			CreatedAt:       now.Add(-24 * time.Hour),
		},
		{
			Titulo:          "Resultados del programa",
			Autor:           "Redaccion",
			Introduccion:    "Se publicaron los resultados.",
			Descripcion:     "El programa cerro con mas inscriptos que el año pasado.",
			CreatedAt:       now,
		},
	}

	if err := db.Create(&items).Error; err != nil {
		return err
	}

	TestNewsOldest = items[0]
	TestNewsMiddle = items[1]
	TestNewsNewest = items[2]

	return nil
}

// loadTestData populates exported variables when rows already exist.
func loadTestData(db *DBinstanceStruct) error {
	var items []m.News
	if err := db.Order("created_at ASC").Limit(3).Find(&items).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		TestNewsOldest = items[0]
	}
	if len(items) > 1 {
		TestNewsMiddle = items[1]
	}
	if len(items) > 2 {
		TestNewsNewest = items[2]
	}
	return nil
}
