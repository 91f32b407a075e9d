package database

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func mustStartMongoContainer() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	dbContainer, err := mongodb.Run(context.Background(), "mongo:latest")
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "27017/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	os.Setenv("MONGO_URI", fmt.Sprintf("mongodb://%s:%s", dbHost, dbPort.Port()))

	return dbContainer.Terminate, err
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	teardown, err := mustStartMongoContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start mongodb container")
	}

	code := m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatal().Msg("Could not teardown mongodb container")
	}
	os.Exit(code)
}

func TestNew(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	srv := New()
	if srv == nil {
		t.Fatal("New() returned nil")
	}
	defer srv.Close(context.Background())
}

func TestHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	srv := New()
	defer srv.Close(context.Background())

	checks := srv.Health(context.Background())

	if !checks["mongodb"] {
		t.Fatal("expected mongodb check to pass")
	}
	if _, ok := checks["redis"]; !ok {
		t.Fatal("expected a redis entry in the health map")
	}
	if _, ok := checks["qdrant"]; !ok {
		t.Fatal("expected a qdrant entry in the health map")
	}
}
