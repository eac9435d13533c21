// Command seed loads producer fixtures from a YAML file into MongoDB.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"grouporder/catalog"
	"grouporder/config"
	"grouporder/database"
	"grouporder/logger"
	"grouporder/store"
)

func main() {
	file := flag.String("file", "producers.yaml", "YAML file with a top-level producers list")
	flag.Parse()

	config.LoadEnv()
	log, err := logger.New(config.GetEnv("LOG_MODE", "dev"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	uri, dbName := config.GetEnv("MONGO_URI", ""), config.GetEnv("DB_NAME", "")
	if uri == "" || dbName == "" {
		log.Fatal("MONGO_URI or DB_NAME not set in environment variables")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("open fixtures", "file", *file, "error", err)
	}
	defer f.Close()

	producers, err := catalog.ParseFixtures(f)
	if err != nil {
		log.Fatal("parse fixtures", "file", *file, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := database.ConnectMongo(ctx, uri)
	if err != nil {
		log.Fatal("MongoDB connection failed", "error", err)
	}
	defer client.Disconnect(context.Background())

	docs := store.NewMongo(database.InitCollections(client.Database(dbName)))
	n, err := catalog.Seed(ctx, docs, producers)
	if err != nil {
		log.Fatal("seed failed", "written", n, "error", err)
	}
	log.Info("producers seeded", "count", n, "file", *file)
}
