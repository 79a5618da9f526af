package main

import (
	"context"
	"fmt"
	"os"

	"sales-analysis/src/common/config"
	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/pipeline"
	"sales-analysis/src/common/pubsub"
	"sales-analysis/src/common/storage"
	eventworker "sales-analysis/src/eventworker/lib"
)

const (
	SUCCESS_EXIT_CODE                 = 0
	STARTUP_ERROR_EXIT_CODE           = 1
	ERROR_DURING_PROCESSING_EXIT_CODE = 2
)

func main() {
	conf, err := config.InitConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Printf("Error initializing configuration: %v\n", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	err = logger.InitGlobalLogger(conf.GetString("log.level"))
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	log := logger.GetLoggerWithPrefix("[MAIN]")
	config.PrintConfig(conf, log)

	store, err := storage.New(context.Background(), storage.Config{
		Mode:         conf.GetString("storage.mode"),
		Root:         conf.GetString("storage.root"),
		EmulatorHost: conf.GetString("storage.emulatorHost"),
	})
	if err != nil {
		log.Errorf("Failed creating object store: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	subscriber, err := pubsub.NewSubscriber(pubsub.NewRedisConfig(
		conf.GetString("redis.addr"),
		conf.GetString("redis.channel"),
	))
	if err != nil {
		log.Errorf("Failed subscribing to Redis: %s", err)
		store.Close()
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	w := eventworker.NewEventWorker(subscriber, pipeline.NewFileProcessor(store, conf.GetString("buckets.output")))
	err = w.Run()

	subscriber.Close()
	store.Close()
	if err != nil {
		log.Errorf("Event worker stopped with error: %s", err)
		os.Exit(ERROR_DURING_PROCESSING_EXIT_CODE)
	}
	os.Exit(SUCCESS_EXIT_CODE)
}
