package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/op/go-logging"
	"github.com/spf13/viper"

	"sales-analysis/src/common/config"
	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/middleware"
	"sales-analysis/src/common/pipeline"
	"sales-analysis/src/common/storage"
	worker "sales-analysis/src/worker/lib"
)

const (
	SUCCESS_EXIT_CODE                 = 0
	STARTUP_ERROR_EXIT_CODE           = 1
	ERROR_DURING_PROCESSING_EXIT_CODE = 2
)

// PrintConfig logs the worker specific configuration.
func PrintConfig(v *viper.Viper, log *logging.Logger) {
	config.PrintConfig(v, log)
	log.Infof("Worker startup with: id: %s | drain: %t",
		v.GetString("worker.id"),
		v.GetBool("worker.drain"),
	)
}

func storageConfig(v *viper.Viper) storage.Config {
	return storage.Config{
		Mode:         v.GetString("storage.mode"),
		Root:         v.GetString("storage.root"),
		EmulatorHost: v.GetString("storage.emulatorHost"),
	}
}

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
	if conf.GetString("worker.id") == "" {
		conf.Set("worker.id", uuid.NewString())
	}
	PrintConfig(conf, log)

	store, err := storage.New(context.Background(), storageConfig(conf))
	if err != nil {
		log.Errorf("Failed creating object store: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	rabbitConf := middleware.NewRabbitConfig(
		conf.GetString("rabbitmq.user"),
		conf.GetString("rabbitmq.pass"),
		conf.GetString("rabbitmq.host"),
		conf.GetInt("rabbitmq.port"),
	)

	workerConf := worker.WorkerConfig{
		Id:        conf.GetString("worker.id"),
		QueueName: conf.GetString("queue.name"),
		Drain:     conf.GetBool("worker.drain"),
	}

	processor := pipeline.NewFileProcessor(store, conf.GetString("buckets.output"))
	w, err := worker.NewQueueWorker(workerConf, rabbitConf, processor)
	if err != nil {
		log.Errorf("Failed creating new worker: %s", err)
		store.Close()
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	if err := w.Run(); err != nil {
		log.Errorf("Worker stopped with error: %s", err)
		store.Close()
		os.Exit(ERROR_DURING_PROCESSING_EXIT_CODE)
	}

	store.Close()
	os.Exit(SUCCESS_EXIT_CODE)
}
