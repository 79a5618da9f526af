package main

import (
	"context"
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/spf13/viper"

	client "sales-analysis/src/client/lib"
	"sales-analysis/src/common/config"
	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/middleware"
	"sales-analysis/src/common/pubsub"
	"sales-analysis/src/common/storage"
)

const (
	SUCCESS_EXIT_CODE                 = 0
	STARTUP_ERROR_EXIT_CODE           = 1
	ERROR_DURING_PROCESSING_EXIT_CODE = 2

	NOTIFIER_RABBITMQ = "rabbitmq"
	NOTIFIER_REDIS    = "redis"
)

// PrintConfig logs the client specific configuration.
func PrintConfig(v *viper.Viper, log *logging.Logger) {
	config.PrintConfig(v, log)
	log.Infof("Client startup with: dataPath: %s | dates: %v | storeIds: %s | pattern: %q | notifier: %s",
		v.GetString("client.dataPath"),
		v.GetStringSlice("client.dates"),
		v.GetString("client.storeIds"),
		v.GetString("client.pattern"),
		v.GetString("client.notifier"),
	)
}

func createNotifier(v *viper.Viper) (middleware.Notifier, error) {
	switch v.GetString("client.notifier") {
	case NOTIFIER_RABBITMQ:
		rabbitConf := middleware.NewRabbitConfig(
			v.GetString("rabbitmq.user"),
			v.GetString("rabbitmq.pass"),
			v.GetString("rabbitmq.host"),
			v.GetInt("rabbitmq.port"),
		)
		notifier, err := middleware.NewQueueNotifier(rabbitConf, v.GetString("queue.name"))
		if err != nil {
			return nil, err
		}
		return notifier, nil
	case NOTIFIER_REDIS:
		notifier, err := pubsub.NewRedisNotifier(pubsub.NewRedisConfig(v.GetString("redis.addr"), v.GetString("redis.channel")))
		if err != nil {
			return nil, err
		}
		return notifier, nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s", v.GetString("client.notifier"))
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
	PrintConfig(conf, log)

	storeIds, err := client.ParseStoreIds(conf.GetString("client.storeIds"))
	if err != nil {
		log.Errorf("Invalid client.storeIds: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	store, err := storage.New(context.Background(), storage.Config{
		Mode:         conf.GetString("storage.mode"),
		Root:         conf.GetString("storage.root"),
		EmulatorHost: conf.GetString("storage.emulatorHost"),
	})
	if err != nil {
		log.Errorf("Failed creating object store: %s", err)
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	notifier, err := createNotifier(conf)
	if err != nil {
		log.Errorf("Failed creating notifier: %s", err)
		store.Close()
		os.Exit(STARTUP_ERROR_EXIT_CODE)
	}

	clientConf := client.NewClientConfig(
		conf.GetString("client.dataPath"),
		conf.GetString("buckets.input"),
		conf.GetStringSlice("client.dates"),
		storeIds,
		conf.GetString("client.pattern"),
	)

	_, err = client.NewClient(clientConf, store, notifier).Run(context.Background())

	notifier.Close()
	store.Close()
	if err != nil {
		log.Errorf("Client finished with errors: %s", err)
		os.Exit(ERROR_DURING_PROCESSING_EXIT_CODE)
	}
	os.Exit(SUCCESS_EXIT_CODE)
}
