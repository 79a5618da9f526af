package eventworker

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/op/go-logging"

	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/middleware"
	"sales-analysis/src/common/pipeline"
	"sales-analysis/src/common/pubsub"
)

const (
	STATUS_OK             = "OK"
	STATUS_NO_RECORDS     = "No Records"
	STATUS_INVALID_FORMAT = "Invalid Format"
	STATUS_ERROR          = "Error"

	SINGLE_ITEM_BUFFER_LEN = 1
)

type FileProcessor interface {
	Process(ctx context.Context, bucket, fileName string) (pipeline.Result, error)
}

// EventSource invokes the handler once per published event.
type EventSource interface {
	Listen(ctx context.Context, handle pubsub.EventHandler) error
}

// EventWorker processes one file per event. Each invocation reports one of
// the STATUS_ values.
type EventWorker struct {
	log       *logging.Logger
	source    EventSource
	processor FileProcessor
	sigChan   chan os.Signal
	statuses  map[string]int
}

func NewEventWorker(source EventSource, processor FileProcessor) *EventWorker {
	sigChan := make(chan os.Signal, SINGLE_ITEM_BUFFER_LEN)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	return &EventWorker{
		log:       logger.GetLoggerWithPrefix("[EVENT-WORKER]"),
		source:    source,
		processor: processor,
		sigChan:   sigChan,
		statuses:  make(map[string]int),
	}
}

// HandleEvent processes the first record of an event payload. Records are
// separated by new lines; later records are ignored.
func (e *EventWorker) HandleEvent(ctx context.Context, payload string) string {
	records := strings.FieldsFunc(payload, func(r rune) bool { return r == '\n' || r == '\r' })
	if len(records) == 0 || strings.TrimSpace(records[0]) == "" {
		e.log.Warning("No records found in the event")
		return STATUS_NO_RECORDS
	}
	if len(records) > 1 {
		e.log.Warningf("Event carries %d records, only the first one is processed", len(records))
	}

	notification, err := middleware.ParseFileNotification([]byte(records[0]))
	if err != nil {
		e.log.Errorf("Invalid message format: %v", err)
		return STATUS_INVALID_FORMAT
	}

	e.log.Infof("Received message to process file: %s", notification)
	result, err := e.processor.Process(ctx, notification.Bucket, notification.FileName)
	if err != nil {
		e.log.Errorf("Error occurred processing %s: %v", notification, err)
		return STATUS_ERROR
	}

	e.log.Infof("Invocation completed for %s: emitted %s", notification, result.Artifact)
	return STATUS_OK
}

// Run handles events until a signal arrives or the source stops.
func (e *EventWorker) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer signal.Stop(e.sigChan)

	go func() {
		select {
		case <-e.sigChan:
			e.log.Info("Handling signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	err := e.source.Listen(ctx, func(ctx context.Context, payload string) {
		e.statuses[e.HandleEvent(ctx, payload)]++
	})

	e.log.Infof("Finished with statuses: %v", e.statuses)
	return err
}

// Statuses counts the outcome of every handled event. Only read it after
// Run returned.
func (e *EventWorker) Statuses() map[string]int {
	return e.statuses
}
