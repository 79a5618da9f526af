package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/op/go-logging"
	amqp "github.com/rabbitmq/amqp091-go"

	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/middleware"
	"sales-analysis/src/common/pipeline"
)

const (
	SINGLE_ITEM_BUFFER_LEN = 1
	PREFETCH_COUNT         = 1

	ACK          = 0
	NACK_REQUEUE = 1
	NACK_DISCARD = 2
)

type FileProcessor interface {
	Process(ctx context.Context, bucket, fileName string) (pipeline.Result, error)
}

// WorkerConfig selects the mode: a draining worker polls until the queue is
// empty, any other worker consumes until it is shut down.
type WorkerConfig struct {
	Id        string
	QueueName string
	Drain     bool
}

type Worker struct {
	log        *logging.Logger
	conf       WorkerConfig
	queue      middleware.MessageMiddleware
	processor  FileProcessor
	sigChan    chan os.Signal
	stopChan   chan struct{}
	stopOnce   sync.Once
	handler    *middleware.MiddlewareHandler
	statsMutex sync.Mutex
	processed  int
	failed     int
	requeued   int
}

// handleSignal listens for SIGTERM signal and triggers shutdown.
func (w *Worker) handleSignal() {
	select {
	case <-w.sigChan:
		w.log.Info("Handling signal")
		w.Shutdown()
	case <-w.stopChan:
	}
}

func NewWorker(conf WorkerConfig, queue middleware.MessageMiddleware, processor FileProcessor) *Worker {
	sigChan := make(chan os.Signal, SINGLE_ITEM_BUFFER_LEN)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	return &Worker{
		log:       logger.GetLoggerWithPrefix(fmt.Sprintf("[WORKER-%s]", conf.Id)),
		conf:      conf,
		queue:     queue,
		processor: processor,
		sigChan:   sigChan,
		stopChan:  make(chan struct{}),
	}
}

// NewQueueWorker reads conf.QueueName on RabbitMQ.
func NewQueueWorker(conf WorkerConfig, rabbitConf middleware.RabbitConfig, processor FileProcessor) (*Worker, error) {
	log := logger.GetLoggerWithPrefix(fmt.Sprintf("[WORKER-%s]", conf.Id))
	log.Infof("Establishing connection with RabbitMQ on address %s", rabbitConf.Address())

	rabbitConn, err := middleware.NewRabbitConnection(&rabbitConf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	handler, err := middleware.NewMiddlewareHandler(rabbitConn)
	if err != nil {
		rabbitConn.Close()
		return nil, fmt.Errorf("failed to create middleware handler: %w", err)
	}

	if err := handler.SetPrefetch(PREFETCH_COUNT); err != nil {
		handler.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	queue, err := handler.CreateQueue(conf.QueueName)
	if err != nil {
		handler.Close()
		return nil, err
	}
	log.Info("Connection with RabbitMQ successfully established")

	worker := NewWorker(conf, queue, processor)
	worker.handler = handler
	return worker, nil
}

func (w *Worker) isStopped() bool {
	select {
	case <-w.stopChan:
		return true
	default:
		return false
	}
}

// Run handles deliveries until the queue is drained or the worker is shut
// down, and releases the queue before returning.
func (w *Worker) Run() error {
	defer w.release()
	go w.handleSignal()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-w.stopChan
		cancel()
	}()

	var err error
	if w.conf.Drain {
		err = w.drain(ctx)
	} else {
		err = w.consume(ctx)
	}

	w.log.Infof("Finished: %d files processed, %d failed, %d requeued", w.Processed(), w.Failed(), w.Requeued())
	return err
}

func (w *Worker) drain(ctx context.Context) error {
	w.log.Infof("Draining queue %s", w.conf.QueueName)
	for !w.isStopped() {
		delivery, ok, status := w.queue.Get()
		if status != middleware.MessageMiddlewareSuccess {
			if w.isStopped() {
				return nil
			}
			return fmt.Errorf("failed polling queue %s: %s", w.conf.QueueName, status)
		}

		if !ok {
			w.log.Info("Queue is empty, stopping")
			return nil
		}
		w.handleDelivery(ctx, delivery)
	}
	return nil
}

func (w *Worker) consume(ctx context.Context) error {
	w.log.Infof("Consuming queue %s", w.conf.QueueName)

	errChan := make(chan middleware.MessageMiddlewareError, SINGLE_ITEM_BUFFER_LEN)
	w.queue.StartConsuming(func(delivery amqp.Delivery) error {
		w.handleDelivery(ctx, delivery)
		return nil
	}, errChan)

	var err error
	select {
	case <-w.stopChan:
	case status := <-errChan:
		err = fmt.Errorf("failed consuming queue %s: %s", w.conf.QueueName, status)
	}

	if status := w.queue.StopConsuming(); status != middleware.MessageMiddlewareSuccess {
		w.log.Warningf("Failed to stop consuming %s: %s", w.conf.QueueName, status)
	}
	return err
}

// handleDelivery discards failed files: they stay failed until notified
// again. Only files interrupted by a shutdown go back to the queue.
func (w *Worker) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	notification, err := middleware.ParseFileNotification(delivery.Body)
	if err != nil {
		w.log.Errorf("Discarding message %s: %v", delivery.MessageId, err)
		w.count(&w.failed)
		answerMessage(NACK_DISCARD, delivery)
		return
	}

	w.log.Infof("Processing %s", notification)
	result, err := w.processor.Process(ctx, notification.Bucket, notification.FileName)
	if err != nil && ctx.Err() != nil {
		w.log.Warningf("Interrupted while processing %s, requeueing", notification)
		w.count(&w.requeued)
		answerMessage(NACK_REQUEUE, delivery)
		return
	}
	if err != nil {
		w.log.Errorf("Failed processing %s: %v", notification, err)
		w.count(&w.failed)
		answerMessage(NACK_DISCARD, delivery)
		return
	}

	w.count(&w.processed)
	w.log.Infof("Processed %s into %s", notification, result.Artifact)
	answerMessage(ACK, delivery)
}

func (w *Worker) count(counter *int) {
	w.statsMutex.Lock()
	defer w.statsMutex.Unlock()
	*counter++
}

func (w *Worker) read(counter *int) int {
	w.statsMutex.Lock()
	defer w.statsMutex.Unlock()
	return *counter
}

func (w *Worker) Processed() int {
	return w.read(&w.processed)
}

func (w *Worker) Failed() int {
	return w.read(&w.failed)
}

func (w *Worker) Requeued() int {
	return w.read(&w.requeued)
}

// Shutdown stops the worker. It is safe to call more than once and from any
// goroutine; Run returns once the delivery in progress is answered.
func (w *Worker) Shutdown() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		signal.Stop(w.sigChan)
	})
}

func (w *Worker) release() {
	w.Shutdown()

	if status := w.queue.Close(); status != middleware.MessageMiddlewareSuccess {
		w.log.Warningf("Failed closing queue %s: %s", w.conf.QueueName, status)
	}
	if w.handler != nil {
		if err := w.handler.Close(); err != nil {
			w.log.Warningf("Failed closing RabbitMQ connection: %v", err)
		}
	}
	w.log.Info("Shutdown complete")
}

func answerMessage(ackType int, message amqp.Delivery) {
	var err error
	switch ackType {
	case ACK:
		err = message.Ack(false)
	case NACK_REQUEUE:
		err = message.Nack(false, true)
	case NACK_DISCARD:
		err = message.Nack(false, false)
	}
	if err != nil {
		logger.GetLoggerWithPrefix("[WORKER]").Errorf("Failed answering message %d: %v", message.DeliveryTag, err)
	}
}
