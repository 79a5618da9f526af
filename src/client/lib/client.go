package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/op/go-logging"

	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/middleware"
	"sales-analysis/src/common/storage"
)

// UploadSummary counts what happened to every candidate file.
type UploadSummary struct {
	Uploaded int
	Missing  int
	Present  int
	Failed   int
}

// Client uploads store exports into the input bucket and notifies the
// workers of every file it uploaded.
type Client struct {
	log         *logging.Logger
	config      *ClientConfig
	fileHandler *FileHandler
	store       storage.ObjectStore
	notifier    middleware.Notifier
	sigChan     chan os.Signal
}

func NewClient(config *ClientConfig, store storage.ObjectStore, notifier middleware.Notifier) *Client {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	return &Client{
		log:         logger.GetLoggerWithPrefix("[CLIENT]"),
		config:      config,
		fileHandler: NewFileHandler(config.DataPath),
		store:       store,
		notifier:    notifier,
		sigChan:     sigChan,
	}
}

func (c *Client) candidates() ([]string, error) {
	if c.config.Pattern != "" {
		return c.fileHandler.GetFilesWithPattern(c.config.Pattern)
	}
	return c.config.FileNames(), nil
}

// Run returns an error when some upload or notification failed; the other
// files are still handled.
func (c *Client) Run(ctx context.Context) (UploadSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer signal.Stop(c.sigChan)

	go func() {
		select {
		case <-c.sigChan:
			c.log.Info("Handling signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	summary := UploadSummary{}
	files, err := c.candidates()
	if err != nil {
		return summary, err
	}
	c.log.Infof("Uploading up to %d files from %s into bucket %s", len(files), c.config.DataPath, c.config.Bucket)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := c.uploadAndNotify(ctx, file, &summary); err != nil {
			c.log.Errorf("Failed handling %s: %v", file, err)
			summary.Failed++
		}
	}

	c.log.Infof("Finished: %d uploaded, %d already present, %d missing, %d failed",
		summary.Uploaded, summary.Present, summary.Missing, summary.Failed)
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d files could not be uploaded", summary.Failed, len(files))
	}
	return summary, nil
}

func (c *Client) uploadAndNotify(ctx context.Context, file string, summary *UploadSummary) error {
	found, err := c.fileHandler.Exists(file)
	if err != nil {
		return err
	}
	if !found {
		c.log.Warningf("File not found: %s", c.fileHandler.Path(file))
		summary.Missing++
		return nil
	}

	present, err := c.store.Exists(ctx, c.config.Bucket, file)
	if err != nil {
		return err
	}
	if present {
		c.log.Infof("The file %s already exists in bucket %s. Skipping upload", file, c.config.Bucket)
		summary.Present++
		return nil
	}

	if err := c.upload(ctx, file); err != nil {
		return err
	}
	c.log.Infof("The file %s is uploaded to bucket %s", file, c.config.Bucket)

	if err := c.notifier.Notify(ctx, middleware.NewFileNotification(c.config.Bucket, file)); err != nil {
		return fmt.Errorf("uploaded but not notified: %w", err)
	}
	summary.Uploaded++
	return nil
}

func (c *Client) upload(ctx context.Context, file string) error {
	reader, err := c.fileHandler.Open(file)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer reader.Close()

	return c.store.Put(ctx, c.config.Bucket, file, reader)
}
