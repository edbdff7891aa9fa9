package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"jobmatch-backend/internal/bootstrap"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/telemetry"
	"jobmatch-backend/internal/workerproc"
)

func main() {
	cfg := config.Load()
	defer telemetry.Sync()

	queueURL := strings.TrimSpace(cfg.ResultsQueueURL)
	if queueURL == "" {
		log.Fatal("ENGINE_RESULTS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	sem := make(chan struct{}, max(1, cfg.WorkerConcurrency))
	var wg sync.WaitGroup

	telemetry.Info("worker.start", map[string]any{
		"queue":       queueURL,
		"concurrency": cfg.WorkerConcurrency,
		"visibility":  cfg.VisibilitySeconds,
	})

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(cfg.VisibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Warn("worker.receive_failed", map[string]any{"error": err})
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			metrics.IncEngineResult("received")
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				// Let an in-flight result finish after shutdown is requested.
				handleMessage(context.WithoutCancel(ctx), sqsClient, queueURL, app.Service, m)
			}(msg)
		}
	}

	telemetry.Info("worker.draining", map[string]any{"timeout": cfg.WorkerShutdownWait.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(cfg.WorkerShutdownWait):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// handleMessage applies one engine result. The message is deleted once
// applied, or when it can never be applied; anything else is left for
// redelivery after the visibility timeout.
func handleMessage(ctx context.Context, client sqsAPI, queueURL string, rec workerproc.Recorder, msg sqstypes.Message) {
	res, meta, err := workerproc.ParseResult(aws.ToString(msg.Body))
	if err != nil {
		fields := baseFields(msg, res)
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err.Error()
		event := "worker.result.decode_failed"
		var empty workerproc.ErrEmptyBody
		var missing workerproc.ErrMissingTarget
		switch {
		case errors.As(err, &empty):
			event = "worker.result.empty_body"
		case errors.As(err, &missing):
			event = "worker.result.missing_target"
		}
		telemetry.Error(event, fields)
		if deleteMessage(ctx, client, queueURL, msg, res) {
			metrics.IncEngineResult("dropped")
		}
		return
	}

	telemetry.Info("worker.result.received", baseFields(msg, res))

	if err := workerproc.Apply(ctx, rec, res); err != nil {
		fields := baseFields(msg, res)
		fields["error"] = err.Error()
		if workerproc.Permanent(err) {
			telemetry.Error("worker.result.rejected", fields)
			if deleteMessage(ctx, client, queueURL, msg, res) {
				metrics.IncEngineResult("dropped")
			}
			return
		}
		telemetry.Error("worker.result.failed", fields)
		metrics.IncEngineResult("failed")
		return
	}

	if deleteMessage(ctx, client, queueURL, msg, res) {
		telemetry.Info("worker.result.applied", baseFields(msg, res))
		metrics.IncEngineResult("applied")
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, res workerproc.Result) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, res)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.result.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, res)
		fields["error"] = err.Error()
		telemetry.Error("worker.result.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, res workerproc.Result) map[string]any {
	fields := map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if res.Kind != "" {
		fields["kind"] = string(res.Kind)
	}
	if res.TargetID > 0 {
		fields["target_id"] = res.TargetID
	}
	if strings.TrimSpace(res.RequestID) != "" {
		fields["request_id"] = res.RequestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
