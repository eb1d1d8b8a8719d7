package queue

import (
	"context"

	"github.com/OFFIS-RIT/stormgraph/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// HandleDelivery runs the job carried by one ExtractQueue delivery and acks,
// retries or dead-letters the message.
func HandleDelivery(ctx context.Context, runner *Runner, ch Publisher, msg amqp091.Delivery) {
	job, err := DecodeJobMsg(msg.Body)
	if err != nil {
		logger.Error("[Queue] Dropping malformed message", "err", err)
		deadLetter(ch, msg, ExtractQueue)
		return
	}

	if err := runner.Run(ctx, job); err != nil {
		logger.Error("[Queue] Error processing message", "job_id", job.JobID, "err", err)
		if dead := handleProcessingError(ch, msg, ExtractQueue); dead {
			runner.Abandon(ctx, job, err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
}

func retryCount(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// handleProcessingError moves the message to the retry queue, or to the
// dead-letter queue once MaxDeliveryRetries is reached. It reports whether
// the message was dead-lettered.
func handleProcessingError(ch Publisher, msg amqp091.Delivery, queueName string) bool {
	retries := retryCount(msg.Headers)
	if retries >= MaxDeliveryRetries {
		return deadLetter(ch, msg, queueName)
	}

	retryName := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-retries"] = int32(retries + 1)

	err := ch.Publish("", retryName, false, false, amqp091.Publishing{
		ContentType: msg.ContentType,
		Body:        msg.Body,
		Headers:     headers,
	})
	if err != nil {
		logger.Error("[Queue] Failed to publish to retry queue", "retry_queue", retryName, "err", err)
		_ = msg.Nack(false, true)
		return false
	}
	_ = msg.Ack(false)
	return false
}

func deadLetter(ch Publisher, msg amqp091.Delivery, queueName string) bool {
	dlqName := queueName + "_dlq"
	logger.Info("[Queue] Sending message to DLQ", "dlq", dlqName)
	err := ch.Publish("", dlqName, false, false, amqp091.Publishing{
		ContentType: msg.ContentType,
		Body:        msg.Body,
		Headers:     msg.Headers,
	})
	if err != nil {
		logger.Error("[Queue] Failed to publish to DLQ", "dlq", dlqName, "err", err)
		_ = msg.Nack(false, true)
		return false
	}
	_ = msg.Ack(false)
	return true
}
