package kafka

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/asquebay/order-query-service/internal/model"
)

// OrderImporter это интерфейс, который абстрагирует консьюмер
// от конкретной реализации сервисного слоя
type OrderImporter interface {
	ImportRecords(ctx context.Context, records []model.OrderRequest) (model.ImportResult, error)
}

// RecordDecoder разбирает значение сообщения в список заказов
type RecordDecoder interface {
	Decode(r io.Reader) ([]model.OrderRequest, error)
}

// messageReader: часть *kafka.Reader, которой пользуется консьюмер
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает пакеты заказов из топика и передаёт их в импорт
type Consumer struct {
	reader   messageReader
	importer OrderImporter
	decoder  RecordDecoder
	log      *slog.Logger

	// retryDelay: пауза перед повторным FetchMessage после ошибки брокера
	retryDelay time.Duration
}

const defaultRetryDelay = time.Second

// NewConsumer создаёт новый экземпляр консьюмера
func NewConsumer(brokers []string, topic, groupID string, importer OrderImporter, decoder RecordDecoder, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})

	return newConsumer(reader, importer, decoder, log)
}

func newConsumer(reader messageReader, importer OrderImporter, decoder RecordDecoder, log *slog.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		importer:   importer,
		decoder:    decoder,
		log:        log.With(slog.String("component", "kafka_consumer")),
		retryDelay: defaultRetryDelay,
	}
}

// Run запускает цикл чтения сообщений из Kafka
// эта функция блокирующая, поэтому она запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info("kafka consumer started")

	for {
		select {
		case <-ctx.Done():
			c.log.Info("context cancelled, stopping consumer")
			return
		default:
		}

		// FetchMessage блокирует до тех пор, пока не придёт новое сообщение или не возникнет ошибка
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, io.EOF) {
				c.log.Info("kafka reader closed")
				return
			}
			c.log.Error("failed to fetch message", slog.String("error", err.Error()))
			if !c.wait(ctx) {
				c.log.Info("context cancelled, stopping consumer")
				return
			}
			continue
		}

		c.log.Debug("received message",
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)

		// 1. Пытаемся обработать
		if err := c.handleMessage(ctx, msg); err != nil {
			c.log.Error("failed to handle message", slog.String("error", err.Error()))
			// сообщение НЕ подтверждаем — пусть Kafka отдаст его снова
			continue
		}

		// 2. Всё прошло — фиксируем offset
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("failed to commit message", slog.String("error", err.Error()))
		}
	}
}

// handleMessage разбирает одно сообщение и импортирует его записи
// невалидные записи попадают в итог импорта, ошибку возвращает только сбой хранилища
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	log := c.log.With(slog.Int64("offset", msg.Offset))

	records, err := c.decoder.Decode(bytes.NewReader(msg.Value))
	if err != nil {
		// перечитывать это сообщение бессмысленно
		log.Warn("failed to decode message, skipping", slog.String("error", err.Error()))
		return nil
	}
	if len(records) == 0 {
		log.Warn("message contains no orders, skipping")
		return nil
	}

	result, err := c.importer.ImportRecords(ctx, records)
	if err != nil {
		return err
	}

	log.Info("message imported",
		slog.Int("successful", result.SuccessfulImports),
		slog.Int("failed", result.FailedImports),
	)
	for _, v := range result.InvalidInputData {
		log.Debug("rejected record", slog.String("field", v.IncorrectField), slog.String("reason", v.ErrorMessage))
	}
	return nil
}

// wait выдерживает retryDelay; false, если контекст отменили раньше
func (c *Consumer) wait(ctx context.Context) bool {
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close: graceful shutdown консьюмера
func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.reader.Close()
}
