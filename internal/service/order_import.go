package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/asquebay/order-query-service/internal/model"
)

// исходы пакета для метрик
const (
	batchCompleted = "completed"
	batchAborted   = "aborted"
)

// ImportOrders импортирует заказы из загруженного файла
// до проверки записей файл должен оказаться непустым JSON
func (s *OrderService) ImportOrders(ctx context.Context, file model.UploadedFile) (model.ImportResult, error) {
	const op = "service.OrderService.ImportOrders"
	log := s.log.With(slog.String("op", op), slog.String("file", file.Name))

	if !s.decoder.IsJSON(file.Name) {
		return model.ImportResult{}, fmt.Errorf("%s: %w", op,
			newError(ErrFileFormat, "Received file %s is not in JSON format", file.Name))
	}

	records, err := s.decoder.Decode(file.Content)
	if err != nil {
		log.Warn("failed to decode import file", slog.String("error", err.Error()))
		return model.ImportResult{}, fmt.Errorf("%s: %w", op,
			newError(ErrFileFormat, "Failed to parse JSON file %s: %v", file.Name, err))
	}

	if len(records) == 0 {
		return model.ImportResult{}, fmt.Errorf("%s: %w", op,
			newError(ErrFileFormat, "Received empty json file with no data"))
	}

	result, err := s.ImportRecords(ctx, records)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ImportRecords проверяет и сохраняет записи по одной, в порядке поступления
// невалидные записи пропускаются, их нарушения попадают в итог в порядке обнаружения;
// сбой хранилища прерывает импорт, уже сохранённые записи остаются
func (s *OrderService) ImportRecords(ctx context.Context, records []model.OrderRequest) (model.ImportResult, error) {
	const op = "service.OrderService.ImportRecords"
	log := s.log.With(
		slog.String("op", op),
		slog.String("import_id", uuid.NewString()),
		slog.Int("records", len(records)),
	)

	log.Info("import started")
	start := time.Now()

	result := model.ImportResult{InvalidInputData: []model.InvalidInputData{}}
	for i, req := range records {
		violations, err := s.validator.Validate(ctx, req)
		if err != nil {
			return s.abortImport(log, start, op, i, err)
		}

		if len(violations) > 0 {
			result.InvalidInputData = append(result.InvalidInputData, violations...)
			s.metrics.RecordRejected(violatedFields(violations))
			log.Debug("record rejected", slog.Int("index", i), slog.Int("violations", len(violations)))
			continue
		}

		if _, err := s.createOrder(ctx, req); err != nil {
			return s.abortImport(log, start, op, i, err)
		}
		result.SuccessfulImports++
		s.metrics.RecordImported()
	}

	result.FailedImports = len(records) - result.SuccessfulImports
	s.metrics.RecordBatch(batchCompleted, time.Since(start))

	log.Info("import finished",
		slog.Int("successful", result.SuccessfulImports),
		slog.Int("failed", result.FailedImports),
	)
	return result, nil
}

func (s *OrderService) abortImport(log *slog.Logger, start time.Time, op string, index int, err error) (model.ImportResult, error) {
	s.metrics.RecordBatch(batchAborted, time.Since(start))
	log.Error("import aborted", slog.Int("index", index), slog.String("error", err.Error()))
	return model.ImportResult{}, fmt.Errorf("%s: record %d: %w", op, index, err)
}

func violatedFields(violations []model.InvalidInputData) []string {
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.IncorrectField)
	}
	return fields
}

type noopMetrics struct{}

func (noopMetrics) RecordImported()                   {}
func (noopMetrics) RecordRejected([]string)           {}
func (noopMetrics) RecordBatch(string, time.Duration) {}
