// Package fileio читает файлы импорта заказов и пишет отчёты
package fileio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/asquebay/order-query-service/internal/model"
)

// ErrMalformed: содержимое не удалось разобрать как список заказов
var ErrMalformed = errors.New("malformed order data")

// JSONDecoder разбирает файл импорта: JSON-массив заказов или один заказ
type JSONDecoder struct{}

// NewJSONDecoder создаёт декодер файлов импорта
func NewJSONDecoder() JSONDecoder {
	return JSONDecoder{}
}

// IsJSON проверяет формат файла по расширению
func (JSONDecoder) IsJSON(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// Decode читает заказы из r
// пустой ввод и null дают пустой список без ошибки, решение о пустом файле принимает вызывающий
func (JSONDecoder) Decode(r io.Reader) ([]model.OrderRequest, error) {
	const op = "fileio.JSONDecoder.Decode"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '{' {
		var single model.OrderRequest
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
		}
		return []model.OrderRequest{single}, nil
	}

	var records []model.OrderRequest
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}
	return records, nil
}
