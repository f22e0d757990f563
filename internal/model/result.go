package model

import (
	"io"
	"math"
)

// InvalidInputData описывает одно нарушение: почему конкретное поле записи было отклонено
// FieldValue хранит исходное значение без преобразований, чтобы вызывающий видел, что именно пришло
type InvalidInputData struct {
	ErrorMessage   string `json:"errorMessage"`
	IncorrectField string `json:"incorrectField"`
	FieldValue     any    `json:"fieldValue"`
}

// ImportResult: итог пакетного импорта
type ImportResult struct {
	SuccessfulImports int                `json:"successfulImports"`
	FailedImports     int                `json:"failedImports"`
	InvalidInputData  []InvalidInputData `json:"invalidInputData"`
}

// PaginatedOrderResponse: страница заказов с метаданными
type PaginatedOrderResponse struct {
	TotalItems int64           `json:"totalItems"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	PageSize   int             `json:"pageSize"`
	Items      []OrderResponse `json:"items"`
}

// PageRequest: параметры страницы; Page и Size считаются с единицы
type PageRequest struct {
	Page int
	Size int
}

// Offset возвращает смещение первой записи страницы
// при переполнении int смещение упирается в math.MaxInt: такая страница заведомо пуста
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Size < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Size
}

// TotalPages считает количество страниц (деление с округлением вверх)
func (p PageRequest) TotalPages(total int64) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return int((total-1)/int64(p.Size) + 1)
}

// UploadedFile описывает файл, пришедший на импорт; имя нужно для проверки формата
type UploadedFile struct {
	Name    string
	Content io.Reader
}
