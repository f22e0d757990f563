package filter

import (
	"github.com/Masterminds/squirrel"

	"github.com/asquebay/order-query-service/internal/model"
)

// Builder накапливает типизированные условия фильтра
type Builder struct {
	clauses []Criterion
}

// NewBuilder создаёт пустой билдер; пустой фильтр пропускает все заказы
func NewBuilder() *Builder {
	return &Builder{}
}

// Add добавляет условия, nil пропускается
func (b *Builder) Add(criteria ...Criterion) *Builder {
	for _, c := range criteria {
		if c == nil {
			continue
		}
		b.clauses = append(b.clauses, c)
	}
	return b
}

// Build фиксирует накопленные условия в неизменяемый фильтр
func (b *Builder) Build() Filter {
	clauses := make([]Criterion, len(b.clauses))
	copy(clauses, b.clauses)
	return Filter{clauses: clauses}
}

// Filter: конъюнкция условий; нулевое значение пропускает всё
type Filter struct {
	clauses []Criterion
}

// IsEmpty сообщает, что фильтр не содержит ни одного условия
func (f Filter) IsEmpty() bool {
	return len(f.clauses) == 0
}

// Criteria возвращает копию условий фильтра
func (f Filter) Criteria() Criteria {
	out := make(Criteria, len(f.clauses))
	copy(out, f.clauses)
	return out
}

// Sqlizer опускает фильтр в WHERE-выражение squirrel
// для пустого фильтра squirrel.And отдаёт (1=1)
func (f Filter) Sqlizer() squirrel.Sqlizer {
	and := make(squirrel.And, 0, len(f.clauses))
	for _, c := range f.clauses {
		and = append(and, c.sqlizer())
	}
	return and
}

// Match проверяет заказ в памяти
func (f Filter) Match(order model.Order) bool {
	for _, c := range f.clauses {
		if !c.match(order) {
			return false
		}
	}
	return true
}
