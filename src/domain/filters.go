package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ConditionKind identifica o tipo de condição suportado pelo FilterSet.
// O conjunto é fechado: igualdade, pertinência a conjunto e intervalo de
// datas (este último tratado à parte por incidir sobre o campo derivado).
type ConditionKind string

const (
	ConditionEquals ConditionKind = "eq"
	ConditionIn     ConditionKind = "in"
)

// Condition é uma condição escalar ou de conjunto sobre um campo lógico.
type Condition struct {
	Kind   ConditionKind
	Value  string
	Values []string
}

// DateRange delimita o campo de data derivado (datas ISO YYYY-MM-DD,
// qualquer extremidade pode ficar vazia).
type DateRange struct {
	From string
	To   string
}

func (dr DateRange) IsZero() bool {
	return dr.From == "" && dr.To == ""
}

// FilterSet é o conjunto fechado de filtros aceito pelas operações de
// analytics. Só aceita campos do vocabulário; valores vazios são ignorados.
type FilterSet struct {
	conditions map[Field]Condition
	dateRange  DateRange
}

func NewFilterSet() *FilterSet {
	return &FilterSet{conditions: make(map[Field]Condition)}
}

// SetEquals registra uma condição de igualdade. Valor vazio remove a condição.
func (fs *FilterSet) SetEquals(field Field, value string) error {
	if !IsRelevantField(string(field)) {
		return fmt.Errorf("FilterSet.SetEquals - field %q: %w", field, ErrInvalidFilter)
	}

	if value == "" {
		delete(fs.conditions, field)
		return nil
	}

	fs.conditions[field] = Condition{Kind: ConditionEquals, Value: value}
	return nil
}

// SetIn registra uma condição de pertinência. Lista vazia remove a condição.
func (fs *FilterSet) SetIn(field Field, values []string) error {
	if !IsRelevantField(string(field)) {
		return fmt.Errorf("FilterSet.SetIn - field %q: %w", field, ErrInvalidFilter)
	}

	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}

	if len(cleaned) == 0 {
		delete(fs.conditions, field)
		return nil
	}

	// Ordena para que conjuntos iguais em ordens diferentes normalizem igual
	sort.Strings(cleaned)
	fs.conditions[field] = Condition{Kind: ConditionIn, Values: cleaned}
	return nil
}

// SetDateRange delimita o intervalo de datas (extremidades ISO YYYY-MM-DD).
func (fs *FilterSet) SetDateRange(from, to string) error {
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", bound); err != nil {
			return fmt.Errorf("FilterSet.SetDateRange - bound %q: %w", bound, ErrInvalidFilter)
		}
	}

	fs.dateRange = DateRange{From: from, To: to}
	return nil
}

// Condition devolve a condição registrada para field, se houver.
func (fs *FilterSet) Condition(field Field) (Condition, bool) {
	cond, ok := fs.conditions[field]
	return cond, ok
}

// Fields devolve os campos com condição registrada, em ordem lexicográfica.
func (fs *FilterSet) Fields() []Field {
	fields := make([]Field, 0, len(fs.conditions))
	for f := range fs.conditions {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

func (fs *FilterSet) DateRange() DateRange {
	return fs.dateRange
}

func (fs *FilterSet) IsEmpty() bool {
	return len(fs.conditions) == 0 && fs.dateRange.IsZero()
}

// Normalize serializa o FilterSet de forma determinística: campos em ordem
// lexicográfica, valores de conjunto ordenados, intervalo de datas sempre ao
// final. Dois FilterSets com as mesmas condições produzem a mesma string
// independentemente da ordem de inserção.
func (fs *FilterSet) Normalize() string {
	var sb strings.Builder

	for i, field := range fs.Fields() {
		if i > 0 {
			sb.WriteByte('|')
		}

		cond := fs.conditions[field]
		switch cond.Kind {
		case ConditionEquals:
			sb.WriteString(fmt.Sprintf("%s=eq:%s", field, cond.Value))
		case ConditionIn:
			sb.WriteString(fmt.Sprintf("%s=in:[%s]", field, strings.Join(cond.Values, ",")))
		}
	}

	if !fs.dateRange.IsZero() {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(fmt.Sprintf("data=%s..%s", fs.dateRange.From, fs.dateRange.To))
	}

	return sb.String()
}
