package models

import "strings"

// OrderRecord es una fila de lt_order: id interno y número de orden visible
type OrderRecord struct {
	ID      int64  `json:"id"`
	OrderNo string `json:"order_no"`
}

// OrderSet conjunto de números de orden sin duplicados.
// Conserva el orden de inserción solo para que la salida sea determinista.
type OrderSet struct {
	index map[string]struct{}
	items []string
}

func NewOrderSet(values ...string) *OrderSet {
	s := &OrderSet{index: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserta el valor si no existía; devuelve true si fue agregado
func (s *OrderSet) Add(orderNo string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[orderNo]; ok {
		return false
	}
	s.index[orderNo] = struct{}{}
	s.items = append(s.items, orderNo)
	return true
}

func (s *OrderSet) Contains(orderNo string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[orderNo]
	return ok
}

func (s *OrderSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values devuelve una copia de los números de orden
func (s *OrderSet) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Literal arma la lista entre comillas simples separada por comas: 'A100','A200'.
// Solo se usa para logs y el reporte de dry-run; las consultas usan parámetros.
func (s *OrderSet) Literal() string {
	if s.Len() == 0 {
		return ""
	}
	quoted := make([]string, len(s.items))
	for i, v := range s.items {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ",")
}

// Missing números del set que no aparecen en records
func (s *OrderSet) Missing(records []OrderRecord) []string {
	found := make(map[string]struct{}, len(records))
	for _, rec := range records {
		found[rec.OrderNo] = struct{}{}
	}

	var missing []string
	for _, v := range s.Values() {
		if _, ok := found[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
