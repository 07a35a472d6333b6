package models

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID — числовой идентификатор записи (BIGINT в базе).
//
// В JSON всегда сериализуется строкой, чтобы клиенты на JavaScript не теряли
// точность на больших значениях. При разборе принимаются оба варианта: "42" и 42.
type ID int64

// ParseID разбирает идентификатор из строки (path/query параметры).
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be positive", s)
	}
	return ID(v), nil
}

// Int64 возвращает значение как int64 для передачи в хранилище.
func (id ID) Int64() int64 { return int64(id) }

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// MarshalJSON реализует json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

// UnmarshalJSON реализует json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		data = []byte(s)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(v)
	return nil
}
