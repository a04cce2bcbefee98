package models

// Counter backs partner and sale code allocation. Sequences are advanced
// with a compare-and-swap update instead of counting existing rows, so
// concurrent creates cannot allocate the same code.
type Counter struct {
	Name  string `json:"name" gorm:"primaryKey;size:100"`
	Value int64  `json:"value"`
}

func (Counter) TableName() string {
	return "counters"
}
