package sequence

import (
	"errors"
	"fmt"
	"portfolio/bizerror"

	"github.com/jinzhu/gorm"
)

// SequenceCounter is the monotonic integer source behind human readable entry
// codes, one row per (category, department, year). Counters are created lazily
// and never decremented, so a failed creation may leave a gap but never a
// duplicate.
type SequenceCounter struct {
	Category   string `json:"category" gorm:"primary_key"`
	Department string `json:"department" gorm:"primary_key"`
	Year       int    `json:"year" gorm:"primary_key"`

	NextValue int `json:"nextValue" sql:"type:BIGINT UNSIGNED NOT NULL"`
}

func (c *SequenceCounter) TableName() string {
	return "sequence_counters"
}

// NextEntryCode consumes the current counter value for the key inside the given
// transaction and returns it formatted as "{CATEGORY}-{YYYY}-{NNN}". The counter
// update is conditioned on the read value; a lost race surfaces as
// bizerror.ErrConcurrentModification and the caller retries its transaction.
func NextEntryCode(tx *gorm.DB, category, department string, year int) (string, error) {
	counter := SequenceCounter{}
	err := tx.Where(&SequenceCounter{Category: category, Department: department, Year: year}).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = SequenceCounter{Category: category, Department: department, Year: year, NextValue: 1}
		if err := tx.Create(&counter).Error; err != nil {
			// a concurrent creator got there first
			return "", bizerror.ErrConcurrentModification
		}
	} else if err != nil {
		return "", err
	}

	code := FormatCode(category, year, counter.NextValue)

	db := tx.Model(&SequenceCounter{}).
		Where(&SequenceCounter{Category: category, Department: department, Year: year, NextValue: counter.NextValue}).
		Update("next_value", counter.NextValue+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", bizerror.ErrConcurrentModification
	}
	return code, nil
}

// FormatCode pads the sequence to 3 digits and widens naturally beyond 999.
func FormatCode(category string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", category, year, seq)
}
