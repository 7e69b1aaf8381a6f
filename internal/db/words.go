package db

import "gorm.io/gorm"

// LoadWords returns every word in the library, in insertion order.
func LoadWords(conn *gorm.DB) ([]string, error) {
	var rows []WordLibrary
	if err := conn.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	words := make([]string, 0, len(rows))
	for _, row := range rows {
		words = append(words, row.Text)
	}
	return words, nil
}
