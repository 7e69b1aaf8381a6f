package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"gorm.io/datatypes"

	"skroodle/internal/config"
	"skroodle/internal/db"
)

type wordRecord struct {
	Text string
	Tags []string
}

func main() {
	filePath := flag.String("file", "words.txt", "path to word list")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	records, err := readWords(*filePath)
	if err != nil {
		log.Fatalf("failed to read words: %v", err)
	}

	inserted := 0
	for _, record := range records {
		entry := db.WordLibrary{Text: record.Text}
		if len(record.Tags) > 0 {
			tags, err := json.Marshal(record.Tags)
			if err != nil {
				log.Fatalf("failed to encode tags: %v", err)
			}
			entry.Tags = datatypes.JSON(tags)
		}
		if err := conn.FirstOrCreate(&entry, db.WordLibrary{Text: entry.Text}).Error; err != nil {
			log.Fatalf("failed to upsert word: %v", err)
		}
		inserted++
	}

	log.Printf("loaded %d words", inserted)
}

// readWords parses one word per line, with optional comma-separated tags
// after the word. Blank lines and # comments are skipped.
func readWords(path string) ([]wordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []wordRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		text := strings.TrimSpace(fields[0])
		if text == "" {
			continue
		}
		record := wordRecord{Text: text}
		for _, tag := range fields[1:] {
			if tag = strings.TrimSpace(tag); tag != "" {
				record.Tags = append(record.Tags, tag)
			}
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
