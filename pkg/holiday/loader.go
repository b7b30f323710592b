package holiday

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/course-scheduler/internal/models"
)

// File is the on-disk layout of a versioned holiday table.
type File struct {
	Version string `yaml:"version"`
	Years   struct {
		From int `yaml:"from"`
		To   int `yaml:"to"`
	} `yaml:"years"`
	Holidays []Entry `yaml:"holidays"`
}

// Entry is a single non-working date.
type Entry struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// LoadFile reads a YAML holiday table from disk.
func LoadFile(path string) (*models.HolidayCalendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holiday calendar %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML holiday table.
func Load(r io.Reader) (*models.HolidayCalendar, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode holiday calendar: %w", err)
	}
	if file.Years.From != 0 && file.Years.To != 0 && file.Years.From > file.Years.To {
		return nil, fmt.Errorf("holiday calendar years.from %d is after years.to %d", file.Years.From, file.Years.To)
	}

	dates := make(map[string]string, len(file.Holidays))
	for _, entry := range file.Holidays {
		parsed, err := time.Parse(models.DateLayout, entry.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: expected YYYY-MM-DD: %w", entry.Date, err)
		}
		if file.Years.From != 0 && (parsed.Year() < file.Years.From || parsed.Year() > file.Years.To) {
			return nil, fmt.Errorf("holiday %s outside declared years %d-%d", entry.Date, file.Years.From, file.Years.To)
		}
		dates[parsed.Format(models.DateLayout)] = entry.Name
	}

	version := file.Version
	if version == "" {
		version = "unversioned"
	}
	return models.NewHolidayCalendar(version, file.Years.From, file.Years.To, dates), nil
}
