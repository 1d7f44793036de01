// Package courses reads scraped course lists from disk.
package courses

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"schtocal/internal/model"
)

// File is the on-disk course list. A bare list of courses is accepted too,
// as is the scraper's output with scheduleData and studentName keys.
type File struct {
	StudentName string         `yaml:"student_name" json:"student_name"`
	Courses     []model.Course `yaml:"courses" json:"courses"`
}

type scrapedFile struct {
	StudentName  string         `yaml:"studentName"`
	ScheduleData []model.Course `yaml:"scheduleData"`
}

// Load reads a YAML or JSON course list from path.
func Load(fsys afero.Fs, path string) (*File, error) {
	if path == "" {
		return nil, errors.New("courses path is empty")
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a course list. JSON documents are valid YAML and go through
// the same decoder.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty course list")
	}

	root := doc.Content[0]
	var f File
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&f.Courses); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := root.Decode(&f); err != nil {
			return nil, err
		}
		var scraped scrapedFile
		if err := root.Decode(&scraped); err != nil {
			return nil, err
		}
		if f.StudentName == "" {
			f.StudentName = scraped.StudentName
		}
		if len(f.Courses) == 0 {
			f.Courses = scraped.ScheduleData
		}
		if len(f.Courses) == 0 {
			return nil, errors.New("no courses found under courses or scheduleData")
		}
	default:
		return nil, fmt.Errorf("unexpected course list of kind %d", root.Kind)
	}

	for i, c := range f.Courses {
		if c.Code == "" {
			return nil, fmt.Errorf("course %d has no code", i)
		}
	}
	return &f, nil
}
