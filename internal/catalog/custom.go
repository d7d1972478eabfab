package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/abhisek/mathdrill/internal/lesson"
)

// AddCustom stores l in the custom lesson file, replacing any lesson with
// the same name.
func (s *Store) AddCustom(l lesson.Lesson) error {
	if err := lesson.Validate(l); err != nil {
		return err
	}
	if s.cfg.CustomFile == "" {
		return errors.New("no custom lesson file configured")
	}

	existing, err := s.readCustom()
	if err != nil {
		return err
	}

	replaced := false
	for i := range existing {
		if existing[i].Name == l.Name {
			existing[i] = l
			replaced = true
			break
		}
	}
	if !replaced {
		existing = append(existing, l)
	}

	data, err := lesson.Marshal(existing)
	if err != nil {
		return fmt.Errorf("encode custom lessons: %w", err)
	}
	if err := writeAtomic(s.cfg.CustomFile, data); err != nil {
		return fmt.Errorf("write custom lessons: %w", err)
	}
	s.log.WithField("lesson", l.Name).Info("custom lesson saved")
	return nil
}

// withCustom appends the custom lessons. A broken custom file never hides
// the main lessons: they come back with a *CustomError.
func (s *Store) withCustom(lessons []lesson.Lesson) ([]lesson.Lesson, error) {
	custom, err := s.readCustom()
	if err != nil {
		s.log.WithError(err).Warn("custom lessons skipped")
		return lessons, err
	}
	return append(lessons, custom...), nil
}

// readCustom returns the custom lessons; a missing file is empty.
func (s *Store) readCustom() ([]lesson.Lesson, error) {
	if s.cfg.CustomFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.cfg.CustomFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &CustomError{Path: s.cfg.CustomFile, Err: err}
	}
	lessons, err := lesson.Parse(data)
	if err != nil {
		return nil, &CustomError{Path: s.cfg.CustomFile, Err: err}
	}
	return lessons, nil
}
