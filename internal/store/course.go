package store

import (
	"database/sql"
	"fmt"

	"github.com/colegiosync/colegiosync/internal/model"
)

type CourseStore struct {
	db *sql.DB
}

func NewCourseStore(db *sql.DB) *CourseStore {
	return &CourseStore{db: db}
}

const courseCols = `id, name, color, year, active, created_at`

func scanCourse(scanner interface{ Scan(...any) error }) (*model.Course, error) {
	var c model.Course
	err := scanner.Scan(&c.ID, &c.Name, &c.Color, &c.Year, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CourseStore) Create(name, color string, year int) (*model.Course, error) {
	result, err := s.db.Exec(
		`INSERT INTO courses (name, color, year) VALUES (?, ?, ?)`,
		name, color, year,
	)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CourseStore) GetByID(id int64) (*model.Course, error) {
	row := s.db.QueryRow(`SELECT `+courseCols+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// ListActive returns courses that have not been retired, ordered by name.
func (s *CourseStore) ListActive() ([]model.Course, error) {
	rows, err := s.db.Query(`SELECT ` + courseCols + ` FROM courses WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func (s *CourseStore) Update(id int64, name, color string, year, active int) (*model.Course, error) {
	_, err := s.db.Exec(
		`UPDATE courses SET name = ?, color = ?, year = ?, active = ? WHERE id = ?`,
		name, color, year, active, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return s.GetByID(id)
}

// SoftDelete retires a course. Subscriptions and event links survive;
// active listings simply stop including it.
func (s *CourseStore) SoftDelete(id int64) error {
	_, err := s.db.Exec(`UPDATE courses SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("soft delete course: %w", err)
	}
	return nil
}
