package model

import "time"

// Course is never hard-deleted; active=0 marks it retired while keeping
// historical subscriptions and event links intact. Active stays an int on
// the wire (0/1) because the frontend compares it numerically.
type Course struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Year      int       `json:"year"`
	Active    int       `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription links a parent to a course, optionally tagged with the
// child's name for households with several children.
type Subscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CourseID   int64     `json:"course_id"`
	ChildAlias *string   `json:"child_alias"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubscriptionWithCourse is the listing shape: subscription joined with its
// active course.
type SubscriptionWithCourse struct {
	ID          int64   `json:"id"`
	ChildAlias  *string `json:"child_alias"`
	CourseID    int64   `json:"course_id"`
	CourseName  string  `json:"course_name"`
	CourseColor string  `json:"course_color"`
}
