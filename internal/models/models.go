package models

import "time"

type User struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

type Category struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Subcategory struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	CategoryID string    `db:"category_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type Course struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Status        int       `db:"status"`
	TeacherID     string    `db:"teacher_id"`
	SubcategoryID string    `db:"subcategory_id"`
	Description   *string   `db:"description"`
	Price         float64   `db:"price"`
	Rating        float64   `db:"rating"`
	ReviewCount   int       `db:"review_count"`
	CreatedAt     time.Time `db:"created_at"`
}

// CourseInfo carries the upload-driven aggregates, kept apart from the
// course row so increments never contend with course edits.
type CourseInfo struct {
	CourseID       string `db:"course_id"`
	TotalSeconds   int64  `db:"total_seconds"`
	TotalMaterials int    `db:"total_materials"`
}

type Section struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CourseID  string    `db:"course_id"`
	CreatedAt time.Time `db:"created_at"`
}

type CourseItem struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	IsPublic     bool      `db:"is_public"`
	ResourceType string    `db:"resource_type"`
	ResourceName string    `db:"resource_name"`
	SectionID    string    `db:"section_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type AdminComment struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

type CourseRequest struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Purchase struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	Rating    *int      `db:"rating"`
	Review    *string   `db:"review"`
	CreatedAt time.Time `db:"created_at"`
}

type ServerMetricSample struct {
	ID                string    `db:"id"`
	CapturedAt        time.Time `db:"captured_at"`
	ProcessRSSBytes   int64     `db:"process_rss_bytes"`
	SystemMemoryTotal int64     `db:"system_memory_total_bytes"`
	SystemMemoryUsed  int64     `db:"system_memory_used_bytes"`
	DiskTotalBytes    int64     `db:"disk_total_bytes"`
	DiskUsedBytes     int64     `db:"disk_used_bytes"`
	ProcessCpuLoad    float64   `db:"process_cpu_load"`
	SystemCpuLoad     float64   `db:"system_cpu_load"`
}
