package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Browse pages are fixed-size.
const PageSize = 5

// Catalog is the sqlx-backed read/write layer for the course hierarchy
// and its derived listings. All anonymous-facing reads filter on
// approved status; teacher and admin reads do not.
type Catalog struct {
	DB *sqlx.DB
}

type CategoryInfo struct {
	ID            string            `db:"id" json:"categoryId"`
	Name          string            `db:"name" json:"categoryName"`
	Subcategories []SubcategoryInfo `json:"subcategories"`
}

type SubcategoryInfo struct {
	ID         string `db:"id" json:"subcategoryId"`
	Name       string `db:"name" json:"subcategoryName"`
	CategoryID string `db:"category_id" json:"-"`
}

// CategoryTree returns all categories with their subcategories nested.
func (c *Catalog) CategoryTree() ([]CategoryInfo, error) {
	var categories []CategoryInfo
	if err := c.DB.Select(&categories, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, err
	}
	var subcategories []SubcategoryInfo
	if err := c.DB.Select(&subcategories, `SELECT id, name, category_id FROM subcategories ORDER BY name`); err != nil {
		return nil, err
	}
	byCategory := make(map[string][]SubcategoryInfo, len(categories))
	for _, sub := range subcategories {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}
	for i := range categories {
		categories[i].Subcategories = byCategory[categories[i].ID]
		if categories[i].Subcategories == nil {
			categories[i].Subcategories = []SubcategoryInfo{}
		}
	}
	return categories, nil
}

func (c *Catalog) CategoryName(categoryID string) (string, error) {
	var name string
	err := c.DB.Get(&name, `SELECT name FROM categories WHERE id = $1`, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIllegalParameter("Category id is incorrect")
	}
	return name, err
}

func (c *Catalog) SubcategoryName(subcategoryID string) (string, error) {
	var name string
	err := c.DB.Get(&name, `SELECT name FROM subcategories WHERE id = $1`, subcategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIllegalParameter("Subcategory id is incorrect")
	}
	return name, err
}

func (c *Catalog) SubcategoryCategoryName(subcategoryID string) (string, error) {
	var name string
	err := c.DB.Get(&name, `
SELECT c.name FROM categories c
JOIN subcategories s ON s.category_id = c.id
WHERE s.id = $1
`, subcategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIllegalParameter("Subcategory id is incorrect")
	}
	return name, err
}

// CreateCategoryRow records a category after its directory was created.
func (c *Catalog) CreateCategoryRow(name string) (string, error) {
	id := uuid.NewString()
	_, err := c.DB.Exec(`INSERT INTO categories (id, name) VALUES ($1,$2)`, id, name)
	return id, err
}

func (c *Catalog) CreateSubcategoryRow(name, categoryID string) (string, error) {
	id := uuid.NewString()
	_, err := c.DB.Exec(`
INSERT INTO subcategories (id, name, category_id) VALUES ($1,$2,$3)
`, id, name, categoryID)
	return id, err
}

// CreateCourseRow inserts the course and its zeroed aggregate row in one
// transaction. New courses start pending.
func (c *Catalog) CreateCourseRow(name, teacherID, subcategoryID string, price float64) (string, error) {
	tx, err := c.DB.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec(`
INSERT INTO courses (id, name, status, teacher_id, subcategory_id, price, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, id, name, int(StatusPending), teacherID, subcategoryID, price, time.Now().UTC())
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(`
INSERT INTO course_info (course_id, total_seconds, total_materials) VALUES ($1,0,0)
`, id)
	if err != nil {
		return "", err
	}
	return id, tx.Commit()
}

func (c *Catalog) CreateSectionRow(name, courseID string) (string, error) {
	id := uuid.NewString()
	_, err := c.DB.Exec(`
INSERT INTO sections (id, name, course_id) VALUES ($1,$2,$3)
`, id, name, courseID)
	return id, err
}

// CourseCommon is the listing/detail projection shared by every course
// read path. Hours derive from the stored seconds at read time.
type CourseCommon struct {
	ID             string  `db:"id" json:"courseId"`
	Name           string  `db:"name" json:"courseName"`
	Status         int     `db:"status" json:"status"`
	TeacherName    string  `db:"teacher_name" json:"teacherName"`
	Description    *string `db:"description" json:"description"`
	Price          float64 `db:"price" json:"price"`
	Rating         float64 `db:"rating" json:"rating"`
	ReviewCount    int     `db:"review_count" json:"reviewCount"`
	TotalSeconds   int64   `db:"total_seconds" json:"-"`
	TotalMaterials int     `db:"total_materials" json:"totalMaterials"`
	TotalHours     float64 `json:"totalHours"`
}

const courseCommonSelect = `
SELECT co.id, co.name, co.status,
       u.first_name || ' ' || u.last_name AS teacher_name,
       co.description, co.price, co.rating, co.review_count,
       ci.total_seconds, ci.total_materials
FROM courses co
JOIN users u ON u.id = co.teacher_id
JOIN course_info ci ON ci.course_id = co.id
`

func fillHours(courses []CourseCommon) []CourseCommon {
	for i := range courses {
		courses[i].TotalHours = float64(courses[i].TotalSeconds) / 3600
	}
	if courses == nil {
		courses = []CourseCommon{}
	}
	return courses
}

// CoursesBySubcategory lists approved courses of a subcategory,
// page-numbered from 1.
func (c *Catalog) CoursesBySubcategory(subcategoryID string, page int) ([]CourseCommon, error) {
	if page < 1 {
		page = 1
	}
	var courses []CourseCommon
	err := c.DB.Select(&courses, courseCommonSelect+`
WHERE co.subcategory_id = $1 AND co.status = $2
ORDER BY co.created_at DESC
LIMIT $3 OFFSET $4
`, subcategoryID, int(StatusApproved), PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

// PopularCourses lists approved courses ranked by rating.
func (c *Catalog) PopularCourses(page int) ([]CourseCommon, error) {
	if page < 1 {
		page = 1
	}
	var courses []CourseCommon
	err := c.DB.Select(&courses, courseCommonSelect+`
WHERE co.status = $1
ORDER BY co.rating DESC, co.review_count DESC
LIMIT $2 OFFSET $3
`, int(StatusApproved), PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

// CoursesByTeacher lists a teacher's own courses regardless of status.
func (c *Catalog) CoursesByTeacher(teacherID string) ([]CourseCommon, error) {
	var courses []CourseCommon
	err := c.DB.Select(&courses, courseCommonSelect+`
WHERE co.teacher_id = $1
ORDER BY co.created_at DESC
`, teacherID)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

// ApprovedCoursesByTeacher lists a teacher's approved courses for the
// public catalog, page-numbered from 1.
func (c *Catalog) ApprovedCoursesByTeacher(teacherID string, page int) ([]CourseCommon, error) {
	if page < 1 {
		page = 1
	}
	var courses []CourseCommon
	err := c.DB.Select(&courses, courseCommonSelect+`
WHERE co.teacher_id = $1 AND co.status = $2
ORDER BY co.created_at DESC
LIMIT $3 OFFSET $4
`, teacherID, int(StatusApproved), PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

// CoursesByTeacherAndStatus narrows a teacher's course list to one
// lifecycle state, page-numbered from 1.
func (c *Catalog) CoursesByTeacherAndStatus(teacherID string, status Status, page int) ([]CourseCommon, error) {
	if page < 1 {
		page = 1
	}
	var courses []CourseCommon
	err := c.DB.Select(&courses, courseCommonSelect+`
WHERE co.teacher_id = $1 AND co.status = $2
ORDER BY co.created_at DESC
LIMIT $3 OFFSET $4
`, teacherID, int(status), PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

// CoursesByStatus lists courses in one lifecycle state, oldest first.
func (c *Catalog) CoursesByStatus(status Status, page int) ([]CourseCommon, error) {
	if page < 1 {
		page = 1
	}
	var courses []CourseCommon
	err := c.DB.Select(&courses, courseCommonSelect+`
WHERE co.status = $1
ORDER BY co.created_at ASC
LIMIT $2 OFFSET $3
`, int(status), PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return fillHours(courses), nil
}

// GetCourse returns a course only if it is browsable. Pending and
// disapproved courses are indistinguishable from absent ones on this
// path.
func (c *Catalog) GetCourse(courseID string) (CourseCommon, error) {
	course, err := c.GetCourseIgnoringStatus(courseID)
	if err != nil {
		return CourseCommon{}, err
	}
	if !IsBrowsable(Status(course.Status)) {
		return CourseCommon{}, ErrIllegalParameter("Course id is incorrect")
	}
	return course, nil
}

// GetCourseIgnoringStatus is the teacher/admin variant of GetCourse.
func (c *Catalog) GetCourseIgnoringStatus(courseID string) (CourseCommon, error) {
	var course CourseCommon
	err := c.DB.Get(&course, courseCommonSelect+`WHERE co.id = $1`, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return CourseCommon{}, ErrIllegalParameter("Course id is incorrect")
	}
	if err != nil {
		return CourseCommon{}, err
	}
	course.TotalHours = float64(course.TotalSeconds) / 3600
	return course, nil
}

type SectionInfo struct {
	ID   string `db:"id" json:"sectionId"`
	Name string `db:"name" json:"sectionName"`
}

func (c *Catalog) Sections(courseID string) ([]SectionInfo, error) {
	var sections []SectionInfo
	err := c.DB.Select(&sections, `
SELECT id, name FROM sections WHERE course_id = $1 ORDER BY name
`, courseID)
	if err != nil {
		return nil, err
	}
	if sections == nil {
		sections = []SectionInfo{}
	}
	return sections, nil
}

func (c *Catalog) SectionCourseID(sectionID string) (string, error) {
	var courseID string
	err := c.DB.Get(&courseID, `SELECT course_id FROM sections WHERE id = $1`, sectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIllegalParameter("Section id is incorrect")
	}
	return courseID, err
}

func (c *Catalog) SectionName(sectionID string) (string, error) {
	var name string
	err := c.DB.Get(&name, `SELECT name FROM sections WHERE id = $1`, sectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIllegalParameter("Section id is incorrect")
	}
	return name, err
}

type ItemInfo struct {
	ID           string `db:"id" json:"itemId"`
	Name         string `db:"name" json:"itemName"`
	IsPublic     bool   `db:"is_public" json:"isPublic"`
	ResourceType string `db:"resource_type" json:"resourceType"`
	ResourceName string `db:"resource_name" json:"resourceName"`
}

// SectionItems lists every item of a section.
func (c *Catalog) SectionItems(sectionID string) ([]ItemInfo, error) {
	return c.sectionItems(sectionID, false)
}

// PublicSectionItems lists only the items marked public, for callers
// who have not purchased the course.
func (c *Catalog) PublicSectionItems(sectionID string) ([]ItemInfo, error) {
	return c.sectionItems(sectionID, true)
}

func (c *Catalog) sectionItems(sectionID string, publicOnly bool) ([]ItemInfo, error) {
	query := `
SELECT id, name, is_public, resource_type, resource_name
FROM course_items WHERE section_id = $1
`
	if publicOnly {
		query += ` AND is_public = TRUE`
	}
	query += ` ORDER BY created_at ASC`
	var items []ItemInfo
	if err := c.DB.Select(&items, query, sectionID); err != nil {
		return nil, err
	}
	if items == nil {
		items = []ItemInfo{}
	}
	return items, nil
}

// PathComponents are the hierarchy names a course resolves to on disk.
type PathComponents struct {
	Category    string `db:"category"`
	Subcategory string `db:"subcategory"`
	Course      string `db:"course"`
}

// CoursePathComponents resolves the names needed to compose a course's
// directory path.
func (c *Catalog) CoursePathComponents(courseID string) (PathComponents, error) {
	var path PathComponents
	err := c.DB.Get(&path, `
SELECT ca.name AS category, s.name AS subcategory, co.name AS course
FROM courses co
JOIN subcategories s ON s.id = co.subcategory_id
JOIN categories ca ON ca.id = s.category_id
WHERE co.id = $1
`, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return PathComponents{}, ErrIllegalParameter("Course id is incorrect")
	}
	return path, err
}

// ItemLocation is everything needed to find an item's file and check
// who may read it.
type ItemLocation struct {
	Category     string `db:"category"`
	Subcategory  string `db:"subcategory"`
	Course       string `db:"course"`
	Section      string `db:"section"`
	ResourceName string `db:"resource_name"`
	CourseID     string `db:"course_id"`
	IsPublic     bool   `db:"is_public"`
	Status       int    `db:"status"`
}

func (c *Catalog) ItemLocation(itemID string) (ItemLocation, error) {
	var loc ItemLocation
	err := c.DB.Get(&loc, `
SELECT ca.name AS category, sub.name AS subcategory, co.name AS course,
       se.name AS section, it.resource_name, co.id AS course_id,
       it.is_public, co.status
FROM course_items it
JOIN sections se ON se.id = it.section_id
JOIN courses co ON co.id = se.course_id
JOIN subcategories sub ON sub.id = co.subcategory_id
JOIN categories ca ON ca.id = sub.category_id
WHERE it.id = $1
`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return ItemLocation{}, ErrIllegalParameter("Item id is incorrect")
	}
	return loc, err
}

// InsertItem records an uploaded item's metadata.
func (c *Catalog) InsertItem(name string, isPublic bool, resourceType, resourceName, sectionID string) (string, error) {
	id := uuid.NewString()
	_, err := c.DB.Exec(`
INSERT INTO course_items (id, name, is_public, resource_type, resource_name, section_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, id, name, isPublic, resourceType, resourceName, sectionID, time.Now().UTC())
	return id, err
}

// ApplyUploadTotals folds one upload into the course aggregates. Video
// uploads extend the total running time and nothing else; every other
// file counts as one material and contributes no time. A single UPDATE
// keeps both columns consistent under concurrent uploads.
func (c *Catalog) ApplyUploadTotals(courseID string, seconds int64) error {
	_, err := c.DB.Exec(`
UPDATE course_info
SET total_seconds = total_seconds + $1,
    total_materials = total_materials + CASE WHEN $1 = 0 THEN 1 ELSE 0 END
WHERE course_id = $2
`, seconds, courseID)
	return err
}

func (c *Catalog) CourseTeacherID(courseID string) (string, error) {
	var teacherID string
	err := c.DB.Get(&teacherID, `SELECT teacher_id FROM courses WHERE id = $1`, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIllegalParameter("Course id is incorrect")
	}
	return teacherID, err
}

func (c *Catalog) SetDescription(courseID, description string) error {
	result, err := c.DB.Exec(`UPDATE courses SET description = $1 WHERE id = $2`, description, courseID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrIllegalParameter("Course id is incorrect")
	}
	return nil
}

func (c *Catalog) SetPrice(courseID string, price float64) error {
	result, err := c.DB.Exec(`UPDATE courses SET price = $1 WHERE id = $2`, price, courseID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrIllegalParameter("Course id is incorrect")
	}
	return nil
}

type CommentInfo struct {
	ID        string    `db:"id" json:"commentId"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (c *Catalog) Comments(courseID string) ([]CommentInfo, error) {
	var comments []CommentInfo
	err := c.DB.Select(&comments, `
SELECT id, comment, created_at FROM admin_comments
WHERE course_id = $1 ORDER BY created_at ASC
`, courseID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []CommentInfo{}
	}
	return comments, nil
}
