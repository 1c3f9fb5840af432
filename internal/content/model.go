package content

import "time"

// Record carries the server-generated fields shared by every content table.
type Record struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Adornment is a decorative artifact shown on the wanderer pages.
type Adornment struct {
	Record
	Title        string `gorm:"size:255" json:"title"`
	ImageURL     string `gorm:"size:1024" json:"image_url"`
	Description  string `gorm:"type:text" json:"description"`
	DisplayOrder int    `json:"display_order"`
}

func (Adornment) TableName() string { return "adornments" }

// Thought is a short free-form journal entry.
type Thought struct {
	Record
	Title        string `gorm:"size:255" json:"title"`
	Body         string `gorm:"type:text" json:"body"`
	Mood         string `gorm:"size:64" json:"mood"`
	DisplayOrder int    `json:"display_order"`
}

func (Thought) TableName() string { return "thoughts" }

// BirdLog records a bird sighting in the creative archive.
type BirdLog struct {
	Record
	Species      string `gorm:"size:255" json:"species"`
	Location     string `gorm:"size:255" json:"location"`
	PhotoURL     string `gorm:"size:1024" json:"photo_url"`
	Notes        string `gorm:"type:text" json:"notes"`
	SpottedOn    string `gorm:"size:32" json:"spotted_on"`
	DisplayOrder int    `json:"display_order"`
}

func (BirdLog) TableName() string { return "bird_logs" }

// GalleryPhoto is a photograph in the public gallery.
type GalleryPhoto struct {
	Record
	Title        string `gorm:"size:255" json:"title"`
	Caption      string `gorm:"type:text" json:"caption"`
	ImageURL     string `gorm:"size:1024" json:"image_url"`
	DisplayOrder int    `json:"display_order"`
}

func (GalleryPhoto) TableName() string { return "gallery_photos" }

// Poem is a written piece in the creative archive.
type Poem struct {
	Record
	Title        string `gorm:"size:255" json:"title"`
	Body         string `gorm:"type:text" json:"body"`
	WrittenOn    string `gorm:"size:32" json:"written_on"`
	DisplayOrder int    `json:"display_order"`
}

func (Poem) TableName() string { return "poems" }

// DetailImage is a child image attached to another record via a weak
// (entity_type, entity_id) reference. Parents hold no pointer back, and
// deleting a parent does not cascade here.
type DetailImage struct {
	Record
	EntityType   string `gorm:"size:64;index:idx_detail_images_entity" json:"entity_type"`
	EntityID     string `gorm:"size:36;index:idx_detail_images_entity" json:"entity_id"`
	ImageURL     string `gorm:"size:1024" json:"image_url"`
	Caption      string `gorm:"type:text" json:"caption"`
	DisplayOrder int    `json:"display_order"`
}

func (DetailImage) TableName() string { return "detail_images" }

// Experience is a résumé work-history entry.
type Experience struct {
	Record
	Company      string   `gorm:"size:255" json:"company"`
	Role         string   `gorm:"size:255" json:"role"`
	Location     string   `gorm:"size:255" json:"location"`
	StartDate    string   `gorm:"size:32" json:"start_date"`
	EndDate      string   `gorm:"size:32" json:"end_date"`
	Summary      string   `gorm:"type:text" json:"summary"`
	TechStack    []string `gorm:"serializer:json;type:text" json:"tech_stack"`
	DisplayOrder int      `json:"display_order"`
}

func (Experience) TableName() string { return "experiences" }

// Project is a portfolio project entry.
type Project struct {
	Record
	Title        string   `gorm:"size:255" json:"title"`
	Description  string   `gorm:"type:text" json:"description"`
	TechStack    []string `gorm:"serializer:json;type:text" json:"tech_stack"`
	LiveURL      string   `gorm:"size:1024" json:"live_url"`
	RepoURL      string   `gorm:"size:1024" json:"repo_url"`
	ImageURL     string   `gorm:"size:1024" json:"image_url"`
	DisplayOrder int      `json:"display_order"`
}

func (Project) TableName() string { return "projects" }

// Education is a résumé education entry.
type Education struct {
	Record
	School       string `gorm:"size:255" json:"school"`
	Degree       string `gorm:"size:255" json:"degree"`
	Field        string `gorm:"size:255" json:"field"`
	StartDate    string `gorm:"size:32" json:"start_date"`
	EndDate      string `gorm:"size:32" json:"end_date"`
	Notes        string `gorm:"type:text" json:"notes"`
	DisplayOrder int    `json:"display_order"`
}

func (Education) TableName() string { return "education" }

// Honor is an award or recognition entry.
type Honor struct {
	Record
	Title        string `gorm:"size:255" json:"title"`
	Issuer       string `gorm:"size:255" json:"issuer"`
	Year         string `gorm:"size:16" json:"year"`
	Description  string `gorm:"type:text" json:"description"`
	DisplayOrder int    `json:"display_order"`
}

func (Honor) TableName() string { return "honors" }

// SkillCategory groups free-text skills under a named category. Skill names
// are not globally unique across categories; only merges within one category
// de-duplicate.
type SkillCategory struct {
	Record
	Category     string   `gorm:"size:255" json:"category"`
	Skills       []string `gorm:"serializer:json;type:text" json:"skills"`
	DisplayOrder int      `json:"display_order"`
}

func (SkillCategory) TableName() string { return "skill_categories" }

// Resume references an uploaded résumé document.
type Resume struct {
	Record
	Label        string `gorm:"size:255" json:"label"`
	FileURL      string `gorm:"size:1024" json:"file_url"`
	IsCurrent    bool   `json:"is_current"`
	DisplayOrder int    `json:"display_order"`
}

func (Resume) TableName() string { return "resumes" }

// SiteContent is a keyed block of editable site copy.
type SiteContent struct {
	Record
	Section string `gorm:"size:255;uniqueIndex:idx_site_content_section" json:"section"`
	Body    string `gorm:"type:text" json:"body"`
}

func (SiteContent) TableName() string { return "site_content" }

// SiteStat is a headline number shown on the recruiter view.
type SiteStat struct {
	Record
	Label        string `gorm:"size:255" json:"label"`
	Value        string `gorm:"size:255" json:"value"`
	DisplayOrder int    `json:"display_order"`
}

func (SiteStat) TableName() string { return "site_stats" }

// ContactSubmission is a message left through the contact form.
type ContactSubmission struct {
	Record
	Name    string `gorm:"size:255" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Message string `gorm:"type:text" json:"message"`
}

func (ContactSubmission) TableName() string { return "contact_submissions" }

// PageVisit is a single page-view beacon record.
type PageVisit struct {
	Record
	Path      string `gorm:"size:1024" json:"path"`
	Referrer  string `gorm:"size:1024" json:"referrer"`
	VisitorID string `gorm:"size:64" json:"visitor_id"`
}

func (PageVisit) TableName() string { return "page_visits" }
