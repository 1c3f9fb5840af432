package content

// TableSpec describes one allow-listed content table: the columns the admin
// gateway may write and which of them hold JSON-encoded values.
type TableSpec struct {
	Name        string
	Model       any
	Columns     map[string]struct{}
	JSONColumns map[string]struct{}
}

var registry = buildRegistry()

func buildRegistry() map[string]TableSpec {
	specs := []struct {
		name        string
		model       any
		columns     []string
		jsonColumns []string
	}{
		{"adornments", &Adornment{}, []string{"title", "image_url", "description", "display_order"}, nil},
		{"thoughts", &Thought{}, []string{"title", "body", "mood", "display_order"}, nil},
		{"bird_logs", &BirdLog{}, []string{"species", "location", "photo_url", "notes", "spotted_on", "display_order"}, nil},
		{"gallery_photos", &GalleryPhoto{}, []string{"title", "caption", "image_url", "display_order"}, nil},
		{"poems", &Poem{}, []string{"title", "body", "written_on", "display_order"}, nil},
		{"detail_images", &DetailImage{}, []string{"entity_type", "entity_id", "image_url", "caption", "display_order"}, nil},
		{"experiences", &Experience{}, []string{"company", "role", "location", "start_date", "end_date", "summary", "tech_stack", "display_order"}, []string{"tech_stack"}},
		{"projects", &Project{}, []string{"title", "description", "tech_stack", "live_url", "repo_url", "image_url", "display_order"}, []string{"tech_stack"}},
		{"education", &Education{}, []string{"school", "degree", "field", "start_date", "end_date", "notes", "display_order"}, nil},
		{"honors", &Honor{}, []string{"title", "issuer", "year", "description", "display_order"}, nil},
		{"skill_categories", &SkillCategory{}, []string{"category", "skills", "display_order"}, []string{"skills"}},
		{"resumes", &Resume{}, []string{"label", "file_url", "is_current", "display_order"}, nil},
		{"site_content", &SiteContent{}, []string{"section", "body"}, nil},
		{"site_stats", &SiteStat{}, []string{"label", "value", "display_order"}, nil},
		{"contact_submissions", &ContactSubmission{}, []string{"name", "email", "message"}, nil},
		{"page_visits", &PageVisit{}, []string{"path", "referrer", "visitor_id"}, nil},
	}

	out := make(map[string]TableSpec, len(specs))
	for _, s := range specs {
		spec := TableSpec{
			Name:        s.name,
			Model:       s.model,
			Columns:     make(map[string]struct{}, len(s.columns)),
			JSONColumns: make(map[string]struct{}, len(s.jsonColumns)),
		}
		for _, c := range s.columns {
			spec.Columns[c] = struct{}{}
		}
		for _, c := range s.jsonColumns {
			spec.JSONColumns[c] = struct{}{}
		}
		out[s.name] = spec
	}
	return out
}

// SpecFor returns the table spec for the given name when the table is
// allow-listed.
func SpecFor(name string) (TableSpec, bool) {
	spec, ok := registry[name]
	return spec, ok
}

// IsAllowedTable reports whether the table is on the fixed allow-list.
func IsAllowedTable(name string) bool {
	_, ok := registry[name]
	return ok
}

// Models returns the gorm models for every allow-listed table.
func Models() []any {
	models := make([]any, 0, len(registry))
	for _, spec := range registry {
		models = append(models, spec.Model)
	}
	return models
}
