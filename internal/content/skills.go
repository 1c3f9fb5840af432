package content

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SkillStore provides typed access to the skill_categories table for the
// categorizer's read-merge-write sequence. The sequence is not transactional;
// only the individual statements are atomic.
type SkillStore interface {
	ListCategories(ctx context.Context) ([]SkillCategory, error)
	UpdateSkills(ctx context.Context, id string, skills []string) error
	InsertCategory(ctx context.Context, category *SkillCategory) error
}

// GormSkillStore persists skill categories using a Gorm database connection.
type GormSkillStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewSkillStore constructs a Gorm-backed skill store.
func NewSkillStore(conn *gorm.DB, logger *logrus.Logger) (*GormSkillStore, error) {
	if conn == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormSkillStore{db: conn, logger: logger}, nil
}

var _ SkillStore = (*GormSkillStore)(nil)

// ListCategories returns every category ordered by display order.
func (s *GormSkillStore) ListCategories(ctx context.Context) ([]SkillCategory, error) {
	var categories []SkillCategory

	if err := s.db.WithContext(ctx).Order("display_order ASC, created_at ASC").Find(&categories).Error; err != nil {
		s.logError(nil, err, "listing skill categories")
		return nil, eris.Wrap(err, "listing skill categories")
	}

	return categories, nil
}

// UpdateSkills replaces the skill list of the category matching id.
func (s *GormSkillStore) UpdateSkills(ctx context.Context, id string, skills []string) error {
	result := s.db.WithContext(ctx).Model(&SkillCategory{}).Where("id = ?", id).Update("skills", skills)
	if result.Error != nil {
		s.logError(logrus.Fields{"id": id}, result.Error, "updating category skills")
		return eris.Wrapf(result.Error, "updating skills for category %s", id)
	}

	if result.RowsAffected == 0 {
		return eris.Wrapf(gorm.ErrRecordNotFound, "updating skills for category %s", id)
	}

	return nil
}

// InsertCategory stores a new category row, generating the identifier and
// creation timestamp when absent.
func (s *GormSkillStore) InsertCategory(ctx context.Context, category *SkillCategory) error {
	if category == nil {
		return eris.New("category is nil")
	}

	if category.Category == "" {
		return eris.New("category name is required")
	}

	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		s.logError(logrus.Fields{"category": category.Category}, err, "inserting skill category")
		return eris.Wrapf(err, "inserting skill category %s", category.Category)
	}

	return nil
}

func (s *GormSkillStore) logError(fields logrus.Fields, err error, message string) {
	if s.logger == nil {
		return
	}

	entry := s.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
