package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"wanderfolio/app/internal/content"
)

// SkillCategorizer classifies free-text technology keywords into named skill
// categories using a completion model, merging the result into the skill
// category store. Callers treat the whole operation as advisory: the gateway
// runs it in a background task and only logs failures.
type SkillCategorizer struct {
	client *Client
	logger *logrus.Logger
	skills content.SkillStore
	model  string
}

// CategorizerOptions configures the skill categorizer.
type CategorizerOptions struct {
	Client *Client
	Skills content.SkillStore
	Model  string
}

const categorizerSystemPrompt = "You are a skill taxonomy assistant. Respond with a single JSON object and nothing else: no prose, no code fences."

var suggestedCategories = []string{
	"Languages",
	"Backend & Systems",
	"Cloud & DevOps",
	"AI/ML",
	"Databases",
	"Tools",
	"Frontend",
	"Mobile",
	"Security",
	"Data Engineering",
}

// NewCategorizer constructs a SkillCategorizer.
func NewCategorizer(opts CategorizerOptions) (*SkillCategorizer, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}
	if opts.Skills == nil {
		return nil, eris.New("skill store is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("categorizer model is required")
	}

	return &SkillCategorizer{
		client: opts.Client,
		logger: opts.Client.logger,
		skills: opts.Skills,
		model:  model,
	}, nil
}

// Categorize assigns the keywords to skill categories and merges the result
// into the store. An empty keyword list is a no-op. The read-merge-write
// sequence is not atomic; concurrent invocations can lose updates, which is
// accepted for advisory metadata.
func (c *SkillCategorizer) Categorize(ctx context.Context, keywords []string) error {
	cleaned := cleanKeywords(keywords)
	if len(cleaned) == 0 {
		return nil
	}

	categories, err := c.skills.ListCategories(ctx)
	if err != nil {
		return eris.Wrap(err, "loading skill categories")
	}

	prompt, err := buildCategorizerPrompt(cleaned, categories)
	if err != nil {
		return err
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(categorizerSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	}

	completion, err := c.client.chat.New(ctx, params)
	if err != nil {
		return eris.Wrap(err, "requesting chat completion")
	}

	if len(completion.Choices) == 0 {
		return eris.New("llm completion returned no choices")
	}

	raw, ok := extractJSONObject(completion.Choices[0].Message.Content)
	if !ok {
		return eris.New("no JSON object found in completion")
	}

	var assignments map[string][]string
	if err := json.Unmarshal([]byte(raw), &assignments); err != nil {
		return eris.Wrap(err, "decoding categorization json")
	}

	return c.merge(ctx, categories, assignments)
}

// merge applies the model's assignments: set-union into matching categories,
// or insert a new row whose display order continues the running count.
func (c *SkillCategorizer) merge(ctx context.Context, existing []content.SkillCategory, assignments map[string][]string) error {
	names := make([]string, 0, len(assignments))
	for name := range assignments {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	count := len(existing)

	for _, name := range names {
		skills := cleanKeywords(assignments[name])
		if len(skills) == 0 {
			continue
		}

		match := findCategory(existing, name)
		if match != nil {
			merged := unionSkills(match.Skills, skills)
			if err := c.skills.UpdateSkills(ctx, match.ID, merged); err != nil {
				return eris.Wrapf(err, "merging into category %s", match.Category)
			}
			match.Skills = merged
			continue
		}

		category := &content.SkillCategory{
			Category:     name,
			Skills:       unionSkills(nil, skills),
			DisplayOrder: count,
		}
		if err := c.skills.InsertCategory(ctx, category); err != nil {
			return eris.Wrapf(err, "inserting category %s", name)
		}
		count++

		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"category": name,
				"skills":   len(category.Skills),
			}).Info("created skill category")
		}
	}

	return nil
}

func buildCategorizerPrompt(keywords []string, categories []content.SkillCategory) (string, error) {
	existing := make(map[string][]string, len(categories))
	for _, category := range categories {
		existing[category.Category] = category.Skills
	}

	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return "", eris.Wrap(err, "encoding keywords")
	}

	existingJSON, err := json.Marshal(existing)
	if err != nil {
		return "", eris.Wrap(err, "encoding existing categories")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New technology keywords: %s\n", keywordsJSON)
	fmt.Fprintf(&b, "Existing skill categories: %s\n\n", existingJSON)
	b.WriteString("Skip keywords that already appear in any category. ")
	b.WriteString("Assign each remaining keyword to the best-fitting existing category, ")
	fmt.Fprintf(&b, "or to a new category named from this vocabulary: %s. ", strings.Join(suggestedCategories, ", "))
	b.WriteString("Return only a JSON object mapping category name to the complete resulting skill list for that category (existing skills plus new ones).")

	return b.String(), nil
}

func cleanKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func findCategory(categories []content.SkillCategory, name string) *content.SkillCategory {
	for i := range categories {
		if strings.EqualFold(categories[i].Category, name) {
			return &categories[i]
		}
	}
	return nil
}

// unionSkills merges skill lists keeping existing order, de-duplicating
// case-insensitively.
func unionSkills(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, skill := range existing {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, skill)
	}

	for _, skill := range incoming {
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, skill)
	}

	return merged
}

// extractJSONObject returns the first balanced {...} substring, tolerating
// models that wrap the object in prose or code fences.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
